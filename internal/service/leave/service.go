package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

type LeaveServiceImpl struct {
	transactor database.Transactor
	user.UserRepository
	employee.EmployeeRepository
	notificationService notification.Service
	balanceService      *BalanceService
	requestService      *RequestService
	clock               clock.Clock
}

func NewLeaveService(
	transactor database.Transactor,
	userRepository user.UserRepository,
	employeeRepository employee.EmployeeRepository,
	notificationService notification.Service,
	balanceService *BalanceService,
	requestService *RequestService,
	clk clock.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		transactor:          transactor,
		UserRepository:      userRepository,
		EmployeeRepository:  employeeRepository,
		notificationService: notificationService,
		balanceService:      balanceService,
		requestService:      requestService,
		clock:               clk,
	}
}

// authorize loads the acting user and checks the permission.
func (l *LeaveServiceImpl) authorize(ctx context.Context, userID string, permission user.Permission) error {
	actor, err := l.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrInsufficientPermission
		}
		return fmt.Errorf("failed to get reviewer: %w", err)
	}
	if !actor.Can(permission) {
		return user.ErrInsufficientPermission
	}
	return nil
}

func (l *LeaveServiceImpl) lockEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	emp, err := l.EmployeeRepository.LockByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to lock employee: %w", err)
	}
	return emp, nil
}

// notifyApplicant tells the employee their request was reviewed. Failures are logged only.
func (l *LeaveServiceImpl) notifyApplicant(ctx context.Context, request leave.Request) {
	emp, err := l.EmployeeRepository.GetByID(ctx, request.EmployeeID)
	if err != nil {
		slog.Warn("leave review notification skipped", "request_id", request.ID, "error", err)
		return
	}

	payload := notification.Payload{
		"request_id": request.ID,
		"status":     string(request.Status),
		"start_date": request.StartDate.Format("2006-01-02"),
		"end_date":   request.EndDate.Format("2006-01-02"),
		"category":   string(request.Category),
	}
	if request.DeclineReason != nil {
		payload["decline_reason"] = *request.DeclineReason
	}

	if err := l.notificationService.NotifyUser(ctx, emp.UserID, notification.KindLeaveRequestReviewed, payload); err != nil {
		slog.Warn("failed to notify leave applicant", "request_id", request.ID, "user_id", emp.UserID, "error", err)
	}
}

// Submit implements leave.LeaveService.
func (l *LeaveServiceImpl) Submit(ctx context.Context, req leave.SubmitRequest) (leave.RequestResponse, error) {
	if err := req.Validate(clock.Today(l.clock)); err != nil {
		return leave.RequestResponse{}, err
	}

	emp, err := l.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return leave.RequestResponse{}, err
		}
		return leave.RequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	created, err := l.requestService.Create(ctx, req)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	// Best effort: the request stands even if nobody could be told about it.
	err = l.notificationService.NotifyAdmins(ctx, notification.KindLeaveRequestSubmitted, notification.Payload{
		"request_id":     created.ID,
		"employee_name":  emp.Name,
		"start_date":     created.StartDate.Format("2006-01-02"),
		"end_date":       created.EndDate.Format("2006-01-02"),
		"number_of_days": created.NumberOfDays,
		"category":       string(created.Category),
		"reason":         created.Reason,
	})
	if err != nil {
		slog.Warn("failed to notify admins of leave request", "request_id", created.ID, "error", err)
	}

	name := emp.Name
	created.EmployeeName = &name
	return leave.NewRequestResponse(created), nil
}

// Approve implements leave.LeaveService.
func (l *LeaveServiceImpl) Approve(ctx context.Context, requestID string, approverID string) (leave.RequestResponse, error) {
	if err := l.authorize(ctx, approverID, user.PermissionLeaveApprove); err != nil {
		return leave.RequestResponse{}, err
	}

	var approved leave.Request
	err := l.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := l.requestService.Lock(txCtx, requestID)
		if err != nil {
			return err
		}
		if !request.IsPending() {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		if _, err := l.lockEmployee(txCtx, request.EmployeeID); err != nil {
			return err
		}

		days := leave.InclusiveDayCount(request.StartDate, request.EndDate)
		if _, err := l.balanceService.Avail(txCtx, request.EmployeeID, request.Category, days, approverID); err != nil {
			return err
		}

		approved, err = l.requestService.Approve(txCtx, request, approverID)
		return err
	})
	if err != nil {
		return leave.RequestResponse{}, err
	}

	slog.Info("leave request approved",
		"request_id", approved.ID,
		"employee_id", approved.EmployeeID,
		"days", approved.DaysApproved,
		"approved_by", approverID,
	)

	l.notifyApplicant(ctx, approved)
	return leave.NewRequestResponse(approved), nil
}

// Decline implements leave.LeaveService.
func (l *LeaveServiceImpl) Decline(ctx context.Context, requestID string, declinerID string, req leave.DeclineRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}
	if err := l.authorize(ctx, declinerID, user.PermissionLeaveApprove); err != nil {
		return leave.RequestResponse{}, err
	}

	var declined leave.Request
	err := l.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := l.requestService.Lock(txCtx, requestID)
		if err != nil {
			return err
		}
		declined, err = l.requestService.Decline(txCtx, request, declinerID, req.Reason)
		return err
	})
	if err != nil {
		return leave.RequestResponse{}, err
	}

	slog.Info("leave request declined", "request_id", declined.ID, "declined_by", declinerID)

	l.notifyApplicant(ctx, declined)
	return leave.NewRequestResponse(declined), nil
}

// GetLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, requestID string) (leave.RequestResponse, error) {
	request, err := l.requestService.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.RequestResponse{}, err
		}
		return leave.RequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return leave.NewRequestResponse(request), nil
}

// ListLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.ListFilter) (leave.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListRequestResponse{}, err
	}
	filter.Pagination = filter.Pagination.Normalize()

	requests, total, err := l.requestService.List(ctx, filter)
	if err != nil {
		return leave.ListRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.NewRequestResponse(r))
	}

	return leave.ListRequestResponse{
		PageMeta:      utils.NewPageMeta(filter.Pagination, total),
		LeaveRequests: responses,
	}, nil
}

// GetBalances implements leave.LeaveService.
func (l *LeaveServiceImpl) GetBalances(ctx context.Context, employeeID string) ([]leave.BalanceResponse, error) {
	balances, err := l.balanceService.List(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, leave.NewBalanceResponse(b))
	}
	return responses, nil
}

// EditBeginningBalance implements leave.LeaveService.
func (l *LeaveServiceImpl) EditBeginningBalance(ctx context.Context, req leave.EditBalanceRequest) (leave.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}
	if err := l.authorize(ctx, req.AdminID, user.PermissionLeaveBalanceManage); err != nil {
		return leave.BalanceResponse{}, err
	}

	var updated leave.Balance
	err := l.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := l.lockEmployee(txCtx, req.EmployeeID); err != nil {
			return err
		}
		var err error
		updated, err = l.balanceService.Reset(txCtx, req)
		return err
	})
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	return leave.NewBalanceResponse(updated), nil
}
