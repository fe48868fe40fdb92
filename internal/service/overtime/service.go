package overtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

type OvertimeServiceImpl struct {
	transactor          database.Transactor
	overtimeRepo        overtime.OvertimeRepository
	attendanceRepo      attendance.AttendanceRepository
	userRepo            user.UserRepository
	employeeRepo        employee.EmployeeRepository
	notificationService notification.Service
	clock               clock.Clock
	// strictNotify makes admin notification part of the submission: if it fails nothing is stored.
	strictNotify bool
}

func NewOvertimeService(
	transactor database.Transactor,
	overtimeRepo overtime.OvertimeRepository,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	employeeRepo employee.EmployeeRepository,
	notificationService notification.Service,
	clk clock.Clock,
	strictNotify bool,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		transactor:          transactor,
		overtimeRepo:        overtimeRepo,
		attendanceRepo:      attendanceRepo,
		userRepo:            userRepo,
		employeeRepo:        employeeRepo,
		notificationService: notificationService,
		clock:               clk,
		strictNotify:        strictNotify,
	}
}

func (o *OvertimeServiceImpl) loadEntry(ctx context.Context, req overtime.SubmitReasonRequest) (attendance.Entry, error) {
	var (
		entry attendance.Entry
		err   error
	)
	if req.AttendanceID != nil {
		entry, err = o.attendanceRepo.GetByID(ctx, *req.AttendanceID)
		if err == nil && entry.EmployeeID != req.EmployeeID {
			err = attendance.ErrAttendanceNotFound
		}
	} else {
		entry, err = o.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, clock.Today(o.clock))
	}
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Entry{}, err
		}
		return attendance.Entry{}, fmt.Errorf("failed to get attendance entry: %w", err)
	}
	return entry, nil
}

func recordFor(entry attendance.Entry, reason string) (overtime.Record, error) {
	timeOut := entry.TimeOut()
	if timeOut == nil {
		return overtime.Record{}, overtime.ErrNotTimedOut
	}
	if !entry.NeedsReason() || entry.ScheduledEnd == nil {
		return overtime.Record{}, overtime.ErrNoDeviation
	}
	return overtime.Record{
		EmployeeID:    entry.EmployeeID,
		AttendanceID:  entry.ID,
		Type:          overtime.Type(entry.ReasonFor()),
		Date:          entry.Date,
		ScheduledEnd:  *entry.ScheduledEnd,
		ActualTimeOut: *timeOut,
		Minutes:       entry.Deviation.Minutes(),
		Reason:        reason,
		Status:        overtime.StatusPending,
	}, nil
}

func submittedPayload(record overtime.Record, employeeName string) notification.Payload {
	return notification.Payload{
		"record_id":     record.ID,
		"employee_name": employeeName,
		"type":          string(record.Type),
		"date":          record.Date.Format("2006-01-02"),
		"minutes":       record.Minutes,
		"reason":        record.Reason,
	}
}

// SubmitReason implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) SubmitReason(ctx context.Context, req overtime.SubmitReasonRequest) (overtime.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RecordResponse{}, err
	}

	entry, err := o.loadEntry(ctx, req)
	if err != nil {
		return overtime.RecordResponse{}, err
	}

	record, err := recordFor(entry, req.Reason)
	if err != nil {
		return overtime.RecordResponse{}, err
	}
	record.SubmittedAt = o.clock.Now()

	var employeeName string
	if emp, err := o.employeeRepo.GetByID(ctx, req.EmployeeID); err == nil {
		employeeName = emp.Name
	}

	var created overtime.Record
	err = o.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err = o.overtimeRepo.Create(txCtx, record)
		if err != nil {
			if errors.Is(err, overtime.ErrAlreadySubmitted) {
				return err
			}
			return fmt.Errorf("failed to create overtime record: %w", err)
		}

		if !o.strictNotify {
			return nil
		}
		if err := o.notificationService.NotifyAdmins(txCtx, notification.KindOvertimeReasonSubmitted, submittedPayload(created, employeeName)); err != nil {
			slog.Error("overtime reason rejected, admins could not be notified",
				"employee_id", req.EmployeeID,
				"attendance_id", entry.ID,
				"error", err,
			)
			return fmt.Errorf("%w: %v", overtime.ErrNotificationFailed, err)
		}
		return nil
	})
	if err != nil {
		return overtime.RecordResponse{}, err
	}

	if !o.strictNotify {
		if err := o.notificationService.NotifyAdmins(ctx, notification.KindOvertimeReasonSubmitted, submittedPayload(created, employeeName)); err != nil {
			slog.Warn("failed to notify admins of overtime reason", "record_id", created.ID, "error", err)
		}
	}

	slog.Info("overtime reason submitted",
		"record_id", created.ID,
		"employee_id", created.EmployeeID,
		"type", created.Type,
		"minutes", created.Minutes,
	)
	return overtime.NewRecordResponse(created), nil
}

// GetRecord implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) GetRecord(ctx context.Context, id string) (overtime.RecordResponse, error) {
	record, err := o.overtimeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, overtime.ErrRecordNotFound) {
			return overtime.RecordResponse{}, err
		}
		return overtime.RecordResponse{}, fmt.Errorf("failed to get overtime record: %w", err)
	}
	return overtime.NewRecordResponse(record), nil
}

// List implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) List(ctx context.Context, filter overtime.ListFilter) (overtime.ListRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return overtime.ListRecordResponse{}, err
	}
	filter.Pagination = filter.Pagination.Normalize()

	records, total, err := o.overtimeRepo.List(ctx, filter)
	if err != nil {
		return overtime.ListRecordResponse{}, fmt.Errorf("failed to list overtime records: %w", err)
	}

	responses := make([]overtime.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, overtime.NewRecordResponse(r))
	}
	return overtime.ListRecordResponse{
		PageMeta: utils.NewPageMeta(filter.Pagination, total),
		Records:  responses,
	}, nil
}

// Approve implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) Approve(ctx context.Context, id string, reviewerID string, req overtime.ReviewRequest) (overtime.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RecordResponse{}, err
	}
	return o.review(ctx, id, reviewerID, true, req.Notes)
}

// Decline implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) Decline(ctx context.Context, id string, reviewerID string, req overtime.ReviewRequest) (overtime.RecordResponse, error) {
	if err := req.ValidateDecline(); err != nil {
		return overtime.RecordResponse{}, err
	}
	return o.review(ctx, id, reviewerID, false, req.Notes)
}

func (o *OvertimeServiceImpl) review(ctx context.Context, id, reviewerID string, approve bool, notes *string) (overtime.RecordResponse, error) {
	reviewer, err := o.userRepo.GetByID(ctx, reviewerID)
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return overtime.RecordResponse{}, fmt.Errorf("failed to get reviewer: %w", err)
	}
	if err != nil || !reviewer.Can(user.PermissionOvertimeReview) {
		return overtime.RecordResponse{}, user.ErrInsufficientPermission
	}

	var reviewed overtime.Record
	err = o.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		record, err := o.overtimeRepo.GetForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, overtime.ErrRecordNotFound) {
				return err
			}
			return fmt.Errorf("failed to lock overtime record: %w", err)
		}

		reviewed, err = record.Review(approve, reviewerID, notes, o.clock.Now())
		if err != nil {
			return err
		}
		if err := o.overtimeRepo.Update(txCtx, reviewed); err != nil {
			return fmt.Errorf("failed to update overtime record: %w", err)
		}
		return nil
	})
	if err != nil {
		return overtime.RecordResponse{}, err
	}

	slog.Info("overtime record reviewed",
		"record_id", reviewed.ID,
		"status", reviewed.Status,
		"reviewed_by", reviewerID,
	)

	if emp, err := o.employeeRepo.GetByID(ctx, reviewed.EmployeeID); err == nil {
		payload := notification.Payload{
			"record_id": reviewed.ID,
			"type":      string(reviewed.Type),
			"date":      reviewed.Date.Format("2006-01-02"),
			"status":    string(reviewed.Status),
		}
		if reviewed.ReviewNotes != nil {
			payload["review_notes"] = *reviewed.ReviewNotes
		}
		if err := o.notificationService.NotifyUser(ctx, emp.UserID, notification.KindOvertimeReviewed, payload); err != nil {
			slog.Warn("failed to notify employee of overtime review", "record_id", reviewed.ID, "error", err)
		}
	}

	return overtime.NewRecordResponse(reviewed), nil
}

// Statistics implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) Statistics(ctx context.Context, filter overtime.StatisticsFilter) (overtime.Statistics, error) {
	if err := filter.Validate(); err != nil {
		return overtime.Statistics{}, err
	}

	from, to := filter.Range()
	rows, err := o.overtimeRepo.Statistics(ctx, from, to)
	if err != nil {
		return overtime.Statistics{}, fmt.Errorf("failed to aggregate overtime records: %w", err)
	}
	return overtime.Summarize(rows), nil
}
