package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

type AttendanceServiceImpl struct {
	transactor      database.Transactor
	authService     auth.AuthService
	employeeRepo    employee.EmployeeRepository
	scheduleService schedule.ScheduleService
	attendanceRepo  attendance.AttendanceRepository
	historyRepo     attendance.HistoryRepository
	clock           clock.Clock
	policy          attendance.Policy
	geofence        utils.Geofence
}

func NewAttendanceService(
	transactor database.Transactor,
	authService auth.AuthService,
	employeeRepo employee.EmployeeRepository,
	scheduleService schedule.ScheduleService,
	attendanceRepo attendance.AttendanceRepository,
	historyRepo attendance.HistoryRepository,
	clk clock.Clock,
	policy attendance.Policy,
	geofence utils.Geofence,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		transactor:      transactor,
		authService:     authService,
		employeeRepo:    employeeRepo,
		scheduleService: scheduleService,
		attendanceRepo:  attendanceRepo,
		historyRepo:     historyRepo,
		clock:           clk,
		policy:          policy,
		geofence:        geofence,
	}
}

// identify verifies the kiosk credentials and resolves the employee behind them.
func (a *AttendanceServiceImpl) identify(ctx context.Context, req attendance.CredentialsRequest) (auth.Identity, error) {
	identity, err := a.authService.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return auth.Identity{}, err
	}
	if !identity.IsEmployee() {
		return auth.Identity{}, employee.ErrEmployeeNotFound
	}
	return identity, nil
}

func (a *AttendanceServiceImpl) checkLocation(req attendance.TimeInRequest) error {
	if !a.geofence.Enabled() {
		return nil
	}
	if req.Latitude == nil || req.Longitude == nil {
		return attendance.ErrLocationRequired
	}
	if !a.geofence.Contains(*req.Latitude, *req.Longitude) {
		return attendance.ErrOutsideAllowedRadius
	}
	return nil
}

func (a *AttendanceServiceImpl) appendHistory(ctx context.Context, action attendance.Action, entry attendance.Entry, now time.Time, details attendance.HistoryDetails, meta attendance.RequestMeta) error {
	err := a.historyRepo.Append(ctx, attendance.HistoryEntry{
		EmployeeID:   entry.EmployeeID,
		AttendanceID: entry.ID,
		Date:         entry.Date,
		Action:       action,
		OccurredAt:   now,
		Details:      details,
		Meta:         meta,
	})
	if err != nil {
		return fmt.Errorf("failed to append attendance history: %w", err)
	}
	return nil
}

// TimeIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) TimeIn(ctx context.Context, req attendance.TimeInRequest) (attendance.TransitionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TransitionResponse{}, err
	}

	identity, err := a.identify(ctx, req.CredentialsRequest)
	if err != nil {
		return attendance.TransitionResponse{}, err
	}

	if err := a.checkLocation(req); err != nil {
		return attendance.TransitionResponse{}, err
	}

	now := a.clock.Now()
	var (
		created   attendance.Entry
		graceLeft int
	)

	err = a.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		emp, err := a.employeeRepo.LockByID(txCtx, identity.EmployeeID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return err
			}
			return fmt.Errorf("failed to lock employee: %w", err)
		}

		slot, err := a.scheduleService.FindTodaySlotFor(txCtx, emp.ID)
		if err != nil {
			return err
		}

		existing, err := a.attendanceRepo.GetByEmployeeAndDate(txCtx, emp.ID, slot.Date)
		if err == nil {
			return attendance.TimeInConflict(existing)
		}
		if !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return fmt.Errorf("failed to check today's attendance: %w", err)
		}

		lateness := a.policy.EvaluateLateness(now, slot.Start, emp.LateGracePeriodCount)
		graceLeft = emp.LateGracePeriodCount
		if lateness.GracePeriodUsed {
			graceLeft--
			if err := a.employeeRepo.UpdateGracePeriodCount(txCtx, emp.ID, graceLeft); err != nil {
				return fmt.Errorf("failed to update grace period count: %w", err)
			}
		}

		created, err = a.attendanceRepo.Create(txCtx, attendance.StartDay(emp.ID, slot, now, lateness))
		if err != nil {
			if errors.Is(err, attendance.ErrEntryExists) {
				return attendance.ErrAlreadyTimedIn
			}
			return fmt.Errorf("failed to create attendance entry: %w", err)
		}

		details := created.Snapshot()
		details.GracePeriodsLeft = &graceLeft
		return a.appendHistory(txCtx, attendance.ActionTimeIn, created, now, details, req.Meta)
	})
	if err != nil {
		return attendance.TransitionResponse{}, err
	}

	slog.Info("employee timed in",
		"employee_id", created.EmployeeID,
		"attendance_id", created.ID,
		"late_minutes", created.LateMinutes,
		"grace_period_used", created.GracePeriodUsed,
	)

	resp := attendance.NewTransitionResponse(attendance.ActionTimeIn, created)
	resp.GracePeriodsLeft = &graceLeft
	return resp, nil
}

// transitionFunc applies one action to today's entry. The returned float is the
// length of a break that just ended, zero otherwise.
type transitionFunc func(entry attendance.Entry, now time.Time) (attendance.Entry, float64, error)

func (a *AttendanceServiceImpl) transition(ctx context.Context, req attendance.CredentialsRequest, action attendance.Action, apply transitionFunc) (attendance.TransitionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TransitionResponse{}, err
	}

	identity, err := a.identify(ctx, req)
	if err != nil {
		return attendance.TransitionResponse{}, err
	}

	now := a.clock.Now()
	today := clock.DateOf(now, a.clock.Location())
	var (
		updated       attendance.Entry
		breakDuration float64
	)

	err = a.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := a.employeeRepo.LockByID(txCtx, identity.EmployeeID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return err
			}
			return fmt.Errorf("failed to lock employee: %w", err)
		}

		entry, err := a.attendanceRepo.GetByEmployeeAndDate(txCtx, identity.EmployeeID, today)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrNotTimedIn
			}
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}

		updated, breakDuration, err = apply(entry, now)
		if err != nil {
			return err
		}

		if err := a.attendanceRepo.Update(txCtx, updated); err != nil {
			return fmt.Errorf("failed to update attendance entry: %w", err)
		}

		details := updated.Snapshot()
		details.BreakDurationHours = breakDuration
		return a.appendHistory(txCtx, action, updated, now, details, req.Meta)
	})
	if err != nil {
		return attendance.TransitionResponse{}, err
	}

	slog.Info("attendance transition",
		"action", action,
		"employee_id", updated.EmployeeID,
		"attendance_id", updated.ID,
		"state", updated.State.Name(),
	)

	resp := attendance.NewTransitionResponse(action, updated)
	if action == attendance.ActionBackFromBreak {
		resp.BreakDurationHours = &breakDuration
	}
	return resp, nil
}

// GoOnBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GoOnBreak(ctx context.Context, req attendance.CredentialsRequest) (attendance.TransitionResponse, error) {
	return a.transition(ctx, req, attendance.ActionGoOnBreak, func(e attendance.Entry, now time.Time) (attendance.Entry, float64, error) {
		next, err := e.StartBreak(now)
		return next, 0, err
	})
}

// BackFromBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) BackFromBreak(ctx context.Context, req attendance.CredentialsRequest) (attendance.TransitionResponse, error) {
	return a.transition(ctx, req, attendance.ActionBackFromBreak, func(e attendance.Entry, now time.Time) (attendance.Entry, float64, error) {
		return e.EndBreak(now)
	})
}

// TimeOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) TimeOut(ctx context.Context, req attendance.CredentialsRequest) (attendance.TransitionResponse, error) {
	return a.transition(ctx, req, attendance.ActionTimeOut, func(e attendance.Entry, now time.Time) (attendance.Entry, float64, error) {
		next, err := e.Complete(now, a.policy)
		return next, 0, err
	})
}

// SkipBreakTimeOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) SkipBreakTimeOut(ctx context.Context, req attendance.CredentialsRequest) (attendance.TransitionResponse, error) {
	return a.transition(ctx, req, attendance.ActionSkipBreakTimeOut, func(e attendance.Entry, now time.Time) (attendance.Entry, float64, error) {
		next, err := e.CompleteSkippingBreak(now, a.policy)
		return next, 0, err
	})
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (attendance.EntryResponse, error) {
	entry, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, clock.Today(a.clock))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.EntryResponse{}, err
		}
		return attendance.EntryResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	return attendance.NewEntryResponse(entry), nil
}

// ListMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListMyAttendance(ctx context.Context, employeeID string, filter attendance.MonthFilter) ([]attendance.EntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	from, to := filter.Bounds(a.clock.Location())
	entries, err := a.attendanceRepo.ListByEmployeeBetween(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return attendance.NewEntryResponses(entries), nil
}

// ListHistory implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListHistory(ctx context.Context, employeeID string, filter attendance.HistoryFilter) (attendance.ListHistoryResponse, error) {
	page := filter.Pagination.Normalize()

	entries, total, err := a.historyRepo.ListByEmployee(ctx, employeeID, page)
	if err != nil {
		return attendance.ListHistoryResponse{}, fmt.Errorf("failed to list attendance history: %w", err)
	}

	history := make([]attendance.HistoryResponse, 0, len(entries))
	for _, h := range entries {
		history = append(history, attendance.NewHistoryResponse(h))
	}

	return attendance.ListHistoryResponse{
		PageMeta: utils.NewPageMeta(page, total),
		History:  history,
	}, nil
}
