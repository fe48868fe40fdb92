package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type sweepOutcome int

const (
	outcomeNone sweepOutcome = iota
	outcomeAbsent
	outcomeOnLeave
	outcomeAlreadyMarked
)

type AbsenceSweeperImpl struct {
	slotRepo       schedule.SlotRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.RequestRepository
	clock          clock.Clock
}

func NewAbsenceSweeper(
	slotRepo schedule.SlotRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.RequestRepository,
	clk clock.Clock,
) attendance.AbsenceSweeper {
	return &AbsenceSweeperImpl{
		slotRepo:       slotRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		clock:          clk,
	}
}

// MarkAbsences implements attendance.AbsenceSweeper. Each employee is evaluated once,
// against their earliest slot of the day; a failure on one employee is logged and
// counted without stopping the run.
func (s *AbsenceSweeperImpl) MarkAbsences(ctx context.Context, date time.Time) (attendance.SweepSummary, error) {
	day := clock.DateOf(date, s.clock.Location())
	summary := attendance.SweepSummary{Date: day.Format("2006-01-02")}
	if day.After(clock.Today(s.clock)) {
		return summary, attendance.ErrSweepFutureDate
	}

	slots, err := s.slotRepo.ListAssignedOnDate(ctx, day)
	if err != nil {
		return summary, fmt.Errorf("failed to list assigned slots: %w", err)
	}

	byEmployee := make(map[string]schedule.Slot, len(slots))
	for _, slot := range slots {
		employeeID := *slot.AssignedEmployeeID
		if current, ok := byEmployee[employeeID]; !ok || slot.Start.Before(current.Start) {
			byEmployee[employeeID] = slot
		}
	}

	employeeIDs := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	summary.TotalSchedules = len(employeeIDs)

	for _, employeeID := range employeeIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		slot := byEmployee[employeeID]
		outcome, err := s.sweepSlot(ctx, employeeID, slot)
		if err != nil {
			summary.Failed++
			slog.Error("absence sweep failed for employee",
				"employee_id", employeeID,
				"slot_id", slot.ID,
				"date", summary.Date,
				"error", err,
			)
			continue
		}

		switch outcome {
		case outcomeAbsent:
			summary.AbsencesMarked++
		case outcomeOnLeave:
			summary.EmployeesOnLeave++
		case outcomeAlreadyMarked:
			summary.AlreadyMarked++
		}
	}

	slog.Info("absence sweep completed",
		"date", summary.Date,
		"total_schedules", summary.TotalSchedules,
		"absences_marked", summary.AbsencesMarked,
		"employees_on_leave", summary.EmployeesOnLeave,
		"already_marked", summary.AlreadyMarked,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (s *AbsenceSweeperImpl) sweepSlot(ctx context.Context, employeeID string, slot schedule.Slot) (sweepOutcome, error) {
	approved, err := s.leaveRepo.FindApprovedCovering(ctx, employeeID, slot.Date)
	switch {
	case err == nil:
		if _, err := s.attendanceRepo.CreateIfAbsent(ctx, attendance.MarkOnLeave(employeeID, slot, approved.ID)); err != nil {
			return outcomeNone, fmt.Errorf("failed to create on-leave entry: %w", err)
		}
		return outcomeOnLeave, nil
	case !errors.Is(err, leave.ErrLeaveRequestNotFound):
		return outcomeNone, fmt.Errorf("failed to look up approved leave: %w", err)
	}

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, slot.Date)
	if err == nil {
		if existing.IsAbsent {
			return outcomeAlreadyMarked, nil
		}
		return outcomeNone, nil
	}
	if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return outcomeNone, fmt.Errorf("failed to get attendance entry: %w", err)
	}

	inserted, err := s.attendanceRepo.CreateIfAbsent(ctx, attendance.MarkAbsent(employeeID, slot))
	if err != nil {
		return outcomeNone, fmt.Errorf("failed to create absent entry: %w", err)
	}
	if !inserted {
		// An entry appeared between the read and the insert, most likely a late time-in.
		return outcomeNone, nil
	}
	return outcomeAbsent, nil
}
