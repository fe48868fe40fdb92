package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type AttendanceJobs struct {
	sweeper attendance.AbsenceSweeper
	clock   clock.Clock
	sweepAt string
}

// NewAttendanceJobs wires the absence sweep to run daily at sweepAt ("HH:MM") in the clock's timezone.
func NewAttendanceJobs(sweeper attendance.AbsenceSweeper, clk clock.Clock, sweepAt string) *AttendanceJobs {
	return &AttendanceJobs{
		sweeper: sweeper,
		clock:   clk,
		sweepAt: sweepAt,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddDailyJob("mark_absent_employees", j.sweepAt, j.clock.Location(), j.MarkAbsentEmployees)
}

// MarkAbsentEmployees sweeps today's assigned slots.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	slog.Info("Cron: Starting mark absent employees job")
	start := time.Now()

	summary, err := j.sweeper.MarkAbsences(ctx, j.clock.Now())
	if err != nil {
		return fmt.Errorf("absence sweep failed: %w", err)
	}

	slog.Info("Cron: Marked absent employees",
		"date", summary.Date,
		"total_schedules", summary.TotalSchedules,
		"absences_marked", summary.AbsencesMarked,
		"employees_on_leave", summary.EmployeesOnLeave,
		"already_marked", summary.AlreadyMarked,
		"failed", summary.Failed,
		"duration", time.Since(start),
	)
	return nil
}
