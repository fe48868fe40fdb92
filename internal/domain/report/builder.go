package report

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

func clockString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format("15:04")
	return &s
}

// BuildMonthly folds one employee's entries for a month into the report.
func BuildMonthly(emp employee.Employee, entries []attendance.Entry, month, year int, loc *time.Location, generatedAt time.Time) MonthlyAttendanceReport {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)

	report := MonthlyAttendanceReport{
		PeriodMonth:   month,
		PeriodYear:    year,
		PeriodStart:   start.Format("2006-01-02"),
		PeriodEnd:     end.Format("2006-01-02"),
		GeneratedAt:   generatedAt.Format(time.RFC3339),
		EmployeeID:    emp.ID,
		EmployeeName:  emp.Name,
		EmployeeEmail: emp.Email,
		DailyLogs:     make([]AttendanceDailyLog, 0, len(entries)),
	}

	s := &report.Summary
	for _, e := range entries {
		s.TotalDays++
		switch e.Status {
		case attendance.StatusPresent:
			s.TotalPresent++
		case attendance.StatusLate:
			s.TotalLate++
		case attendance.StatusAbsent:
			s.TotalAbsent++
		case attendance.StatusOnLeave:
			s.TotalOnLeave++
		}
		if e.GracePeriodUsed {
			s.GracePeriodsUsed++
		}
		s.TotalWorkHours += e.TotalHours
		s.TotalLateMinutes += e.LateMinutes
		s.TotalOvertimeMinutes += e.OvertimeMinutes
		s.TotalUndertimeMinutes += e.UndertimeMinutes

		report.DailyLogs = append(report.DailyLogs, AttendanceDailyLog{
			Date:             e.Date.Format("2006-01-02"),
			DayOfWeek:        e.Date.Weekday().String(),
			ScheduledStart:   clockString(e.ScheduledStart, loc),
			ScheduledEnd:     clockString(e.ScheduledEnd, loc),
			TimeIn:           clockString(e.TimeIn, loc),
			TimeOut:          clockString(e.TimeOut(), loc),
			Status:           string(e.Status),
			BreakHours:       e.BreakTimeHours,
			TotalHours:       e.TotalHours,
			LateMinutes:      e.LateMinutes,
			OvertimeMinutes:  e.OvertimeMinutes,
			UndertimeMinutes: e.UndertimeMinutes,
		})
	}
	s.TotalWorkHours = math.Round(s.TotalWorkHours*100) / 100

	return report
}
