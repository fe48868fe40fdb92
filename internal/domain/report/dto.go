package report

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// MONTHLY ATTENDANCE REPORT
// ========================================

type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

type MonthlyAttendanceReportRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Format     Format `json:"format"`
}

// Validate checks the period; currentYear bounds how far ahead a report may be asked for.
func (r *MonthlyAttendanceReportRequest) Validate(currentYear int) error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	if r.Month < 1 || r.Month > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}

	if r.Year < 2020 || r.Year > currentYear+1 {
		errs.Add("year", fmt.Sprintf("year must be between 2020 and %d", currentYear+1))
	}

	if r.Format != "" && r.Format != FormatJSON && r.Format != FormatPDF {
		errs.Add("format", "format must be json or pdf")
	}

	return errs.OrNil()
}

type MonthlyAttendanceReport struct {
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	GeneratedAt string `json:"generated_at"`

	EmployeeID    string `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	EmployeeEmail string `json:"employee_email"`

	Summary   AttendanceSummary    `json:"summary"`
	DailyLogs []AttendanceDailyLog `json:"daily_logs"`
}

type AttendanceSummary struct {
	TotalDays             int     `json:"total_days"`
	TotalPresent          int     `json:"total_present"`
	TotalLate             int     `json:"total_late"`
	TotalAbsent           int     `json:"total_absent"`
	TotalOnLeave          int     `json:"total_on_leave"`
	GracePeriodsUsed      int     `json:"grace_periods_used"`
	TotalWorkHours        float64 `json:"total_work_hours"`
	TotalLateMinutes      int     `json:"total_late_minutes"`
	TotalOvertimeMinutes  int     `json:"total_overtime_minutes"`
	TotalUndertimeMinutes int     `json:"total_undertime_minutes"`
}

type AttendanceDailyLog struct {
	Date             string  `json:"date"`
	DayOfWeek        string  `json:"day_of_week"`
	ScheduledStart   *string `json:"scheduled_start"`
	ScheduledEnd     *string `json:"scheduled_end"`
	TimeIn           *string `json:"time_in"`
	TimeOut          *string `json:"time_out"`
	Status           string  `json:"status"`
	BreakHours       float64 `json:"break_hours"`
	TotalHours       float64 `json:"total_hours"`
	LateMinutes      int     `json:"late_minutes"`
	OvertimeMinutes  int     `json:"overtime_minutes"`
	UndertimeMinutes int     `json:"undertime_minutes"`
}
