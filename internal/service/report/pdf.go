package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
)

var dailyColumns = []struct {
	title string
	width float64
}{
	{"Date", 24}, {"Day", 24}, {"Schedule", 28}, {"Time In", 20}, {"Time Out", 20},
	{"Status", 22}, {"Break (h)", 20}, {"Hours", 18}, {"Late", 16}, {"OT", 16}, {"UT", 16},
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func renderPDF(r report.MonthlyAttendanceReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Attendance %s %d-%02d", r.EmployeeName, r.PeriodYear, r.PeriodMonth), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Monthly Attendance Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s <%s>", r.EmployeeName, r.EmployeeEmail))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", r.PeriodStart, r.PeriodEnd))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", r.GeneratedAt))
	pdf.Ln(10)

	s := r.Summary
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Summary")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Days: %d   Present: %d   Late: %d   Absent: %d   On leave: %d   Grace periods used: %d",
		s.TotalDays, s.TotalPresent, s.TotalLate, s.TotalAbsent, s.TotalOnLeave, s.GracePeriodsUsed))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Work hours: %.2f   Late: %d min   Overtime: %d min   Undertime: %d min",
		s.TotalWorkHours, s.TotalLateMinutes, s.TotalOvertimeMinutes, s.TotalUndertimeMinutes))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range dailyColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range r.DailyLogs {
		schedule := "-"
		if d.ScheduledStart != nil && d.ScheduledEnd != nil {
			schedule = *d.ScheduledStart + "-" + *d.ScheduledEnd
		}
		cells := []string{
			d.Date,
			d.DayOfWeek,
			schedule,
			orDash(d.TimeIn),
			orDash(d.TimeOut),
			d.Status,
			fmt.Sprintf("%.2f", d.BreakHours),
			fmt.Sprintf("%.2f", d.TotalHours),
			fmt.Sprintf("%d", d.LateMinutes),
			fmt.Sprintf("%d", d.OvertimeMinutes),
			fmt.Sprintf("%d", d.UndertimeMinutes),
		}
		for i, c := range dailyColumns {
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(r.DailyLogs) == 0 {
		pdf.Cell(0, 8, "No attendance recorded for this period.")
	}

	if generated, err := time.Parse(time.RFC3339, r.GeneratedAt); err == nil {
		pdf.SetCreationDate(generated)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
