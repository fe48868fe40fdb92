package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// Generate Monthly Attendance Report for one employee
	GenerateMonthlyAttendanceReport(ctx context.Context, req MonthlyAttendanceReportRequest) (MonthlyAttendanceReport, error)

	// RenderMonthlyAttendancePDF renders the same report as a PDF document
	RenderMonthlyAttendancePDF(ctx context.Context, req MonthlyAttendanceReportRequest) ([]byte, error)
}
