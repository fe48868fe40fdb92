package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type ReportServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	clock          clock.Clock
}

func NewReportService(employeeRepo employee.EmployeeRepository, attendanceRepo attendance.AttendanceRepository, clk clock.Clock) report.ReportService {
	return &ReportServiceImpl{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		clock:          clk,
	}
}

// GenerateMonthlyAttendanceReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateMonthlyAttendanceReport(ctx context.Context, req report.MonthlyAttendanceReportRequest) (report.MonthlyAttendanceReport, error) {
	now := s.clock.Now()
	if err := req.Validate(now.Year()); err != nil {
		return report.MonthlyAttendanceReport{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return report.MonthlyAttendanceReport{}, err
		}
		return report.MonthlyAttendanceReport{}, fmt.Errorf("failed to get employee: %w", err)
	}

	loc := s.clock.Location()
	from, to := attendance.MonthFilter{Month: req.Month, Year: req.Year}.Bounds(loc)

	entries, err := s.attendanceRepo.ListByEmployeeBetween(ctx, emp.ID, from, to)
	if err != nil {
		return report.MonthlyAttendanceReport{}, fmt.Errorf("failed to get attendance data: %w", err)
	}

	return report.BuildMonthly(emp, entries, req.Month, req.Year, loc, now), nil
}

// RenderMonthlyAttendancePDF implements report.ReportService.
func (s *ReportServiceImpl) RenderMonthlyAttendancePDF(ctx context.Context, req report.MonthlyAttendanceReportRequest) ([]byte, error) {
	monthly, err := s.GenerateMonthlyAttendanceReport(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := renderPDF(monthly)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}
	return doc, nil
}
