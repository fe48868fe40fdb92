package http

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Monthly Attendance Report
	GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	clock         clock.Clock
}

func NewReportHandler(reportService report.ReportService, clk clock.Clock) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		clock:         clk,
	}
}

// GetMonthlyAttendanceReport handles GET /admin/reports/employees/{id}/monthly
func (h *reportHandlerImpl) GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	now := h.clock.Now()
	month, year, ok := monthYearFrom(w, r, int(now.Month()), now.Year())
	if !ok {
		return
	}

	req := report.MonthlyAttendanceReportRequest{
		EmployeeID: chi.URLParam(r, "id"),
		Month:      month,
		Year:       year,
		Format:     report.Format(r.URL.Query().Get("format")),
	}

	if req.Format == report.FormatPDF {
		body, err := h.reportService.RenderMonthlyAttendancePDF(ctx, req)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		filename := fmt.Sprintf("attendance-%s-%04d-%02d.pdf", req.EmployeeID, year, month)
		response.File(w, "application/pdf", filename, body)
		return
	}

	result, err := h.reportService.GenerateMonthlyAttendanceReport(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
