package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type AttendanceHandler interface {
	// Kiosk transitions, authenticated by the credentials in the body
	TimeIn(w http.ResponseWriter, r *http.Request)
	GoOnBreak(w http.ResponseWriter, r *http.Request)
	BackFromBreak(w http.ResponseWriter, r *http.Request)
	TimeOut(w http.ResponseWriter, r *http.Request)
	SkipBreakTimeOut(w http.ResponseWriter, r *http.Request)

	SubmitOvertimeReason(w http.ResponseWriter, r *http.Request)
	GetMyToday(w http.ResponseWriter, r *http.Request)
	ListMyAttendance(w http.ResponseWriter, r *http.Request)
	ListMyHistory(w http.ResponseWriter, r *http.Request)

	// Admin
	SweepAbsences(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	overtimeService   overtime.OvertimeService
	sweeper           attendance.AbsenceSweeper
	clock             clock.Clock
}

func NewAttendanceHandler(
	attendanceService attendance.AttendanceService,
	overtimeService overtime.OvertimeService,
	sweeper attendance.AbsenceSweeper,
	clk clock.Clock,
) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		overtimeService:   overtimeService,
		sweeper:           sweeper,
		clock:             clk,
	}
}

// TimeIn handles POST /attendance/time-in
func (h *attendanceHandlerImpl) TimeIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.TimeInRequest
	if !decodeJSON(w, r, &req, "TimeIn") {
		return
	}
	req.Meta = requestMeta(r)

	result, err := h.attendanceService.TimeIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timed in successfully", result)
}

type transitionFunc func(ctx context.Context, req attendance.CredentialsRequest) (attendance.TransitionResponse, error)

func (h *attendanceHandlerImpl) transition(w http.ResponseWriter, r *http.Request, op, message string, fn transitionFunc) {
	var req attendance.CredentialsRequest
	if !decodeJSON(w, r, &req, op) {
		return
	}
	req.Meta = requestMeta(r)

	result, err := fn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// GoOnBreak handles POST /attendance/go-on-break
func (h *attendanceHandlerImpl) GoOnBreak(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "GoOnBreak", "Break started", h.attendanceService.GoOnBreak)
}

// BackFromBreak handles POST /attendance/back-from-break
func (h *attendanceHandlerImpl) BackFromBreak(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "BackFromBreak", "Break ended", h.attendanceService.BackFromBreak)
}

// TimeOut handles POST /attendance/time-out
func (h *attendanceHandlerImpl) TimeOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "TimeOut", "Timed out successfully", h.attendanceService.TimeOut)
}

// SkipBreakTimeOut handles POST /attendance/skip-break-time-out
func (h *attendanceHandlerImpl) SkipBreakTimeOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "SkipBreakTimeOut", "Timed out successfully", h.attendanceService.SkipBreakTimeOut)
}

// SubmitOvertimeReason handles POST /attendance/overtime-reason
func (h *attendanceHandlerImpl) SubmitOvertimeReason(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFrom(w, r)
	if !ok {
		return
	}

	var req overtime.SubmitReasonRequest
	if !decodeJSON(w, r, &req, "SubmitOvertimeReason") {
		return
	}
	req.EmployeeID = employeeID

	record, err := h.overtimeService.SubmitReason(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Reason submitted successfully", record)
}

// GetMyToday handles GET /attendance/me/today
func (h *attendanceHandlerImpl) GetMyToday(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFrom(w, r)
	if !ok {
		return
	}

	entry, err := h.attendanceService.GetToday(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entry)
}

// ListMyAttendance handles GET /attendance/me?month=&year=
func (h *attendanceHandlerImpl) ListMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFrom(w, r)
	if !ok {
		return
	}

	// Defaults to the current month
	now := h.clock.Now()
	month, year, ok := monthYearFrom(w, r, int(now.Month()), now.Year())
	if !ok {
		return
	}

	entries, err := h.attendanceService.ListMyAttendance(r.Context(), employeeID, attendance.MonthFilter{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}

// ListMyHistory handles GET /attendance/me/history
func (h *attendanceHandlerImpl) ListMyHistory(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFrom(w, r)
	if !ok {
		return
	}

	history, err := h.attendanceService.ListHistory(r.Context(), employeeID, attendance.HistoryFilter{Pagination: paginationFrom(r)})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, history)
}

// SweepAbsences handles POST /admin/absences/sweep
func (h *attendanceHandlerImpl) SweepAbsences(w http.ResponseWriter, r *http.Request) {
	var req attendance.SweepRequest
	if !decodeOptionalJSON(w, r, &req, "SweepAbsences") {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	date := h.clock.Now()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, h.clock.Location())
		if err != nil {
			response.BadRequest(w, "invalid date", nil)
			return
		}
		date = parsed
	}

	summary, err := h.sweeper.MarkAbsences(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Absence sweep triggered manually", "date", summary.Date, "absences_marked", summary.AbsencesMarked)
	response.Success(w, summary)
}
