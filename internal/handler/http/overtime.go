package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type OvertimeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Decline(w http.ResponseWriter, r *http.Request)
}

type overtimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &overtimeHandlerImpl{
		overtimeService: overtimeService,
	}
}

// List handles GET /admin/overtime
func (h *overtimeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := overtime.ListFilter{Pagination: paginationFrom(r)}
	if status := queryString(r, "status"); status != nil {
		s := overtime.Status(*status)
		filter.Status = &s
	}
	if typ := queryString(r, "type"); typ != nil {
		t := overtime.Type(*typ)
		filter.Type = &t
	}
	filter.EmployeeID = queryString(r, "employee_id")

	result, err := h.overtimeService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Statistics handles GET /admin/overtime/statistics?from=&to=
func (h *overtimeHandlerImpl) Statistics(w http.ResponseWriter, r *http.Request) {
	filter := overtime.StatisticsFilter{
		From: queryString(r, "from"),
		To:   queryString(r, "to"),
	}

	stats, err := h.overtimeService.Statistics(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

// Get handles GET /admin/overtime/{id}
func (h *overtimeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	recordID, ok := idParam(w, r, "id", overtime.ErrRecordNotFound)
	if !ok {
		return
	}

	record, err := h.overtimeService.GetRecord(r.Context(), recordID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// Approve handles POST /admin/overtime/{id}/approve
func (h *overtimeHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	recordID, ok := idParam(w, r, "id", overtime.ErrRecordNotFound)
	if !ok {
		return
	}

	var req overtime.ReviewRequest
	if !decodeOptionalJSON(w, r, &req, "ApproveOvertime") {
		return
	}

	record, err := h.overtimeService.Approve(r.Context(), recordID, reviewerID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime record approved", record)
}

// Decline handles POST /admin/overtime/{id}/decline
func (h *overtimeHandlerImpl) Decline(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	recordID, ok := idParam(w, r, "id", overtime.ErrRecordNotFound)
	if !ok {
		return
	}

	var req overtime.ReviewRequest
	if !decodeOptionalJSON(w, r, &req, "DeclineOvertime") {
		return
	}

	record, err := h.overtimeService.Decline(r.Context(), recordID, reviewerID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime record declined", record)
}
