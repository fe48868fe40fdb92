package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type ScheduleHandler interface {
	ListSlots(w http.ResponseWriter, r *http.Request)
	CreateSlot(w http.ResponseWriter, r *http.Request)
	CreateRecurringSlots(w http.ResponseWriter, r *http.Request)
	GetSlot(w http.ResponseWriter, r *http.Request)
	DeleteSlot(w http.ResponseWriter, r *http.Request)

	// Assignment
	AssignSlot(w http.ResponseWriter, r *http.Request)
	ReassignSlot(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
	clock           clock.Clock
}

func NewScheduleHandler(scheduleService schedule.ScheduleService, clk clock.Clock) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
		clock:           clk,
	}
}

// ListSlots handles GET /admin/schedules?month=&year=
func (h *scheduleHandlerImpl) ListSlots(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	month, year, ok := monthYearFrom(w, r, int(now.Month()), now.Year())
	if !ok {
		return
	}

	slots, err := h.scheduleService.FindSlotsInMonth(r.Context(), schedule.MonthFilter{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, slots)
}

// CreateSlot handles POST /admin/schedules
func (h *scheduleHandlerImpl) CreateSlot(w http.ResponseWriter, r *http.Request) {
	adminID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	var req schedule.CreateSlotRequest
	if !decodeJSON(w, r, &req, "CreateSlot") {
		return
	}
	req.CreatedBy = adminID

	slot, err := h.scheduleService.CreateSlot(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Schedule created successfully", slot)
}

// CreateRecurringSlots handles POST /admin/schedules/recurring
func (h *scheduleHandlerImpl) CreateRecurringSlots(w http.ResponseWriter, r *http.Request) {
	adminID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	var req schedule.CreateRecurringSlotsRequest
	if !decodeJSON(w, r, &req, "CreateRecurringSlots") {
		return
	}
	req.CreatedBy = adminID

	slots, err := h.scheduleService.CreateRecurringSlots(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Schedules created successfully", slots)
}

// GetSlot handles GET /admin/schedules/{id}
func (h *scheduleHandlerImpl) GetSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := idParam(w, r, "id", schedule.ErrSlotNotFound)
	if !ok {
		return
	}

	slot, err := h.scheduleService.GetSlot(r.Context(), slotID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, slot)
}

// DeleteSlot handles DELETE /admin/schedules/{id}
func (h *scheduleHandlerImpl) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := idParam(w, r, "id", schedule.ErrSlotNotFound)
	if !ok {
		return
	}

	if err := h.scheduleService.DeleteSlot(r.Context(), slotID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Schedule deleted successfully", nil)
}

// AssignSlot handles PUT /admin/schedules/{id}/assign
func (h *scheduleHandlerImpl) AssignSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := idParam(w, r, "id", schedule.ErrSlotNotFound)
	if !ok {
		return
	}

	var req schedule.AssignRequest
	if !decodeJSON(w, r, &req, "AssignSlot") {
		return
	}

	slot, err := h.scheduleService.Assign(r.Context(), slotID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Schedule assigned successfully", slot)
}

// ReassignSlot handles PUT /admin/schedules/{id}/reassign
func (h *scheduleHandlerImpl) ReassignSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := idParam(w, r, "id", schedule.ErrSlotNotFound)
	if !ok {
		return
	}

	var req schedule.AssignRequest
	if !decodeJSON(w, r, &req, "ReassignSlot") {
		return
	}

	slot, err := h.scheduleService.Reassign(r.Context(), slotID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Schedule reassigned successfully", slot)
}
