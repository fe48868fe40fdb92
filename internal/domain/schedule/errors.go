package schedule

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	ErrSlotNotFound       = apperror.NotFound("schedule slot not found")
	ErrNoScheduleToday    = apperror.NotFound("no schedule found for today")
	ErrInvalidTimeRange   = apperror.BadRequest("slot start must be before end")
	ErrOverlappingSlot    = apperror.Conflict("employee already has an overlapping slot on this date")
	ErrAlreadyAssigned    = apperror.Conflict("employee is already assigned to this slot")
	ErrSlotTaken          = apperror.Conflict("slot is already assigned to another employee")
	ErrInvalidRecurrence  = apperror.BadRequest("invalid recurrence rule")
	ErrTooManyOccurrences = apperror.BadRequest("recurrence rule produces too many occurrences")
	ErrNoOccurrences      = apperror.BadRequest("recurrence rule produces no occurrences")
)
