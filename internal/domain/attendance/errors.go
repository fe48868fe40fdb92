package attendance

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	// Transition errors
	ErrAlreadyTimedIn       = apperror.Conflict("you have already timed in today")
	ErrAlreadyRecorded      = apperror.Conflict("attendance for today is already recorded")
	ErrNotTimedIn           = apperror.BadRequest("you have not timed in today")
	ErrAlreadyTimedOut      = apperror.BadRequest("you have already timed out today")
	ErrOnBreak              = apperror.BadRequest("cannot time out while on break")
	ErrNotOnBreak           = apperror.BadRequest("you are not on break")
	ErrAlreadyOnBreak       = apperror.Conflict("you are already on break")
	ErrBreakAlreadyTaken    = apperror.Conflict("break already taken today")
	ErrBreakTakenUseTimeOut = apperror.BadRequest("break already taken today, use time out")

	// Location errors
	ErrLocationRequired     = apperror.BadRequest("latitude and longitude are required")
	ErrOutsideAllowedRadius = apperror.Forbidden("you are outside the allowed radius")

	// General errors
	ErrAttendanceNotFound = apperror.NotFound("attendance record not found")
	ErrSweepFutureDate    = apperror.BadRequest("cannot mark absences for a future date")
)

// ErrEntryExists is returned by the repository when the (employee, date) row already exists.
var ErrEntryExists = apperror.Conflict("attendance entry already exists for this date")
