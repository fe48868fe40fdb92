package leave

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	ErrLeaveRequestNotFound         = apperror.NotFound("leave request not found")
	ErrLeaveRequestAlreadyProcessed = apperror.BadRequest("leave request already processed")
	ErrInsufficientBalance          = apperror.BadRequest("insufficient balance")
	ErrBeginningBelowAvailments     = apperror.BadRequest("beginning balance cannot be lower than availments")
	ErrNegativeBeginning            = apperror.BadRequest("beginning balance cannot be negative")
	ErrInvalidCategory              = apperror.BadRequest("invalid leave category")
	ErrStartDateNotFuture           = apperror.BadRequest("start date must be after today")
	ErrEndBeforeStart               = apperror.BadRequest("end date must not be before start date")
)
