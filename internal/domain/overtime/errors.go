package overtime

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	ErrRecordNotFound     = apperror.NotFound("overtime record not found")
	ErrAlreadyReviewed    = apperror.BadRequest("overtime record already reviewed")
	ErrAlreadySubmitted   = apperror.Conflict("a reason has already been submitted for this day")
	ErrNoDeviation        = apperror.BadRequest("no overtime or undertime to explain for this day")
	ErrNotTimedOut        = apperror.BadRequest("you have not timed out yet")
	ErrNotificationFailed = apperror.New(apperror.KindInternal, "failed to notify administrators")
)
