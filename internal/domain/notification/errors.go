package notification

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	ErrNoRecipients        = apperror.NotFound("no notification recipients")
	ErrUnknownKind         = apperror.BadRequest("unknown notification kind")
	ErrNotifierUnavailable = apperror.New(apperror.KindInternal, "notification backend unavailable")
)
