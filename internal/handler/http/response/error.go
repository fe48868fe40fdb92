package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		slog.Debug("request rejected", "error", err)
		ValidationError(w, validationErrs.ToMap())
		return
	}

	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		slog.Error("request failed", "error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	message, _ := apperror.MessageOf(err)
	slog.Debug("request rejected", "kind", kind, "error", err)

	switch kind {
	case apperror.KindBadRequest:
		BadRequest(w, message, nil)
	case apperror.KindUnauthorized:
		Unauthorized(w, message)
	case apperror.KindForbidden:
		Forbidden(w, message)
	case apperror.KindNotFound:
		NotFound(w, message)
	case apperror.KindConflict:
		Conflict(w, message)
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
