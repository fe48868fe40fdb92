package auth

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrAccountInactive    = apperror.Forbidden("account is inactive")
	ErrInvalidToken       = apperror.Unauthorized("invalid or expired token")
)
