package user

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	ErrUserNotFound           = apperror.NotFound("user not found")
	ErrUserInactive           = apperror.Forbidden("account is deactivated")
	ErrAdminPrivilegeRequired = apperror.Forbidden("admin privilege required")
	ErrInsufficientPermission = apperror.Forbidden("insufficient permissions")
)
