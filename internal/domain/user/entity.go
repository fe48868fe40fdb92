package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee" // Clocks in, files leave and overtime reasons
	RoleAdmin    Role = "admin"    // Manages schedules, reviews requests
)

func (r Role) IsValid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	EmployeeID *string
}

// IsAdmin checks if user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanReview checks if user may review leave and overtime requests
func (u *User) CanReview() bool {
	return u.IsActive && HasPermission(u.Role, PermissionLeaveApprove)
}

// Can checks if an active user holds the permission
func (u *User) Can(p Permission) bool {
	return u.IsActive && HasPermission(u.Role, p)
}
