package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	// ListActiveAdmins returns every active admin account, used as notification recipients.
	ListActiveAdmins(ctx context.Context) ([]User, error)
}

// AccountStore provisions accounts. Only the startup bootstrap writes through it.
type AccountStore interface {
	// EnsureAccount inserts u, plus an employee row when withEmployee is set,
	// unless an account with the same email already exists.
	EnsureAccount(ctx context.Context, u User, withEmployee bool) (created bool, err error)
}
