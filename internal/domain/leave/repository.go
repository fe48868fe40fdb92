package leave

import (
	"context"
	"time"
)

type BalanceRepository interface {
	// Get returns a zero balance when the employee has no row for the category.
	Get(ctx context.Context, employeeID string, category Category) (Balance, error)
	// GetForUpdate locks the row (creating it at zero when missing).
	GetForUpdate(ctx context.Context, employeeID string, category Category) (Balance, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Balance, error)
	Save(ctx context.Context, balance Balance) error
}

type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// GetForUpdate locks the request row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (Request, error)
	Update(ctx context.Context, request Request) error
	List(ctx context.Context, filter ListFilter) ([]Request, int64, error)
	// FindApprovedCovering returns the employee's approved request covering date, or ErrLeaveRequestNotFound.
	FindApprovedCovering(ctx context.Context, employeeID string, date time.Time) (Request, error)
}
