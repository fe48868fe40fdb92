package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	// LockByID loads the employee row for update; every per-employee mutation
	// sequence (attendance, leave balance, slot assignment) starts with it.
	LockByID(ctx context.Context, id string) (Employee, error)
	UpdateGracePeriodCount(ctx context.Context, id string, count int) error
}
