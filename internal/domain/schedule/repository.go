package schedule

import (
	"context"
	"time"
)

type SlotRepository interface {
	Create(ctx context.Context, slot Slot) (Slot, error)
	GetByID(ctx context.Context, id string) (Slot, error)
	LockByID(ctx context.Context, id string) (Slot, error)
	Delete(ctx context.Context, id string) error
	UpdateAssignment(ctx context.Context, id string, employeeID *string) error

	// ListByEmployeeAndDate returns the employee's slots on the given calendar day.
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]Slot, error)
	ListByMonth(ctx context.Context, year int, month time.Month) ([]Slot, error)
	// ListAssignedOnDate returns every slot on the given day that has an assigned employee.
	ListAssignedOnDate(ctx context.Context, date time.Time) ([]Slot, error)
}
