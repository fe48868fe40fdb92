package schedule

import (
	"context"
)

type ScheduleService interface {
	CreateSlot(ctx context.Context, req CreateSlotRequest) (SlotResponse, error)
	CreateRecurringSlots(ctx context.Context, req CreateRecurringSlotsRequest) ([]SlotResponse, error)
	GetSlot(ctx context.Context, id string) (SlotResponse, error)
	DeleteSlot(ctx context.Context, id string) error

	// Assign binds an unassigned slot to an employee.
	Assign(ctx context.Context, slotID string, req AssignRequest) (SlotResponse, error)
	// Reassign moves a slot to a different employee.
	Reassign(ctx context.Context, slotID string, req AssignRequest) (SlotResponse, error)

	FindSlotsInMonth(ctx context.Context, filter MonthFilter) ([]SlotResponse, error)
	// FindTodaySlotFor returns the employee's earliest slot dated today in the business timezone.
	FindTodaySlotFor(ctx context.Context, employeeID string) (Slot, error)
}
