package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

type AttendanceRepository interface {
	// Create inserts the entry and returns ErrEntryExists if the employee already has one for that date.
	Create(ctx context.Context, entry Entry) (Entry, error)
	// CreateIfAbsent inserts the entry unless one exists for (employee, date); it reports whether a row was written.
	CreateIfAbsent(ctx context.Context, entry Entry) (bool, error)
	GetByID(ctx context.Context, id string) (Entry, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Entry, error)
	Update(ctx context.Context, entry Entry) error
	// ListByEmployeeBetween returns entries with from <= date < to, oldest first.
	ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Entry, error)
}

// HistoryRepository is append-only.
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	// ListByEmployee returns the newest entries first along with the total count.
	ListByEmployee(ctx context.Context, employeeID string, page utils.Pagination) ([]HistoryEntry, int64, error)
}
