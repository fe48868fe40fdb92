package overtime

import (
	"context"
	"time"
)

type OvertimeRepository interface {
	// Create returns ErrAlreadySubmitted when a record for (attendance, type) exists.
	Create(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	GetForUpdate(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, record Record) error
	List(ctx context.Context, filter ListFilter) ([]Record, int64, error)
	// Statistics groups records by (type, status), optionally bounded by work date.
	Statistics(ctx context.Context, from, to *time.Time) ([]StatisticsRow, error)
}
