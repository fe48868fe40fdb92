package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type slotRepositoryImpl struct {
	db  *database.DB
	loc *time.Location
}

// NewSlotRepository returns a schedule.SlotRepository; dates and times are returned in loc.
func NewSlotRepository(db *database.DB, loc *time.Location) schedule.SlotRepository {
	return &slotRepositoryImpl{db: db, loc: loc}
}

const slotSelect = `
	SELECT s.id, s.slot_date, s.start_at, s.end_at, s.assigned_employee_id, s.created_by,
	       s.created_at, s.updated_at, u.name
	FROM schedule_slots s
	LEFT JOIN employees e ON e.id = s.assigned_employee_id
	LEFT JOIN users u ON u.id = e.user_id
`

func (r *slotRepositoryImpl) scan(row scanner) (schedule.Slot, error) {
	var s schedule.Slot
	err := row.Scan(
		&s.ID,
		&s.Date,
		&s.Start,
		&s.End,
		&s.AssignedEmployeeID,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.AssignedEmployeeName,
	)
	if err != nil {
		return schedule.Slot{}, err
	}
	s.Date = dateIn(s.Date, r.loc)
	s.Start = s.Start.In(r.loc)
	s.End = s.End.In(r.loc)
	return s, nil
}

func (r *slotRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]schedule.Slot, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule slots: %w", err)
	}
	defer rows.Close()

	var slots []schedule.Slot
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule slot row: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return slots, nil
}

func (r *slotRepositoryImpl) get(ctx context.Context, query, id string) (schedule.Slot, error) {
	q := GetQuerier(ctx, r.db)

	s, err := r.scan(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Slot{}, schedule.ErrSlotNotFound
		}
		return schedule.Slot{}, fmt.Errorf("failed to get schedule slot: %w", err)
	}
	return s, nil
}

// Create implements schedule.SlotRepository.
func (r *slotRepositoryImpl) Create(ctx context.Context, slot schedule.Slot) (schedule.Slot, error) {
	q := GetQuerier(ctx, r.db)

	if slot.ID == "" {
		slot.ID = newID()
	}

	query := `
		INSERT INTO schedule_slots (id, slot_date, start_at, end_at, assigned_employee_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		slot.ID,
		slot.Date,
		slot.Start,
		slot.End,
		slot.AssignedEmployeeID,
		slot.CreatedBy,
	).Scan(&slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return schedule.Slot{}, fmt.Errorf("failed to create schedule slot: %w", err)
	}
	return slot, nil
}

// GetByID implements schedule.SlotRepository.
func (r *slotRepositoryImpl) GetByID(ctx context.Context, id string) (schedule.Slot, error) {
	return r.get(ctx, slotSelect+" WHERE s.id = $1", id)
}

// LockByID implements schedule.SlotRepository.
func (r *slotRepositoryImpl) LockByID(ctx context.Context, id string) (schedule.Slot, error) {
	return r.get(ctx, slotSelect+" WHERE s.id = $1 FOR UPDATE OF s", id)
}

// Delete implements schedule.SlotRepository.
func (r *slotRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM schedule_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrSlotNotFound
	}
	return nil
}

// UpdateAssignment implements schedule.SlotRepository.
func (r *slotRepositoryImpl) UpdateAssignment(ctx context.Context, id string, employeeID *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE schedule_slots
		SET assigned_employee_id = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, employeeID)
	if err != nil {
		return fmt.Errorf("failed to update slot assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrSlotNotFound
	}
	return nil
}

// ListByEmployeeAndDate implements schedule.SlotRepository.
func (r *slotRepositoryImpl) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]schedule.Slot, error) {
	return r.list(ctx,
		slotSelect+" WHERE s.assigned_employee_id = $1 AND s.slot_date = $2 ORDER BY s.start_at",
		employeeID, date,
	)
}

// ListByMonth implements schedule.SlotRepository.
func (r *slotRepositoryImpl) ListByMonth(ctx context.Context, year int, month time.Month) ([]schedule.Slot, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, r.loc)
	return r.list(ctx,
		slotSelect+" WHERE s.slot_date >= $1 AND s.slot_date < $2 ORDER BY s.start_at, s.id",
		from, from.AddDate(0, 1, 0),
	)
}

// ListAssignedOnDate implements schedule.SlotRepository.
func (r *slotRepositoryImpl) ListAssignedOnDate(ctx context.Context, date time.Time) ([]schedule.Slot, error) {
	return r.list(ctx,
		slotSelect+" WHERE s.slot_date = $1 AND s.assigned_employee_id IS NOT NULL ORDER BY s.start_at",
		date,
	)
}
