package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type overtimeRepositoryImpl struct {
	db  *database.DB
	loc *time.Location
}

func NewOvertimeRepository(db *database.DB, loc *time.Location) overtime.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db, loc: loc}
}

const overtimeSelect = `
	SELECT o.id, o.employee_id, o.attendance_id, o.type, o.work_date, o.scheduled_end,
	       o.actual_time_out, o.minutes, o.reason, o.status, o.submitted_at,
	       o.reviewed_by, o.reviewed_at, o.review_notes, o.created_at, o.updated_at,
	       u.name AS employee_name
	FROM overtime_records o
	INNER JOIN employees e ON e.id = o.employee_id
	INNER JOIN users u ON u.id = e.user_id
`

func (r *overtimeRepositoryImpl) scan(row scanner) (overtime.Record, error) {
	var rec overtime.Record
	var employeeName string
	err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.AttendanceID,
		&rec.Type,
		&rec.Date,
		&rec.ScheduledEnd,
		&rec.ActualTimeOut,
		&rec.Minutes,
		&rec.Reason,
		&rec.Status,
		&rec.SubmittedAt,
		&rec.ReviewedBy,
		&rec.ReviewedAt,
		&rec.ReviewNotes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		return overtime.Record{}, err
	}
	rec.Date = dateIn(rec.Date, r.loc)
	rec.ScheduledEnd = rec.ScheduledEnd.In(r.loc)
	rec.ActualTimeOut = rec.ActualTimeOut.In(r.loc)
	rec.ReviewedAt = inLoc(rec.ReviewedAt, r.loc)
	rec.EmployeeName = &employeeName
	return rec, nil
}

func (r *overtimeRepositoryImpl) get(ctx context.Context, query, id string) (overtime.Record, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := r.scan(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Record{}, overtime.ErrRecordNotFound
		}
		return overtime.Record{}, fmt.Errorf("failed to get overtime record: %w", err)
	}
	return rec, nil
}

// Create implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) Create(ctx context.Context, record overtime.Record) (overtime.Record, error) {
	q := GetQuerier(ctx, r.db)

	if record.ID == "" {
		record.ID = newID()
	}

	query := `
		INSERT INTO overtime_records (
			id, employee_id, attendance_id, type, work_date, scheduled_end, actual_time_out,
			minutes, reason, status, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID,
		record.EmployeeID,
		record.AttendanceID,
		record.Type,
		record.Date,
		record.ScheduledEnd,
		record.ActualTimeOut,
		record.Minutes,
		record.Reason,
		record.Status,
		record.SubmittedAt,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return overtime.Record{}, overtime.ErrAlreadySubmitted
		}
		return overtime.Record{}, fmt.Errorf("failed to create overtime record: %w", err)
	}
	return record, nil
}

// GetByID implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, id string) (overtime.Record, error) {
	return r.get(ctx, overtimeSelect+" WHERE o.id = $1", id)
}

// GetForUpdate implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) GetForUpdate(ctx context.Context, id string) (overtime.Record, error) {
	return r.get(ctx, overtimeSelect+" WHERE o.id = $1 FOR UPDATE OF o", id)
}

// Update implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) Update(ctx context.Context, record overtime.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_records SET
			status = $2, reviewed_by = $3, reviewed_at = $4, review_notes = $5, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		record.ID,
		record.Status,
		record.ReviewedBy,
		record.ReviewedAt,
		record.ReviewNotes,
	)
	if err != nil {
		return fmt.Errorf("failed to update overtime record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrRecordNotFound
	}
	return nil
}

// List implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) List(ctx context.Context, filter overtime.ListFilter) ([]overtime.Record, int64, error) {
	q := GetQuerier(ctx, r.db)
	page := filter.Pagination.Normalize()

	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	paramCount := 0

	if filter.Status != nil && *filter.Status != "" {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("o.status = $%d", paramCount))
		args = append(args, *filter.Status)
	}

	if filter.Type != nil && *filter.Type != "" {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("o.type = $%d", paramCount))
		args = append(args, *filter.Type)
	}

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("o.employee_id = $%d", paramCount))
		args = append(args, *filter.EmployeeID)
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM overtime_records o WHERE %s`, whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime records: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY o.work_date DESC, o.submitted_at DESC
		LIMIT $%d OFFSET $%d
	`, overtimeSelect, whereClause, paramCount+1, paramCount+2)
	args = append(args, page.PageSize, page.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query overtime records: %w", err)
	}
	defer rows.Close()

	var records []overtime.Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan overtime record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}
	return records, total, nil
}

// Statistics implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) Statistics(ctx context.Context, from, to *time.Time) ([]overtime.StatisticsRow, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"TRUE"}
	args := []interface{}{}

	if from != nil {
		args = append(args, *from)
		whereClauses = append(whereClauses, fmt.Sprintf("work_date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		whereClauses = append(whereClauses, fmt.Sprintf("work_date <= $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT type, status, COUNT(*), COALESCE(SUM(minutes), 0)
		FROM overtime_records
		WHERE %s
		GROUP BY type, status
		ORDER BY type, status
	`, strings.Join(whereClauses, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate overtime records: %w", err)
	}
	defer rows.Close()

	var out []overtime.StatisticsRow
	for rows.Next() {
		var row overtime.StatisticsRow
		if err := rows.Scan(&row.Type, &row.Status, &row.Count, &row.Minutes); err != nil {
			return nil, fmt.Errorf("failed to scan statistics row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}
