package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

type attendanceRepositoryImpl struct {
	db  *database.DB
	loc *time.Location
}

// NewAttendanceRepository returns an attendance.AttendanceRepository; dates and times are returned in loc.
func NewAttendanceRepository(db *database.DB, loc *time.Location) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db, loc: loc}
}

const entryColumns = `
	id, employee_id, work_date, schedule_id, scheduled_start, scheduled_end,
	state, time_in, time_out, break_start, break_used, break_time_hours, total_hours,
	is_late, late_minutes, grace_period_used,
	is_overtime, overtime_minutes, is_undertime, undertime_minutes,
	is_absent, status, leave_request_id, created_at, updated_at
`

// entryRow is the flat column layout of attendance_entries.
type entryRow struct {
	entry          attendance.Entry
	state          attendance.StateName
	timeOut        *time.Time
	breakStart     *time.Time
	breakUsed      bool
	leaveRequestID *string
}

func (r *attendanceRepositoryImpl) scan(row scanner) (attendance.Entry, error) {
	var er entryRow
	e := &er.entry
	err := row.Scan(
		&e.ID,
		&e.EmployeeID,
		&e.Date,
		&e.ScheduleID,
		&e.ScheduledStart,
		&e.ScheduledEnd,
		&er.state,
		&e.TimeIn,
		&er.timeOut,
		&er.breakStart,
		&er.breakUsed,
		&e.BreakTimeHours,
		&e.TotalHours,
		&e.IsLate,
		&e.LateMinutes,
		&e.GracePeriodUsed,
		&e.IsOvertime,
		&e.OvertimeMinutes,
		&e.IsUndertime,
		&e.UndertimeMinutes,
		&e.IsAbsent,
		&e.Status,
		&er.leaveRequestID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return attendance.Entry{}, err
	}

	state, err := stateFromRow(er)
	if err != nil {
		return attendance.Entry{}, err
	}
	e.State = state
	e.Date = dateIn(e.Date, r.loc)
	e.ScheduledStart = inLoc(e.ScheduledStart, r.loc)
	e.ScheduledEnd = inLoc(e.ScheduledEnd, r.loc)
	e.TimeIn = inLoc(e.TimeIn, r.loc)
	if s, ok := e.State.(attendance.OnBreak); ok {
		e.State = attendance.OnBreak{Since: s.Since.In(r.loc)}
	}
	if s, ok := e.State.(attendance.Completed); ok {
		e.State = attendance.Completed{TimeOut: s.TimeOut.In(r.loc)}
	}
	return *e, nil
}

func stateFromRow(er entryRow) (attendance.DayState, error) {
	switch er.state {
	case attendance.StateWorking:
		return attendance.Working{BreakUsed: er.breakUsed}, nil
	case attendance.StateOnBreak:
		if er.breakStart == nil {
			return nil, fmt.Errorf("attendance %s is on break without break_start", er.entry.ID)
		}
		return attendance.OnBreak{Since: *er.breakStart}, nil
	case attendance.StateCompleted:
		if er.timeOut == nil {
			return nil, fmt.Errorf("attendance %s is completed without time_out", er.entry.ID)
		}
		return attendance.Completed{TimeOut: *er.timeOut}, nil
	case attendance.StateAbsent:
		return attendance.Absent{}, nil
	case attendance.StateOnLeave:
		var id string
		if er.leaveRequestID != nil {
			id = *er.leaveRequestID
		}
		return attendance.OnLeave{LeaveRequestID: id}, nil
	default:
		return nil, fmt.Errorf("unknown attendance state %q", er.state)
	}
}

// stateColumns flattens the day state into its persisted columns.
func stateColumns(e attendance.Entry) (state attendance.StateName, timeOut, breakStart *time.Time, breakUsed bool, leaveRequestID *string) {
	return e.State.Name(), e.TimeOut(), e.BreakStart(), e.BreakUsed(), e.LeaveRequestID()
}

func (r *attendanceRepositoryImpl) insert(ctx context.Context, entry attendance.Entry, onConflict string) (attendance.Entry, bool, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = newID()
	}
	state, timeOut, breakStart, breakUsed, leaveRequestID := stateColumns(entry)

	query := `
		INSERT INTO attendance_entries (
			id, employee_id, work_date, schedule_id, scheduled_start, scheduled_end,
			state, time_in, time_out, break_start, break_used, break_time_hours, total_hours,
			is_late, late_minutes, grace_period_used,
			is_overtime, overtime_minutes, is_undertime, undertime_minutes,
			is_absent, status, leave_request_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		` + onConflict + `
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.ID,
		entry.EmployeeID,
		entry.Date,
		entry.ScheduleID,
		entry.ScheduledStart,
		entry.ScheduledEnd,
		state,
		entry.TimeIn,
		timeOut,
		breakStart,
		breakUsed,
		entry.BreakTimeHours,
		entry.TotalHours,
		entry.IsLate,
		entry.LateMinutes,
		entry.GracePeriodUsed,
		entry.IsOvertime,
		entry.OvertimeMinutes,
		entry.IsUndertime,
		entry.UndertimeMinutes,
		entry.IsAbsent,
		entry.Status,
		leaveRequestID,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Entry{}, false, nil
		}
		if isUniqueViolation(err) {
			return attendance.Entry{}, false, attendance.ErrEntryExists
		}
		return attendance.Entry{}, false, fmt.Errorf("failed to create attendance: %w", err)
	}
	return entry, true, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, entry attendance.Entry) (attendance.Entry, error) {
	created, _, err := r.insert(ctx, entry, "")
	return created, err
}

// CreateIfAbsent implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CreateIfAbsent(ctx context.Context, entry attendance.Entry) (bool, error) {
	_, inserted, err := r.insert(ctx, entry, "ON CONFLICT (employee_id, work_date) DO NOTHING")
	return inserted, err
}

func (r *attendanceRepositoryImpl) get(ctx context.Context, query string, args ...interface{}) (attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := r.scan(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Entry{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Entry{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return e, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Entry, error) {
	return r.get(ctx, `SELECT `+entryColumns+` FROM attendance_entries WHERE id = $1`, id)
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Entry, error) {
	return r.get(ctx,
		`SELECT `+entryColumns+` FROM attendance_entries WHERE employee_id = $1 AND work_date = $2`,
		employeeID, date,
	)
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, entry attendance.Entry) error {
	q := GetQuerier(ctx, r.db)

	state, timeOut, breakStart, breakUsed, leaveRequestID := stateColumns(entry)

	query := `
		UPDATE attendance_entries SET
			state = $2, time_in = $3, time_out = $4, break_start = $5, break_used = $6,
			break_time_hours = $7, total_hours = $8,
			is_late = $9, late_minutes = $10, grace_period_used = $11,
			is_overtime = $12, overtime_minutes = $13, is_undertime = $14, undertime_minutes = $15,
			is_absent = $16, status = $17, leave_request_id = $18,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		entry.ID,
		state,
		entry.TimeIn,
		timeOut,
		breakStart,
		breakUsed,
		entry.BreakTimeHours,
		entry.TotalHours,
		entry.IsLate,
		entry.LateMinutes,
		entry.GracePeriodUsed,
		entry.IsOvertime,
		entry.OvertimeMinutes,
		entry.IsUndertime,
		entry.UndertimeMinutes,
		entry.IsAbsent,
		entry.Status,
		leaveRequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByEmployeeBetween implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + entryColumns + `
		FROM attendance_entries
		WHERE employee_id = $1 AND work_date >= $2 AND work_date < $3
		ORDER BY work_date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var entries []attendance.Entry
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, nil
}

type historyRepositoryImpl struct {
	db  *database.DB
	loc *time.Location
}

func NewHistoryRepository(db *database.DB, loc *time.Location) attendance.HistoryRepository {
	return &historyRepositoryImpl{db: db, loc: loc}
}

// Append implements attendance.HistoryRepository.
func (r *historyRepositoryImpl) Append(ctx context.Context, entry attendance.HistoryEntry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = newID()
	}
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal history details: %w", err)
	}

	query := `
		INSERT INTO attendance_history (
			id, employee_id, attendance_id, work_date, action, occurred_at, details, ip_address, user_agent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = q.Exec(ctx, query,
		entry.ID,
		entry.EmployeeID,
		entry.AttendanceID,
		entry.Date,
		entry.Action,
		entry.OccurredAt,
		details,
		entry.Meta.IPAddress,
		entry.Meta.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to append attendance history: %w", err)
	}
	return nil
}

// ListByEmployee implements attendance.HistoryRepository.
func (r *historyRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, page utils.Pagination) ([]attendance.HistoryEntry, int64, error) {
	q := GetQuerier(ctx, r.db)
	page = page.Normalize()

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_history WHERE employee_id = $1`, employeeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance history: %w", err)
	}

	query := `
		SELECT id, employee_id, attendance_id, work_date, action, occurred_at, details,
		       ip_address, user_agent, created_at
		FROM attendance_history
		WHERE employee_id = $1
		ORDER BY occurred_at DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, employeeID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance history: %w", err)
	}
	defer rows.Close()

	var entries []attendance.HistoryEntry
	for rows.Next() {
		var h attendance.HistoryEntry
		var details []byte
		if err := rows.Scan(
			&h.ID,
			&h.EmployeeID,
			&h.AttendanceID,
			&h.Date,
			&h.Action,
			&h.OccurredAt,
			&details,
			&h.Meta.IPAddress,
			&h.Meta.UserAgent,
			&h.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance history row: %w", err)
		}
		if err := json.Unmarshal(details, &h.Details); err != nil {
			return nil, 0, fmt.Errorf("failed to decode history details: %w", err)
		}
		h.Date = dateIn(h.Date, r.loc)
		h.OccurredAt = h.OccurredAt.In(r.loc)
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, total, nil
}
