package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db  *database.DB
	loc *time.Location
}

func NewLeaveRequestRepository(db *database.DB, loc *time.Location) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db, loc: loc}
}

const leaveRequestSelect = `
	SELECT lr.id, lr.employee_id, lr.reason, lr.start_date, lr.end_date, lr.number_of_days,
	       lr.leave_type, lr.leave_category, lr.status, lr.approved_by, lr.declined_by,
	       lr.decline_reason, lr.days_approved, lr.reviewed_at, lr.created_at, lr.updated_at,
	       u.name AS employee_name
	FROM leave_requests lr
	INNER JOIN employees e ON e.id = lr.employee_id
	INNER JOIN users u ON u.id = e.user_id
`

func (r *leaveRequestRepositoryImpl) scan(row scanner) (leave.Request, error) {
	var req leave.Request
	var employeeName string
	err := row.Scan(
		&req.ID,
		&req.EmployeeID,
		&req.Reason,
		&req.StartDate,
		&req.EndDate,
		&req.NumberOfDays,
		&req.Type,
		&req.Category,
		&req.Status,
		&req.ApprovedBy,
		&req.DeclinedBy,
		&req.DeclineReason,
		&req.DaysApproved,
		&req.ReviewedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		return leave.Request{}, err
	}
	req.StartDate = dateIn(req.StartDate, r.loc)
	req.EndDate = dateIn(req.EndDate, r.loc)
	req.ReviewedAt = inLoc(req.ReviewedAt, r.loc)
	req.EmployeeName = &employeeName
	return req, nil
}

func (r *leaveRequestRepositoryImpl) get(ctx context.Context, query string, args ...interface{}) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := r.scan(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

// Create implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = newID()
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, reason, start_date, end_date, number_of_days, leave_type, leave_category, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID,
		request.EmployeeID,
		request.Reason,
		request.StartDate,
		request.EndDate,
		request.NumberOfDays,
		request.Type,
		request.Category,
		request.Status,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return request, nil
}

// GetByID implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	return r.get(ctx, leaveRequestSelect+" WHERE lr.id = $1", id)
}

// GetForUpdate implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) GetForUpdate(ctx context.Context, id string) (leave.Request, error) {
	return r.get(ctx, leaveRequestSelect+" WHERE lr.id = $1 FOR UPDATE OF lr", id)
}

// Update implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			number_of_days = $2, status = $3, approved_by = $4, declined_by = $5,
			decline_reason = $6, days_approved = $7, reviewed_at = $8, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		request.ID,
		request.NumberOfDays,
		request.Status,
		request.ApprovedBy,
		request.DeclinedBy,
		request.DeclineReason,
		request.DaysApproved,
		request.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// List implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.ListFilter) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)
	page := filter.Pagination.Normalize()

	// Build WHERE clause dynamically
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	paramCount := 0

	if filter.Status != nil && *filter.Status != "" {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("lr.status = $%d", paramCount))
		args = append(args, *filter.Status)
	}

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("lr.employee_id = $%d", paramCount))
		args = append(args, *filter.EmployeeID)
	}

	if filter.Category != nil && *filter.Category != "" {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("lr.leave_category = $%d", paramCount))
		args = append(args, *filter.Category)
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM leave_requests lr WHERE %s`, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY lr.created_at DESC, lr.id
		LIMIT $%d OFFSET $%d
	`, leaveRequestSelect, whereClause, paramCount+1, paramCount+2)
	args = append(args, page.PageSize, page.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		req, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}
	return requests, total, nil
}

// FindApprovedCovering implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) FindApprovedCovering(ctx context.Context, employeeID string, date time.Time) (leave.Request, error) {
	return r.get(ctx, leaveRequestSelect+`
		WHERE lr.employee_id = $1 AND lr.status = $2 AND lr.start_date <= $3 AND lr.end_date >= $3
		ORDER BY lr.reviewed_at
		LIMIT 1
	`, employeeID, leave.StatusApproved, date)
}
