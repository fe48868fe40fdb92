package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeSelect = `
	SELECT e.id, e.user_id, e.late_grace_period_count, e.created_at, e.updated_at,
	       u.name, u.email, u.is_active
	FROM employees e
	INNER JOIN users u ON u.id = e.user_id
`

func (r *employeeRepositoryImpl) getOne(ctx context.Context, query string, arg string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	var e employee.Employee
	err := q.QueryRow(ctx, query, arg).Scan(
		&e.ID,
		&e.UserID,
		&e.LateGracePeriodCount,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.Name,
		&e.Email,
		&e.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.getOne(ctx, employeeSelect+" WHERE e.id = $1", id)
}

// GetByUserID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return r.getOne(ctx, employeeSelect+" WHERE e.user_id = $1", userID)
}

// LockByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) LockByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.getOne(ctx, employeeSelect+" WHERE e.id = $1 FOR UPDATE OF e", id)
}

// UpdateGracePeriodCount implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateGracePeriodCount(ctx context.Context, id string, count int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET late_grace_period_count = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, count)
	if err != nil {
		return fmt.Errorf("failed to update grace period count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
