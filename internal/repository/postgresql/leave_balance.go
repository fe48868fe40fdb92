package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type balanceRepositoryImpl struct {
	db *database.DB
}

func NewBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &balanceRepositoryImpl{db: db}
}

const balanceColumns = `
	employee_id, category, beginning, availments, remaining, active, reserved, updated_by, updated_at
`

func scanBalance(row scanner) (leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(
		&b.EmployeeID,
		&b.Category,
		&b.Beginning,
		&b.Availments,
		&b.Remaining,
		&b.Active,
		&b.Reserved,
		&b.UpdatedBy,
		&b.UpdatedAt,
	)
	return b, err
}

// Get implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) Get(ctx context.Context, employeeID string, category leave.Category) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + ` FROM leave_balances WHERE employee_id = $1 AND category = $2`

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.NewBalance(employeeID, category), nil
		}
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return b, nil
}

// GetForUpdate implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) GetForUpdate(ctx context.Context, employeeID string, category leave.Category) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO leave_balances (employee_id, category)
		VALUES ($1, $2)
		ON CONFLICT (employee_id, category) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, employeeID, category); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to ensure leave balance: %w", err)
	}

	query := `SELECT ` + balanceColumns + ` FROM leave_balances WHERE employee_id = $1 AND category = $2 FOR UPDATE`

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, category))
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return b, nil
}

// ListByEmployee implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + ` FROM leave_balances WHERE employee_id = $1 ORDER BY category`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return balances, nil
}

// Save implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) Save(ctx context.Context, b leave.Balance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (
			employee_id, category, beginning, availments, remaining, active, reserved, updated_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (employee_id, category) DO UPDATE SET
			beginning = EXCLUDED.beginning,
			availments = EXCLUDED.availments,
			remaining = EXCLUDED.remaining,
			active = EXCLUDED.active,
			reserved = EXCLUDED.reserved,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		b.EmployeeID,
		b.Category,
		b.Beginning,
		b.Availments,
		b.Remaining,
		b.Active,
		b.Reserved,
		b.UpdatedBy,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save leave balance: %w", err)
	}
	return nil
}
