package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

// BalanceService owns every mutation of leave.Balance. Callers run it inside a
// transaction that has already locked the employee row.
type BalanceService struct {
	leave.BalanceRepository
	clock clock.Clock
}

func NewBalanceService(balanceRepository leave.BalanceRepository, clk clock.Clock) *BalanceService {
	return &BalanceService{
		BalanceRepository: balanceRepository,
		clock:             clk,
	}
}

// Avail charges days against the employee's category balance.
func (b *BalanceService) Avail(ctx context.Context, employeeID string, category leave.Category, days int, approverID string) (leave.Balance, error) {
	balance, err := b.BalanceRepository.GetForUpdate(ctx, employeeID, category)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}

	updated, err := balance.Avail(days)
	if err != nil {
		slog.Debug("leave approval rejected",
			"employee_id", employeeID,
			"category", category,
			"requested_days", days,
			"remaining", balance.Remaining.String(),
		)
		return leave.Balance{}, err
	}
	updated.UpdatedBy = &approverID
	updated.UpdatedAt = b.clock.Now()

	if err := b.BalanceRepository.Save(ctx, updated); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to save leave balance: %w", err)
	}
	return updated, nil
}

// Reset sets a new beginning balance. It never touches availments.
func (b *BalanceService) Reset(ctx context.Context, req leave.EditBalanceRequest) (leave.Balance, error) {
	balance, err := b.BalanceRepository.GetForUpdate(ctx, req.EmployeeID, req.Category)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}

	updated, err := balance.ResetBeginning(*req.Beginning)
	if err != nil {
		return leave.Balance{}, err
	}
	adminID := req.AdminID
	updated.UpdatedBy = &adminID
	updated.UpdatedAt = b.clock.Now()

	if err := b.BalanceRepository.Save(ctx, updated); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to save leave balance: %w", err)
	}

	slog.Info("leave balance edited",
		"employee_id", req.EmployeeID,
		"category", req.Category,
		"beginning", updated.Beginning.String(),
		"remaining", updated.Remaining.String(),
		"admin_id", req.AdminID,
	)
	return updated, nil
}

// List returns one balance per category, zero-filled for categories without a row.
func (b *BalanceService) List(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	rows, err := b.BalanceRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	byCategory := make(map[leave.Category]leave.Balance, len(rows))
	for _, row := range rows {
		byCategory[row.Category] = row
	}

	balances := make([]leave.Balance, 0, len(leave.Categories()))
	for _, category := range leave.Categories() {
		balance, ok := byCategory[category]
		if !ok {
			balance = leave.NewBalance(employeeID, category)
		}
		balances = append(balances, balance)
	}
	return balances, nil
}
