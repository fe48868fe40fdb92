package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type accountStoreImpl struct {
	db         *database.DB
	transactor database.Transactor
}

func NewAccountStore(db *database.DB) user.AccountStore {
	return &accountStoreImpl{db: db, transactor: NewTransactor(db)}
}

// EnsureAccount implements user.AccountStore.
func (r *accountStoreImpl) EnsureAccount(ctx context.Context, u user.User, withEmployee bool) (bool, error) {
	created := false
	err := r.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		var userID string
		err := q.QueryRow(txCtx, `
			INSERT INTO users (id, name, email, password_hash, role, is_active)
			VALUES ($1, $2, LOWER($3), $4, $5, TRUE)
			ON CONFLICT (email) DO NOTHING
			RETURNING id
		`, newID(), u.Name, u.Email, u.PasswordHash, u.Role).Scan(&userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		if withEmployee {
			_, err = q.Exec(txCtx, `
				INSERT INTO employees (id, user_id, late_grace_period_count)
				VALUES ($1, $2, $3)
			`, newID(), userID, employee.DefaultLateGracePeriodCount)
			if err != nil {
				return fmt.Errorf("failed to insert employee: %w", err)
			}
		}

		created = true
		return nil
	})
	return created, err
}
