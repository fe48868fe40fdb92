// Package fixtures provisions the accounts a fresh deployment needs before anyone can log in.
package fixtures

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const minPasswordLength = 8

// Account is one account to provision.
type Account struct {
	Name     string
	Email    string
	Password string
	Role     user.Role
	// Employee also creates the employee record, so the account can clock in.
	Employee bool
}

func (a Account) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidEmail(a.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if len(a.Password) < minPasswordLength {
		errs.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !a.Role.IsValid() {
		errs.Add("role", "role must be employee or admin")
	}
	return errs.OrNil()
}

// AccountsFromConfig returns the bootstrap admin, if one is configured.
func AccountsFromConfig(cfg config.BootstrapConfig) []Account {
	if cfg.AdminEmail == "" {
		return nil
	}
	name := cfg.AdminName
	if name == "" {
		name = "Administrator"
	}
	return []Account{{
		Name:     name,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     user.RoleAdmin,
	}}
}

// SeedAccounts creates the accounts that do not exist yet. Existing accounts are never modified.
func SeedAccounts(ctx context.Context, store user.AccountStore, accounts []Account) (int, error) {
	created := 0
	for _, a := range accounts {
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		if err := a.Validate(); err != nil {
			return created, fmt.Errorf("invalid bootstrap account %q: %w", a.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, fmt.Errorf("failed to hash password: %w", err)
		}

		ok, err := store.EnsureAccount(ctx, user.User{
			Name:         a.Name,
			Email:        a.Email,
			PasswordHash: string(hash),
			Role:         a.Role,
			IsActive:     true,
		}, a.Employee)
		if err != nil {
			return created, fmt.Errorf("failed to seed account %q: %w", a.Email, err)
		}
		if ok {
			created++
			slog.Info("Bootstrap account created", "email", a.Email, "role", a.Role)
		}
	}
	return created, nil
}
