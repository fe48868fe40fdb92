package postgresqltest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

// TestDatabaseSetup holds a migrated connection to the database named by TEST_DATABASE_URL.
type TestDatabaseSetup struct {
	DB  *database.DB
	Loc *time.Location
}

// NewTestDatabase returns nil, nil when TEST_DATABASE_URL is not set.
func NewTestDatabase(ctx context.Context) (*TestDatabaseSetup, error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	loc, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &TestDatabaseSetup{DB: db, Loc: loc}, nil
}

// TruncateAllTables empties every application table.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"overtime_records",
		"leave_requests",
		"leave_balances",
		"attendance_history",
		"attendance_entries",
		"schedule_slots",
		"employees",
		"users",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
