package postgresqltest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
)

type fixture struct {
	*TestDatabaseSetup
	adminID    string
	userID     string
	employeeID string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	tdb, err := NewTestDatabase(ctx)
	require.NoError(t, err)
	if tdb == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	t.Cleanup(tdb.Close)
	require.NoError(t, tdb.TruncateAllTables(ctx))

	f := &fixture{
		TestDatabaseSetup: tdb,
		adminID:           uuid.NewString(),
		userID:            uuid.NewString(),
		employeeID:        uuid.NewString(),
	}

	_, err = tdb.DB.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role) VALUES
			($1, 'Ana Admin', 'ana@example.com', 'x', 'admin'),
			($2, 'Juan Dela Cruz', 'Juan@Example.com', 'x', 'employee')
	`, f.adminID, f.userID)
	require.NoError(t, err)

	_, err = tdb.DB.Exec(ctx, `INSERT INTO employees (id, user_id) VALUES ($1, $2)`, f.employeeID, f.userID)
	require.NoError(t, err)

	return f
}

func (f *fixture) at(day, hour, min int) time.Time {
	return time.Date(2025, 11, day, hour, min, 0, 0, f.Loc)
}

func (f *fixture) createSlot(t *testing.T, day int) schedule.Slot {
	t.Helper()
	repo := postgresql.NewSlotRepository(f.DB, f.Loc)
	slot, err := repo.Create(context.Background(), schedule.Slot{
		Date:               f.at(day, 0, 0),
		Start:              f.at(day, 8, 0),
		End:                f.at(day, 17, 0),
		AssignedEmployeeID: &f.employeeID,
		CreatedBy:          f.adminID,
	})
	require.NoError(t, err)
	return slot
}

func TestUserAndEmployeeRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(f.DB)
	employees := postgresql.NewEmployeeRepository(f.DB)

	u, err := users.GetByEmail(ctx, "juan@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.userID, u.ID)
	require.NotNil(t, u.EmployeeID)
	assert.Equal(t, f.employeeID, *u.EmployeeID)

	admins, err := users.ListActiveAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, user.RoleAdmin, admins[0].Role)
	assert.Nil(t, admins[0].EmployeeID)

	_, err = users.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	emp, err := employees.GetByUserID(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, employee.DefaultLateGracePeriodCount, emp.LateGracePeriodCount)
	assert.Equal(t, "Juan Dela Cruz", emp.Name)

	require.NoError(t, employees.UpdateGracePeriodCount(ctx, f.employeeID, 2))
	emp, err = employees.GetByID(ctx, f.employeeID)
	require.NoError(t, err)
	assert.Equal(t, 2, emp.LateGracePeriodCount)
}

func TestAccountStore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	store := postgresql.NewAccountStore(f.DB)
	users := postgresql.NewUserRepository(f.DB)

	created, err := store.EnsureAccount(ctx, user.User{
		Name: "Maria Santos", Email: "Maria@Example.com", PasswordHash: "hash", Role: user.RoleEmployee,
	}, true)
	require.NoError(t, err)
	assert.True(t, created)

	u, err := users.GetByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", u.Email)
	assert.True(t, u.IsActive)
	require.NotNil(t, u.EmployeeID)

	created, err = store.EnsureAccount(ctx, user.User{
		Name: "Someone Else", Email: "maria@example.com", PasswordHash: "other", Role: user.RoleAdmin,
	}, false)
	require.NoError(t, err)
	assert.False(t, created)

	u, err = users.GetByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", u.Name)
	assert.Equal(t, user.RoleEmployee, u.Role)
}

func TestSlotRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := postgresql.NewSlotRepository(f.DB, f.Loc)

	slot := f.createSlot(t, 10)
	_, err := repo.Create(ctx, schedule.Slot{
		Date: f.at(10, 0, 0), Start: f.at(10, 18, 0), End: f.at(10, 22, 0), CreatedBy: f.adminID,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(f.at(10, 0, 0)))
	assert.True(t, got.Start.Equal(f.at(10, 8, 0)))
	require.NotNil(t, got.AssignedEmployeeName)
	assert.Equal(t, "Juan Dela Cruz", *got.AssignedEmployeeName)

	mine, err := repo.ListByEmployeeAndDate(ctx, f.employeeID, f.at(10, 0, 0))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	assigned, err := repo.ListAssignedOnDate(ctx, f.at(10, 0, 0))
	require.NoError(t, err)
	assert.Len(t, assigned, 1)

	month, err := repo.ListByMonth(ctx, 2025, time.November)
	require.NoError(t, err)
	assert.Len(t, month, 2)

	require.NoError(t, repo.UpdateAssignment(ctx, slot.ID, nil))
	got, err = repo.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAssigned())

	require.NoError(t, repo.Delete(ctx, slot.ID))
	_, err = repo.GetByID(ctx, slot.ID)
	assert.ErrorIs(t, err, schedule.ErrSlotNotFound)
}

func TestAttendanceRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(f.DB, f.Loc)
	p := attendance.DefaultPolicy()

	slot := f.createSlot(t, 10)
	entry := attendance.StartDay(f.employeeID, slot, f.at(10, 8, 3), p.EvaluateLateness(f.at(10, 8, 3), slot.Start, 3))

	created, err := repo.Create(ctx, entry)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, entry)
	assert.ErrorIs(t, err, attendance.ErrEntryExists)

	inserted, err := repo.CreateIfAbsent(ctx, attendance.MarkAbsent(f.employeeID, slot))
	require.NoError(t, err)
	assert.False(t, inserted)

	onBreak, err := created.StartBreak(f.at(10, 12, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, onBreak))

	got, err := repo.GetByEmployeeAndDate(ctx, f.employeeID, f.at(10, 0, 0))
	require.NoError(t, err)
	require.True(t, got.OnBreak())
	assert.True(t, got.BreakStart().Equal(f.at(10, 12, 0)))
	assert.True(t, got.GracePeriodUsed)

	back, _, err := got.EndBreak(f.at(10, 13, 0))
	require.NoError(t, err)
	done, err := back.Complete(f.at(10, 17, 25), p)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, done))

	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, got.IsCompleted())
	assert.True(t, got.TimeOut().Equal(f.at(10, 17, 25)))
	assert.True(t, got.BreakUsed())
	assert.Equal(t, 25, got.OvertimeMinutes)
	assert.Equal(t, f.Loc, got.Date.Location())

	absentSlot := f.createSlot(t, 11)
	inserted, err = repo.CreateIfAbsent(ctx, attendance.MarkAbsent(f.employeeID, absentSlot))
	require.NoError(t, err)
	assert.True(t, inserted)

	month, err := repo.ListByEmployeeBetween(ctx, f.employeeID, f.at(1, 0, 0), f.at(1, 0, 0).AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, month, 2)
	assert.IsType(t, attendance.Absent{}, month[1].State)
}

func TestHistoryRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := postgresql.NewHistoryRepository(f.DB, f.Loc)
	attendanceID := uuid.NewString()

	for i, action := range []attendance.Action{attendance.ActionTimeIn, attendance.ActionGoOnBreak, attendance.ActionBackFromBreak} {
		err := repo.Append(ctx, attendance.HistoryEntry{
			EmployeeID:   f.employeeID,
			AttendanceID: attendanceID,
			Date:         f.at(10, 0, 0),
			Action:       action,
			OccurredAt:   f.at(10, 8+i, 0),
			Details:      attendance.HistoryDetails{State: attendance.StateWorking, TotalHours: float64(i)},
			Meta:         attendance.RequestMeta{IPAddress: "10.0.0.1", UserAgent: "kiosk"},
		})
		require.NoError(t, err)
	}

	entries, total, err := repo.ListByEmployee(ctx, f.employeeID, utils.Pagination{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	assert.Equal(t, attendance.ActionBackFromBreak, entries[0].Action)
	assert.Equal(t, 2.0, entries[0].Details.TotalHours)
	assert.Equal(t, "kiosk", entries[0].Meta.UserAgent)
}

func TestBalanceRepositoryAndTransactor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := postgresql.NewBalanceRepository(f.DB)
	tx := postgresql.NewTransactor(f.DB)

	zero, err := repo.Get(ctx, f.employeeID, leave.CategoryVacation)
	require.NoError(t, err)
	assert.True(t, zero.Remaining.IsZero())

	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := repo.GetForUpdate(ctx, f.employeeID, leave.CategoryVacation)
		if err != nil {
			return err
		}
		b, err = b.ResetBeginning(decimal.NewFromInt(5))
		if err != nil {
			return err
		}
		b, err = b.Avail(2)
		if err != nil {
			return err
		}
		b.UpdatedAt = time.Now()
		return repo.Save(ctx, b)
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, f.employeeID, leave.CategoryVacation)
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(decimal.NewFromInt(3)))
	assert.True(t, got.Consistent())

	boom := errors.New("boom")
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := repo.GetForUpdate(ctx, f.employeeID, leave.CategoryVacation)
		if err != nil {
			return err
		}
		b, _ = b.Avail(3)
		if err := repo.Save(ctx, b); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err = repo.Get(ctx, f.employeeID, leave.CategoryVacation)
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(decimal.NewFromInt(3)))

	all, err := repo.ListByEmployee(ctx, f.employeeID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLeaveRequestRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(f.DB, f.Loc)

	created, err := repo.Create(ctx, leave.Request{
		EmployeeID:   f.employeeID,
		Reason:       "Family trip",
		StartDate:    f.at(20, 0, 0),
		EndDate:      f.at(22, 0, 0),
		NumberOfDays: 3,
		Type:         leave.TypeMulti,
		Category:     leave.CategoryVacation,
		Status:       leave.StatusPending,
	})
	require.NoError(t, err)

	_, err = repo.FindApprovedCovering(ctx, f.employeeID, f.at(21, 0, 0))
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	approved, err := created.Approve(f.adminID, f.at(15, 9, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, approved))

	covering, err := repo.FindApprovedCovering(ctx, f.employeeID, f.at(22, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, created.ID, covering.ID)
	assert.Equal(t, 3, covering.DaysApproved)

	status := leave.StatusApproved
	list, total, err := repo.List(ctx, leave.ListFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Juan Dela Cruz", *list[0].EmployeeName)
	assert.True(t, list[0].StartDate.Equal(f.at(20, 0, 0)))
}

func TestOvertimeRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	entries := postgresql.NewAttendanceRepository(f.DB, f.Loc)
	repo := postgresql.NewOvertimeRepository(f.DB, f.Loc)

	slot := f.createSlot(t, 10)
	entry, err := entries.Create(ctx, attendance.StartDay(f.employeeID, slot, f.at(10, 8, 0), attendance.Lateness{}))
	require.NoError(t, err)

	record := overtime.Record{
		EmployeeID:    f.employeeID,
		AttendanceID:  entry.ID,
		Type:          overtime.TypeOvertime,
		Date:          f.at(10, 0, 0),
		ScheduledEnd:  f.at(10, 17, 0),
		ActualTimeOut: f.at(10, 17, 25),
		Minutes:       25,
		Reason:        "Release night",
		Status:        overtime.StatusPending,
		SubmittedAt:   f.at(10, 17, 30),
	}
	created, err := repo.Create(ctx, record)
	require.NoError(t, err)

	_, err = repo.Create(ctx, record)
	assert.ErrorIs(t, err, overtime.ErrAlreadySubmitted)

	reviewed, err := created.Review(true, f.adminID, nil, f.at(11, 9, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, reviewed))

	rows, err := repo.Statistics(ctx, nil, nil)
	require.NoError(t, err)
	stats := overtime.Summarize(rows)
	assert.Equal(t, int64(1), stats.Approved)
	assert.Equal(t, int64(25), stats.ApprovedOvertimeMinutes)

	from := f.at(11, 0, 0)
	rows, err = repo.Statistics(ctx, &from, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	list, total, err := repo.List(ctx, overtime.ListFilter{EmployeeID: &f.employeeID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, overtime.StatusApproved, list[0].Status)
}
