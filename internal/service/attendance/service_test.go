package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "juan@example.com"
	testPassword = "password123"
	employeeID   = "emp-1"
)

type harness struct {
	svc       attendance.AttendanceService
	clock     *clock.Fixed
	employees *fakeEmployeeRepo
	slots     *fakeSlotRepo
	entries   *fakeAttendanceRepo
	history   *fakeHistoryRepo
	loc       *time.Location
	creds     attendance.CredentialsRequest
}

func newHarness(t *testing.T, fence utils.Geofence) *harness {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	h := &harness{
		clock: clock.NewFixed(time.Date(2025, 11, 10, 7, 55, 0, 0, loc)),
		employees: &fakeEmployeeRepo{byID: map[string]employee.Employee{
			employeeID: {ID: employeeID, UserID: "user-1", LateGracePeriodCount: employee.DefaultLateGracePeriodCount},
		}},
		slots:   &fakeSlotRepo{},
		entries: newFakeAttendanceRepo(),
		history: &fakeHistoryRepo{},
		loc:     loc,
		creds:   attendance.CredentialsRequest{Email: testEmail, Password: testPassword},
	}

	authService := &fakeAuthService{byEmail: map[string]credential{
		testEmail:           {password: testPassword, identity: auth.Identity{UserID: "user-1", EmployeeID: employeeID, Email: testEmail, Role: user.RoleEmployee}},
		"admin@example.com": {password: testPassword, identity: auth.Identity{UserID: "user-2", Email: "admin@example.com", Role: user.RoleAdmin}},
	}}
	scheduleService := &fakeScheduleService{slots: h.slots, today: func() time.Time { return clock.Today(h.clock) }}

	h.svc = NewAttendanceService(
		noopTransactor{}, authService, h.employees, scheduleService,
		h.entries, h.history, h.clock, attendance.DefaultPolicy(), fence,
	)
	return h
}

func (h *harness) addSlot(t *testing.T, day time.Time, startHour, endHour int) schedule.Slot {
	t.Helper()
	id := employeeID
	slot, err := h.slots.Create(context.Background(), schedule.Slot{
		Date:               day,
		Start:              time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, h.loc),
		End:                time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, h.loc),
		AssignedEmployeeID: &id,
	})
	require.NoError(t, err)
	return slot
}

func (h *harness) at(hour, minute int) {
	now := h.clock.Now()
	h.clock.Set(time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, h.loc))
}

func (h *harness) timeIn() attendance.TimeInRequest {
	return attendance.TimeInRequest{CredentialsRequest: h.creds}
}

func TestTimeIn(t *testing.T) {
	ctx := context.Background()

	t.Run("on time", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		h.addSlot(t, clock.Today(h.clock), 8, 17)

		resp, err := h.svc.TimeIn(ctx, h.timeIn())
		require.NoError(t, err)
		assert.Equal(t, attendance.ActionTimeIn, resp.Action)
		assert.Equal(t, attendance.StatusPresent, resp.Attendance.Status)
		assert.Equal(t, attendance.StateWorking, resp.Attendance.State)
		require.NotNil(t, resp.GracePeriodsLeft)
		assert.Equal(t, 3, *resp.GracePeriodsLeft)
		assert.Len(t, h.history.entries, 1)
	})

	t.Run("late within grace consumes one grace period", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		h.addSlot(t, clock.Today(h.clock), 8, 17)
		h.at(8, 3)

		resp, err := h.svc.TimeIn(ctx, h.timeIn())
		require.NoError(t, err)
		assert.False(t, resp.Attendance.IsLate)
		assert.True(t, resp.Attendance.GracePeriodUsed)
		assert.Equal(t, 3, resp.Attendance.LateMinutes)
		assert.Equal(t, attendance.StatusPresent, resp.Attendance.Status)
		assert.Equal(t, 2, *resp.GracePeriodsLeft)
		assert.Equal(t, 2, h.employees.byID[employeeID].LateGracePeriodCount)

		recorded := h.history.entries[0].Details
		require.NotNil(t, recorded.GracePeriodsLeft)
		assert.Equal(t, 2, *recorded.GracePeriodsLeft)
	})

	t.Run("late beyond grace", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		h.addSlot(t, clock.Today(h.clock), 8, 17)
		h.at(8, 10)

		resp, err := h.svc.TimeIn(ctx, h.timeIn())
		require.NoError(t, err)
		assert.True(t, resp.Attendance.IsLate)
		assert.Equal(t, 10, resp.Attendance.LateMinutes)
		assert.Equal(t, attendance.StatusLate, resp.Attendance.Status)
		assert.Equal(t, 3, h.employees.byID[employeeID].LateGracePeriodCount)
	})

	t.Run("within grace window but no grace left", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		h.employees.byID[employeeID] = employee.Employee{ID: employeeID, LateGracePeriodCount: 0}
		h.addSlot(t, clock.Today(h.clock), 8, 17)
		h.at(8, 3)

		resp, err := h.svc.TimeIn(ctx, h.timeIn())
		require.NoError(t, err)
		assert.True(t, resp.Attendance.IsLate)
		assert.Equal(t, attendance.StatusLate, resp.Attendance.Status)
	})

	t.Run("double submit is a conflict", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		h.addSlot(t, clock.Today(h.clock), 8, 17)

		_, err := h.svc.TimeIn(ctx, h.timeIn())
		require.NoError(t, err)
		_, err = h.svc.TimeIn(ctx, h.timeIn())
		assert.ErrorIs(t, err, attendance.ErrAlreadyTimedIn)
		assert.Len(t, h.entries.byDay, 1)
	})

	t.Run("lost insert race maps to already timed in", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		h.addSlot(t, clock.Today(h.clock), 8, 17)
		h.entries.createErr = attendance.ErrEntryExists

		_, err := h.svc.TimeIn(ctx, h.timeIn())
		assert.ErrorIs(t, err, attendance.ErrAlreadyTimedIn)
	})

	t.Run("day already marked absent", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		slot := h.addSlot(t, clock.Today(h.clock), 8, 17)
		_, err := h.entries.Create(ctx, attendance.MarkAbsent(employeeID, slot))
		require.NoError(t, err)

		_, err = h.svc.TimeIn(ctx, h.timeIn())
		assert.ErrorIs(t, err, attendance.ErrAlreadyRecorded)
	})

	t.Run("no schedule today", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		h.addSlot(t, clock.Today(h.clock).AddDate(0, 0, 1), 8, 17)

		_, err := h.svc.TimeIn(ctx, h.timeIn())
		assert.ErrorIs(t, err, schedule.ErrNoScheduleToday)
	})

	t.Run("wrong password", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		req := h.timeIn()
		req.Password = "nope"

		_, err := h.svc.TimeIn(ctx, req)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("account without employee record", func(t *testing.T) {
		h := newHarness(t, utils.Geofence{})
		req := h.timeIn()
		req.Email = "admin@example.com"

		_, err := h.svc.TimeIn(ctx, req)
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})
}

func TestTimeInGeofence(t *testing.T) {
	ctx := context.Background()
	fence := utils.Geofence{Latitude: 14.5995, Longitude: 120.9842, RadiusMeters: 100}

	h := newHarness(t, fence)
	h.addSlot(t, clock.Today(h.clock), 8, 17)

	_, err := h.svc.TimeIn(ctx, h.timeIn())
	assert.ErrorIs(t, err, attendance.ErrLocationRequired)

	far := h.timeIn()
	lat, lon := 14.6760, 121.0437
	far.Latitude, far.Longitude = &lat, &lon
	_, err = h.svc.TimeIn(ctx, far)
	assert.ErrorIs(t, err, attendance.ErrOutsideAllowedRadius)

	near := h.timeIn()
	nlat, nlon := 14.5996, 120.9843
	near.Latitude, near.Longitude = &nlat, &nlon
	_, err = h.svc.TimeIn(ctx, near)
	assert.NoError(t, err)
}

func TestFullDay(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, utils.Geofence{})
	h.addSlot(t, clock.Today(h.clock), 8, 17)

	_, err := h.svc.GoOnBreak(ctx, h.creds)
	assert.ErrorIs(t, err, attendance.ErrNotTimedIn)

	h.at(8, 0)
	_, err = h.svc.TimeIn(ctx, h.timeIn())
	require.NoError(t, err)

	h.at(12, 0)
	resp, err := h.svc.GoOnBreak(ctx, h.creds)
	require.NoError(t, err)
	assert.True(t, resp.Attendance.OnBreak)
	assert.NotNil(t, resp.Attendance.BreakStart)

	_, err = h.svc.TimeOut(ctx, h.creds)
	assert.ErrorIs(t, err, attendance.ErrOnBreak)

	h.at(13, 0)
	resp, err = h.svc.BackFromBreak(ctx, h.creds)
	require.NoError(t, err)
	require.NotNil(t, resp.BreakDurationHours)
	assert.Equal(t, 1.0, *resp.BreakDurationHours)

	_, err = h.svc.GoOnBreak(ctx, h.creds)
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyTaken)

	_, err = h.svc.SkipBreakTimeOut(ctx, h.creds)
	assert.ErrorIs(t, err, attendance.ErrBreakTakenUseTimeOut)

	h.at(17, 25)
	resp, err = h.svc.TimeOut(ctx, h.creds)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateCompleted, resp.Attendance.State)
	assert.Equal(t, 8.42, resp.Attendance.TotalHours)
	assert.True(t, resp.Attendance.IsOvertime)
	assert.Equal(t, 25, resp.Attendance.OvertimeMinutes)
	assert.True(t, resp.NeedsReason)
	assert.Equal(t, "Overtime", resp.ReasonFor)

	_, err = h.svc.TimeOut(ctx, h.creds)
	assert.ErrorIs(t, err, attendance.ErrAlreadyTimedOut)

	assert.Len(t, h.history.entries, 4)

	list, err := h.svc.ListHistory(ctx, employeeID, attendance.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), list.Total)
	assert.Equal(t, attendance.ActionTimeOut, list.History[0].Action)
	assert.Equal(t, attendance.ActionTimeIn, list.History[3].Action)
}

func TestSkipBreakTimeOutUndertime(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, utils.Geofence{})
	h.addSlot(t, clock.Today(h.clock), 8, 17)

	h.at(8, 0)
	_, err := h.svc.TimeIn(ctx, h.timeIn())
	require.NoError(t, err)

	h.at(16, 30)
	resp, err := h.svc.SkipBreakTimeOut(ctx, h.creds)
	require.NoError(t, err)
	assert.Equal(t, 8.5, resp.Attendance.TotalHours)
	assert.True(t, resp.Attendance.IsUndertime)
	assert.Equal(t, 30, resp.Attendance.UndertimeMinutes)
	assert.Equal(t, "Undertime", resp.ReasonFor)
}

func TestGetTodayAndMonth(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, utils.Geofence{})

	_, err := h.svc.GetToday(ctx, employeeID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	h.addSlot(t, clock.Today(h.clock), 8, 17)
	_, err = h.svc.TimeIn(ctx, h.timeIn())
	require.NoError(t, err)

	today, err := h.svc.GetToday(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-10", today.Date)

	month, err := h.svc.ListMyAttendance(ctx, employeeID, attendance.MonthFilter{Month: 11, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, month, 1)

	month, err = h.svc.ListMyAttendance(ctx, employeeID, attendance.MonthFilter{Month: 10, Year: 2025})
	require.NoError(t, err)
	assert.Empty(t, month)
}
