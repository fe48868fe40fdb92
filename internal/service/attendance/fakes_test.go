package attendance

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/google/uuid"
)

type noopTransactor struct{}

func (noopTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type credential struct {
	password string
	identity auth.Identity
}

type fakeAuthService struct {
	byEmail map[string]credential
}

func (f *fakeAuthService) Login(context.Context, auth.LoginRequest) (auth.TokenResponse, error) {
	return auth.TokenResponse{}, nil
}

func (f *fakeAuthService) VerifyCredentials(_ context.Context, email, password string) (auth.Identity, error) {
	c, ok := f.byEmail[email]
	if !ok || c.password != password {
		return auth.Identity{}, auth.ErrInvalidCredentials
	}
	return c.identity, nil
}

type fakeEmployeeRepo struct {
	byID map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetByUserID(_ context.Context, userID string) (employee.Employee, error) {
	for _, e := range f.byID {
		if e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) LockByID(ctx context.Context, id string) (employee.Employee, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEmployeeRepo) UpdateGracePeriodCount(_ context.Context, id string, count int) error {
	e := f.byID[id]
	e.LateGracePeriodCount = count
	f.byID[id] = e
	return nil
}

type fakeSlotRepo struct {
	slots []schedule.Slot
}

func (f *fakeSlotRepo) Create(_ context.Context, slot schedule.Slot) (schedule.Slot, error) {
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	f.slots = append(f.slots, slot)
	return slot, nil
}

func (f *fakeSlotRepo) GetByID(_ context.Context, id string) (schedule.Slot, error) {
	for _, s := range f.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return schedule.Slot{}, schedule.ErrSlotNotFound
}

func (f *fakeSlotRepo) LockByID(ctx context.Context, id string) (schedule.Slot, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSlotRepo) Delete(context.Context, string) error { return nil }

func (f *fakeSlotRepo) UpdateAssignment(context.Context, string, *string) error { return nil }

func (f *fakeSlotRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) ([]schedule.Slot, error) {
	var out []schedule.Slot
	for _, s := range f.slots {
		if s.IsAssignedTo(employeeID) && s.Date.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) ListByMonth(context.Context, int, time.Month) ([]schedule.Slot, error) {
	return nil, nil
}

func (f *fakeSlotRepo) ListAssignedOnDate(_ context.Context, date time.Time) ([]schedule.Slot, error) {
	var out []schedule.Slot
	for _, s := range f.slots {
		if s.IsAssigned() && s.Date.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeScheduleService answers FindTodaySlotFor from a fakeSlotRepo.
type fakeScheduleService struct {
	schedule.ScheduleService
	slots *fakeSlotRepo
	today func() time.Time
}

func (f *fakeScheduleService) FindTodaySlotFor(ctx context.Context, employeeID string) (schedule.Slot, error) {
	slots, _ := f.slots.ListByEmployeeAndDate(ctx, employeeID, f.today())
	slot, ok := schedule.Earliest(slots)
	if !ok {
		return schedule.Slot{}, schedule.ErrNoScheduleToday
	}
	return slot, nil
}

type dayKey struct {
	employeeID string
	date       string
}

type fakeAttendanceRepo struct {
	byDay     map[dayKey]attendance.Entry
	failFor   map[string]error
	createErr error
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{byDay: map[dayKey]attendance.Entry{}, failFor: map[string]error{}}
}

func keyOf(employeeID string, date time.Time) dayKey {
	return dayKey{employeeID: employeeID, date: date.Format("2006-01-02")}
}

func (f *fakeAttendanceRepo) Create(_ context.Context, entry attendance.Entry) (attendance.Entry, error) {
	if f.createErr != nil {
		return attendance.Entry{}, f.createErr
	}
	k := keyOf(entry.EmployeeID, entry.Date)
	if _, ok := f.byDay[k]; ok {
		return attendance.Entry{}, attendance.ErrEntryExists
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	f.byDay[k] = entry
	return entry, nil
}

func (f *fakeAttendanceRepo) CreateIfAbsent(ctx context.Context, entry attendance.Entry) (bool, error) {
	if err, ok := f.failFor[entry.EmployeeID]; ok {
		return false, err
	}
	if _, ok := f.byDay[keyOf(entry.EmployeeID, entry.Date)]; ok {
		return false, nil
	}
	_, err := f.Create(ctx, entry)
	return err == nil, err
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Entry, error) {
	for _, e := range f.byDay {
		if e.ID == id {
			return e, nil
		}
	}
	return attendance.Entry{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (attendance.Entry, error) {
	e, ok := f.byDay[keyOf(employeeID, date)]
	if !ok {
		return attendance.Entry{}, attendance.ErrAttendanceNotFound
	}
	return e, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, entry attendance.Entry) error {
	k := keyOf(entry.EmployeeID, entry.Date)
	if _, ok := f.byDay[k]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	f.byDay[k] = entry
	return nil
}

func (f *fakeAttendanceRepo) ListByEmployeeBetween(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Entry, error) {
	var out []attendance.Entry
	for _, e := range f.byDay {
		if e.EmployeeID == employeeID && !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type fakeHistoryRepo struct {
	entries []attendance.HistoryEntry
}

func (f *fakeHistoryRepo) Append(_ context.Context, entry attendance.HistoryEntry) error {
	entry.ID = uuid.New().String()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistoryRepo) ListByEmployee(_ context.Context, employeeID string, page utils.Pagination) ([]attendance.HistoryEntry, int64, error) {
	var mine []attendance.HistoryEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].EmployeeID == employeeID {
			mine = append(mine, f.entries[i])
		}
	}
	total := int64(len(mine))
	start := page.Offset()
	if start > len(mine) {
		start = len(mine)
	}
	end := start + page.PageSize
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

type fakeLeaveRepo struct {
	leave.RequestRepository
	approved []leave.Request
	err      error
}

func (f *fakeLeaveRepo) FindApprovedCovering(_ context.Context, employeeID string, date time.Time) (leave.Request, error) {
	if f.err != nil {
		return leave.Request{}, f.err
	}
	for _, r := range f.approved {
		if r.EmployeeID == employeeID && r.Covers(date) {
			return r, nil
		}
	}
	return leave.Request{}, leave.ErrLeaveRequestNotFound
}
