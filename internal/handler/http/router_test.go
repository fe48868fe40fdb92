package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
)

const testEmployeeID = "0193a0c2-8f3e-7b5a-9c1d-2e4f6a8b0c1d"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type fakeAuthService struct{}

func (fakeAuthService) Login(_ context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if req.Password != "secret123" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	return auth.TokenResponse{AccessToken: "token", TokenType: "Bearer", User: auth.UserBrief{ID: "user-1", Email: req.Email}}, nil
}

func (fakeAuthService) VerifyCredentials(context.Context, string, string) (auth.Identity, error) {
	return auth.Identity{}, auth.ErrInvalidCredentials
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	timeIn   attendance.TimeInRequest
	timeOut  attendance.CredentialsRequest
	todayFor string
	filter   attendance.MonthFilter
}

func (f *fakeAttendanceService) TimeIn(_ context.Context, req attendance.TimeInRequest) (attendance.TransitionResponse, error) {
	f.timeIn = req
	return attendance.TransitionResponse{Action: attendance.ActionTimeIn}, nil
}

func (f *fakeAttendanceService) TimeOut(_ context.Context, req attendance.CredentialsRequest) (attendance.TransitionResponse, error) {
	f.timeOut = req
	if err := req.Validate(); err != nil {
		return attendance.TransitionResponse{}, err
	}
	return attendance.TransitionResponse{}, attendance.ErrNotTimedIn
}

func (f *fakeAttendanceService) GetToday(_ context.Context, employeeID string) (attendance.EntryResponse, error) {
	f.todayFor = employeeID
	return attendance.EntryResponse{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceService) ListMyAttendance(_ context.Context, _ string, filter attendance.MonthFilter) ([]attendance.EntryResponse, error) {
	f.filter = filter
	return []attendance.EntryResponse{}, nil
}

type fakeSweeper struct {
	date time.Time
}

func (f *fakeSweeper) MarkAbsences(_ context.Context, date time.Time) (attendance.SweepSummary, error) {
	f.date = date
	return attendance.SweepSummary{Date: date.Format("2006-01-02"), AbsencesMarked: 1}, nil
}

type fakeLeaveService struct {
	leave.LeaveService
	submitted leave.SubmitRequest
	edited    leave.EditBalanceRequest
}

func (f *fakeLeaveService) Submit(_ context.Context, req leave.SubmitRequest) (leave.RequestResponse, error) {
	f.submitted = req
	return leave.RequestResponse{ID: "req-1", EmployeeID: req.EmployeeID, Status: leave.StatusPending}, nil
}

func (f *fakeLeaveService) EditBeginningBalance(_ context.Context, req leave.EditBalanceRequest) (leave.BalanceResponse, error) {
	f.edited = req
	return leave.BalanceResponse{Category: req.Category, Beginning: req.Beginning.InexactFloat64()}, nil
}

type fakeScheduleService struct {
	schedule.ScheduleService
}

func (fakeScheduleService) GetSlot(context.Context, string) (schedule.SlotResponse, error) {
	return schedule.SlotResponse{}, schedule.ErrSlotNotFound
}

type fakeOvertimeService struct {
	overtime.OvertimeService
}

type fakeReportService struct{}

func (fakeReportService) GenerateMonthlyAttendanceReport(_ context.Context, req report.MonthlyAttendanceReportRequest) (report.MonthlyAttendanceReport, error) {
	return report.MonthlyAttendanceReport{EmployeeID: req.EmployeeID, PeriodMonth: req.Month, PeriodYear: req.Year}, nil
}

func (fakeReportService) RenderMonthlyAttendancePDF(context.Context, report.MonthlyAttendanceReportRequest) ([]byte, error) {
	return []byte("%PDF-1.3 fake"), nil
}

type testServer struct {
	handler    http.Handler
	jwt        jwt.Service
	attendance *fakeAttendanceService
	leave      *fakeLeaveService
	sweeper    *fakeSweeper
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	manila := time.FixedZone("PHT", 8*60*60)
	clk := clock.NewFixed(time.Date(2025, 11, 10, 9, 0, 0, 0, manila))

	ts := &testServer{
		jwt:        jwt.NewJWTService("handler-test-secret", time.Hour),
		attendance: &fakeAttendanceService{},
		leave:      &fakeLeaveService{},
		sweeper:    &fakeSweeper{},
	}
	ts.handler = NewRouter(RouterOptions{}, ts.jwt, Handlers{
		Auth:       NewAuthHandler(fakeAuthService{}),
		Attendance: NewAttendanceHandler(ts.attendance, fakeOvertimeService{}, ts.sweeper, clk),
		Leave:      NewLeaveHandler(ts.leave),
		Schedule:   NewScheduleHandler(fakeScheduleService{}, clk),
		Overtime:   NewOvertimeHandler(fakeOvertimeService{}),
		Report:     NewReportHandler(fakeReportService{}, clk),
	})
	return ts
}

func (ts *testServer) token(t *testing.T, role user.Role, employeeID *string) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken("user-1", "someone@example.com", employeeID, role)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "kiosk-test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "juan@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"access_token":"token"`)

	rec, env = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "juan@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	assert.Equal(t, auth.ErrInvalidCredentials.Message, env.Error.Message)

	rec, env = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
	assert.Contains(t, env.Error.Details, "password")
}

func TestKioskTransitions(t *testing.T) {
	ts := newTestServer(t)
	lat, lng := 14.5995, 120.9842

	rec, env := ts.do(t, http.MethodPost, "/api/v1/attendance/time-in", "", map[string]interface{}{
		"email": "juan@example.com", "password": "secret123", "latitude": lat, "longitude": lng,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "juan@example.com", ts.attendance.timeIn.Email)
	require.NotNil(t, ts.attendance.timeIn.Latitude)
	assert.Equal(t, lat, *ts.attendance.timeIn.Latitude)
	assert.Equal(t, "kiosk-test", ts.attendance.timeIn.Meta.UserAgent)
	assert.NotEmpty(t, ts.attendance.timeIn.Meta.IPAddress)

	rec, env = ts.do(t, http.MethodPost, "/api/v1/attendance/time-out", "", map[string]string{"email": "juan@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, attendance.ErrNotTimedIn.Message, env.Error.Message)

	rec, env = ts.do(t, http.MethodPost, "/api/v1/attendance/time-out", "", map[string]string{"email": "juan@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, env = ts.do(t, http.MethodPost, "/api/v1/attendance/time-in", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request format", env.Error.Message)
}

func TestAuthenticationRequired(t *testing.T) {
	ts := newTestServer(t)
	employeeID := testEmployeeID

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/attendance/me/today", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/attendance/me/today", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/attendance/me/today", ts.token(t, user.RoleEmployee, &employeeID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, employeeID, ts.attendance.todayFor)

	// Admin accounts without an employee record cannot use employee endpoints.
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/attendance/me/today", ts.token(t, user.RoleAdmin, nil), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListMyAttendanceDefaultsToCurrentMonth(t *testing.T) {
	ts := newTestServer(t)
	employeeID := testEmployeeID
	token := ts.token(t, user.RoleEmployee, &employeeID)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/attendance/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, attendance.MonthFilter{Month: 11, Year: 2025}, ts.attendance.filter)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/attendance/me?month=2&year=2024", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, attendance.MonthFilter{Month: 2, Year: 2024}, ts.attendance.filter)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/attendance/me?month=feb", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	employeeID := testEmployeeID

	rec, env := ts.do(t, http.MethodGet, "/api/v1/admin/schedules/slot-1", ts.token(t, user.RoleEmployee, &employeeID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, user.ErrAdminPrivilegeRequired.Message, env.Error.Message)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/admin/schedules/0193a0c2-8f3e-7b5a-9c1d-000000000001", ts.token(t, user.RoleAdmin, nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, schedule.ErrSlotNotFound.Message, env.Error.Message)
}

func TestLeaveEndpoints(t *testing.T) {
	ts := newTestServer(t)
	employeeID := testEmployeeID

	rec, env := ts.do(t, http.MethodPost, "/api/v1/leave-requests", ts.token(t, user.RoleEmployee, &employeeID), map[string]string{
		"reason":         "Family trip to the province",
		"start_date":     "2025-11-20",
		"end_date":       "2025-11-21",
		"leave_category": "vacationLeave",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, employeeID, ts.leave.submitted.EmployeeID)
	assert.Equal(t, leave.CategoryVacation, ts.leave.submitted.Category)

	rec, _ = ts.do(t, http.MethodPut, "/api/v1/admin/employees/"+employeeID+"/leave-balances/sickLeave", ts.token(t, user.RoleAdmin, nil), map[string]interface{}{"beginning": 7.5})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, employeeID, ts.leave.edited.EmployeeID)
	assert.Equal(t, leave.CategorySick, ts.leave.edited.Category)
	assert.Equal(t, "user-1", ts.leave.edited.AdminID)
	assert.Equal(t, "7.5", ts.leave.edited.Beginning.String())

	ts.leave.edited = leave.EditBalanceRequest{}
	rec, env = ts.do(t, http.MethodPut, "/api/v1/admin/employees/"+employeeID+"/leave-balances/sickLeave", ts.token(t, user.RoleAdmin, nil), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "beginning")
	assert.Empty(t, ts.leave.edited.EmployeeID)
}

func TestMonthlyReport(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, user.RoleAdmin, nil)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/admin/reports/employees/"+testEmployeeID+"/monthly?month=10&year=2025", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"period_month":10`)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/admin/reports/employees/"+testEmployeeID+"/monthly?month=10&year=2025&format=pdf", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance-"+testEmployeeID+"-2025-10.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestSweepAbsences(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, user.RoleAdmin, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/admin/absences/sweep", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"date":"2025-11-10"`)

	rec, env = ts.do(t, http.MethodPost, "/api/v1/admin/absences/sweep", token, map[string]string{"date": "2025-11-07"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"date":"2025-11-07"`)
	assert.Equal(t, 7, ts.sweeper.date.Day())

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/admin/absences/sweep", token, map[string]string{"date": "07/11/2025"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedPathIDsAreNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, user.RoleAdmin, nil)

	tests := []struct {
		method  string
		path    string
		body    interface{}
		message string
	}{
		{http.MethodGet, "/api/v1/admin/overtime/abc", nil, overtime.ErrRecordNotFound.Message},
		{http.MethodPost, "/api/v1/admin/overtime/abc/approve", nil, overtime.ErrRecordNotFound.Message},
		{http.MethodPost, "/api/v1/admin/overtime/abc/decline", map[string]string{"notes": "no"}, overtime.ErrRecordNotFound.Message},
		{http.MethodGet, "/api/v1/admin/leave-requests/abc", nil, leave.ErrLeaveRequestNotFound.Message},
		{http.MethodPost, "/api/v1/admin/leave-requests/abc/approve", nil, leave.ErrLeaveRequestNotFound.Message},
		{http.MethodPost, "/api/v1/admin/leave-requests/abc/decline", map[string]string{"reason": "overlaps"}, leave.ErrLeaveRequestNotFound.Message},
		{http.MethodPut, "/api/v1/admin/employees/abc/leave-balances/sickLeave", map[string]interface{}{"beginning": 5}, employee.ErrEmployeeNotFound.Message},
		{http.MethodGet, "/api/v1/admin/schedules/abc", nil, schedule.ErrSlotNotFound.Message},
		{http.MethodDelete, "/api/v1/admin/schedules/abc", nil, schedule.ErrSlotNotFound.Message},
		{http.MethodPut, "/api/v1/admin/schedules/abc/assign", map[string]string{"employee_id": testEmployeeID}, schedule.ErrSlotNotFound.Message},
		{http.MethodPut, "/api/v1/admin/schedules/abc/reassign", map[string]string{"employee_id": testEmployeeID}, schedule.ErrSlotNotFound.Message},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec, env := ts.do(t, tt.method, tt.path, token, tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.message, env.Error.Message)
		})
	}
}
