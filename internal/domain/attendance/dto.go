package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// CredentialsRequest carries the kiosk credentials every transition is verified with.
type CredentialsRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Meta     RequestMeta `json:"-"`
}

func (r *CredentialsRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type TimeInRequest struct {
	CredentialsRequest
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

func (r *TimeInRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type MonthFilter struct {
	Month int `json:"month" validate:"min=1,max=12"`
	Year  int `json:"year" validate:"min=2000,max=2100"`
}

func (f *MonthFilter) Validate() error {
	return validator.Struct(f).OrNil()
}

// Bounds returns the first day of the month and the first day of the next one in loc.
func (f MonthFilter) Bounds(loc *time.Location) (from, to time.Time) {
	from = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

type HistoryFilter struct {
	utils.Pagination
}

type SweepRequest struct {
	Date string `json:"date,omitempty" validate:"omitempty,date"`
}

func (r *SweepRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

// SweepSummary reports what one absence sweep run did.
type SweepSummary struct {
	Date             string `json:"date"`
	TotalSchedules   int    `json:"total_schedules"`
	AbsencesMarked   int    `json:"absences_marked"`
	EmployeesOnLeave int    `json:"employees_on_leave"`
	AlreadyMarked    int    `json:"already_marked"`
	Failed           int    `json:"failed"`
}

type EntryResponse struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employee_id"`
	Date             string    `json:"date"`
	ScheduleID       *string   `json:"schedule_id"`
	ScheduledStart   *string   `json:"scheduled_start"`
	ScheduledEnd     *string   `json:"scheduled_end"`
	TimeIn           *string   `json:"time_in"`
	TimeOut          *string   `json:"time_out"`
	State            StateName `json:"state"`
	OnBreak          bool      `json:"on_break"`
	BreakStart       *string   `json:"break_start"`
	BreakTimeHours   float64   `json:"break_time_hours"`
	TotalHours       float64   `json:"total_hours"`
	IsLate           bool      `json:"is_late"`
	LateMinutes      int       `json:"late_minutes"`
	GracePeriodUsed  bool      `json:"grace_period_used"`
	IsOvertime       bool      `json:"is_overtime"`
	OvertimeMinutes  int       `json:"overtime_minutes"`
	IsUndertime      bool      `json:"is_undertime"`
	UndertimeMinutes int       `json:"undertime_minutes"`
	IsAbsent         bool      `json:"is_absent"`
	Status           Status    `json:"status"`
	LeaveRequestID   *string   `json:"leave_request_id,omitempty"`
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:               e.ID,
		EmployeeID:       e.EmployeeID,
		Date:             e.Date.Format(dateLayout),
		ScheduleID:       e.ScheduleID,
		ScheduledStart:   timePtrToString(e.ScheduledStart),
		ScheduledEnd:     timePtrToString(e.ScheduledEnd),
		TimeIn:           timePtrToString(e.TimeIn),
		TimeOut:          timePtrToString(e.TimeOut()),
		State:            e.State.Name(),
		OnBreak:          e.OnBreak(),
		BreakStart:       timePtrToString(e.BreakStart()),
		BreakTimeHours:   e.BreakTimeHours,
		TotalHours:       e.TotalHours,
		IsLate:           e.IsLate,
		LateMinutes:      e.LateMinutes,
		GracePeriodUsed:  e.GracePeriodUsed,
		IsOvertime:       e.IsOvertime,
		OvertimeMinutes:  e.OvertimeMinutes,
		IsUndertime:      e.IsUndertime,
		UndertimeMinutes: e.UndertimeMinutes,
		IsAbsent:         e.IsAbsent,
		Status:           e.Status,
		LeaveRequestID:   e.LeaveRequestID(),
	}
}

func NewEntryResponses(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewEntryResponse(e))
	}
	return out
}

// TransitionResponse is returned by every state machine action.
type TransitionResponse struct {
	Action             Action        `json:"action"`
	Attendance         EntryResponse `json:"attendance"`
	GracePeriodsLeft   *int          `json:"grace_periods_left,omitempty"`
	BreakDurationHours *float64      `json:"break_duration_hours,omitempty"`
	// NeedsReason is set when the time-out was flagged as overtime or undertime.
	NeedsReason bool   `json:"needs_reason"`
	ReasonFor   string `json:"reason_for,omitempty"`
}

func NewTransitionResponse(action Action, e Entry) TransitionResponse {
	resp := TransitionResponse{
		Action:     action,
		Attendance: NewEntryResponse(e),
	}
	if e.IsCompleted() && e.NeedsReason() {
		resp.NeedsReason = true
		resp.ReasonFor = e.ReasonFor()
	}
	return resp
}

type HistoryResponse struct {
	ID           string         `json:"id"`
	AttendanceID string         `json:"attendance_id"`
	Date         string         `json:"date"`
	Action       Action         `json:"action"`
	OccurredAt   string         `json:"occurred_at"`
	Details      HistoryDetails `json:"details"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
}

func NewHistoryResponse(h HistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:           h.ID,
		AttendanceID: h.AttendanceID,
		Date:         h.Date.Format(dateLayout),
		Action:       h.Action,
		OccurredAt:   h.OccurredAt.Format(time.RFC3339),
		Details:      h.Details,
		IPAddress:    h.Meta.IPAddress,
		UserAgent:    h.Meta.UserAgent,
	}
}

type ListHistoryResponse struct {
	utils.PageMeta
	History []HistoryResponse `json:"history"`
}
