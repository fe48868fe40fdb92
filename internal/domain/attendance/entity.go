package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
	StatusOnLeave Status = "OnLeave"
)

// Action names one transition of the day's state machine.
type Action string

const (
	ActionTimeIn           Action = "time_in"
	ActionGoOnBreak        Action = "go_on_break"
	ActionBackFromBreak    Action = "back_from_break"
	ActionTimeOut          Action = "time_out"
	ActionSkipBreakTimeOut Action = "skip_break_time_out"
)

type StateName string

const (
	StateWorking   StateName = "working"
	StateOnBreak   StateName = "on_break"
	StateCompleted StateName = "completed"
	StateAbsent    StateName = "absent"
	StateOnLeave   StateName = "on_leave"
)

// DayState is the tagged state of an employee's day. A day with no Entry is NoRecord.
type DayState interface {
	Name() StateName
	isDayState()
}

// Working: timed in, not on break. BreakUsed is set once the single daily break is over.
type Working struct {
	BreakUsed bool
}

// OnBreak: the daily break started at Since.
type OnBreak struct {
	Since time.Time
}

// Completed: timed out at TimeOut.
type Completed struct {
	TimeOut time.Time
}

// Absent: marked by the absence sweep.
type Absent struct{}

// OnLeave: covered by an approved leave request.
type OnLeave struct {
	LeaveRequestID string
}

func (Working) Name() StateName   { return StateWorking }
func (OnBreak) Name() StateName   { return StateOnBreak }
func (Completed) Name() StateName { return StateCompleted }
func (Absent) Name() StateName    { return StateAbsent }
func (OnLeave) Name() StateName   { return StateOnLeave }

func (Working) isDayState()   {}
func (OnBreak) isDayState()   {}
func (Completed) isDayState() {}
func (Absent) isDayState()    {}
func (OnLeave) isDayState()   {}

// Lateness is the outcome of evaluating a time-in against the scheduled start.
type Lateness struct {
	IsLate          bool
	LateMinutes     int
	GracePeriodUsed bool
}

// Deviation is the outcome of evaluating a time-out against the scheduled end.
type Deviation struct {
	IsOvertime       bool
	OvertimeMinutes  int
	IsUndertime      bool
	UndertimeMinutes int
}

// NeedsReason reports whether the employee must justify the deviation.
func (d Deviation) NeedsReason() bool {
	return d.IsOvertime || d.IsUndertime
}

// ReasonFor names the deviation a reason is owed for: "Overtime", "Undertime" or "".
func (d Deviation) ReasonFor() string {
	switch {
	case d.IsOvertime:
		return "Overtime"
	case d.IsUndertime:
		return "Undertime"
	default:
		return ""
	}
}

// Minutes is the size of the flagged deviation.
func (d Deviation) Minutes() int {
	if d.IsOvertime {
		return d.OvertimeMinutes
	}
	return d.UndertimeMinutes
}

// Entry is one employee's attendance for one calendar day.
type Entry struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	ScheduleID     *string
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	TimeIn         *time.Time
	State          DayState
	BreakTimeHours float64
	TotalHours     float64
	Lateness
	Deviation
	IsAbsent  bool
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Entry) OnBreak() bool {
	_, ok := e.State.(OnBreak)
	return ok
}

// BreakStart is set only while on break.
func (e Entry) BreakStart() *time.Time {
	if s, ok := e.State.(OnBreak); ok {
		since := s.Since
		return &since
	}
	return nil
}

// TimeOut is set only once completed.
func (e Entry) TimeOut() *time.Time {
	if s, ok := e.State.(Completed); ok {
		out := s.TimeOut
		return &out
	}
	return nil
}

func (e Entry) IsCompleted() bool {
	_, ok := e.State.(Completed)
	return ok
}

// BreakUsed reports whether the single daily break has been consumed.
func (e Entry) BreakUsed() bool {
	switch s := e.State.(type) {
	case Working:
		return s.BreakUsed
	case OnBreak:
		return true
	default:
		return e.BreakTimeHours > 0
	}
}

// LeaveRequestID is set only for OnLeave days.
func (e Entry) LeaveRequestID() *string {
	if s, ok := e.State.(OnLeave); ok && s.LeaveRequestID != "" {
		id := s.LeaveRequestID
		return &id
	}
	return nil
}

// RequestMeta is caller metadata stored with each history entry.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// HistoryDetails is the snapshot of derived values recorded with a transition.
type HistoryDetails struct {
	State              StateName `json:"state"`
	Status             Status    `json:"status"`
	IsLate             bool      `json:"is_late"`
	LateMinutes        int       `json:"late_minutes"`
	GracePeriodUsed    bool      `json:"grace_period_used"`
	GracePeriodsLeft   *int      `json:"grace_periods_left,omitempty"`
	BreakDurationHours float64   `json:"break_duration_hours,omitempty"`
	BreakTimeHours     float64   `json:"break_time_hours"`
	TotalHours         float64   `json:"total_hours"`
	IsOvertime         bool      `json:"is_overtime"`
	OvertimeMinutes    int       `json:"overtime_minutes"`
	IsUndertime        bool      `json:"is_undertime"`
	UndertimeMinutes   int       `json:"undertime_minutes"`
	NeedsReason        bool      `json:"needs_reason"`
}

// HistoryEntry is an immutable audit record of one transition.
type HistoryEntry struct {
	ID           string
	EmployeeID   string
	AttendanceID string
	Date         time.Time
	Action       Action
	OccurredAt   time.Time
	Details      HistoryDetails
	Meta         RequestMeta
	CreatedAt    time.Time
}
