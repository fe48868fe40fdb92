package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
)

// Policy holds the thresholds a day is classified against.
type Policy struct {
	GracePeriodWindow  time.Duration
	OvertimeThreshold  time.Duration
	UndertimeThreshold time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		GracePeriodWindow:  5 * time.Minute,
		OvertimeThreshold:  20 * time.Minute,
		UndertimeThreshold: 5 * time.Minute,
	}
}

// EvaluateLateness classifies a time-in. Lateness within the grace window is
// forgiven while the employee has grace periods left; anything else is Late.
// Arrivals less than a whole minute late count as on time.
func (p Policy) EvaluateLateness(now, scheduledStart time.Time, graceLeft int) Lateness {
	late := now.Sub(scheduledStart)
	minutes := int(late / time.Minute)
	if minutes <= 0 {
		return Lateness{}
	}
	if late <= p.GracePeriodWindow && graceLeft > 0 {
		return Lateness{LateMinutes: minutes, GracePeriodUsed: true}
	}
	return Lateness{IsLate: true, LateMinutes: minutes}
}

// EvaluateDeviation classifies a time-out against the scheduled end.
func (p Policy) EvaluateDeviation(now, scheduledEnd time.Time) Deviation {
	diff := now.Sub(scheduledEnd)
	switch {
	case diff > p.OvertimeThreshold:
		return Deviation{IsOvertime: true, OvertimeMinutes: int(math.Round(diff.Minutes()))}
	case diff < -p.UndertimeThreshold:
		return Deviation{IsUndertime: true, UndertimeMinutes: int(math.Round(-diff.Minutes()))}
	default:
		return Deviation{}
	}
}

// TotalHours is elapsed(timeIn, timeOut) minus break time, floored at zero.
func TotalHours(timeIn, timeOut time.Time, breakHours float64) float64 {
	total := timeOut.Sub(timeIn).Hours() - breakHours
	if total < 0 {
		return 0
	}
	return roundHours(total)
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// StartDay builds the entry created by a time-in against slot.
func StartDay(employeeID string, slot schedule.Slot, now time.Time, lateness Lateness) Entry {
	slotID := slot.ID
	start, end := slot.Start, slot.End
	timeIn := now

	status := StatusPresent
	if lateness.IsLate {
		status = StatusLate
	}

	return Entry{
		EmployeeID:     employeeID,
		Date:           slot.Date,
		ScheduleID:     &slotID,
		ScheduledStart: &start,
		ScheduledEnd:   &end,
		TimeIn:         &timeIn,
		State:          Working{},
		Lateness:       lateness,
		Status:         status,
	}
}

// MarkAbsent builds the entry the absence sweep creates for an unattended slot.
func MarkAbsent(employeeID string, slot schedule.Slot) Entry {
	e := sweptEntry(employeeID, slot)
	e.State = Absent{}
	e.IsAbsent = true
	e.Status = StatusAbsent
	return e
}

// MarkOnLeave builds the entry for a slot covered by approved leave.
func MarkOnLeave(employeeID string, slot schedule.Slot, leaveRequestID string) Entry {
	e := sweptEntry(employeeID, slot)
	e.State = OnLeave{LeaveRequestID: leaveRequestID}
	e.Status = StatusOnLeave
	return e
}

func sweptEntry(employeeID string, slot schedule.Slot) Entry {
	slotID := slot.ID
	start, end := slot.Start, slot.End
	return Entry{
		EmployeeID:     employeeID,
		Date:           slot.Date,
		ScheduleID:     &slotID,
		ScheduledStart: &start,
		ScheduledEnd:   &end,
	}
}

// TimeInConflict returns the error for a time-in on a day that already has an entry.
func TimeInConflict(existing Entry) error {
	switch existing.State.(type) {
	case Absent, OnLeave:
		return ErrAlreadyRecorded
	default:
		return ErrAlreadyTimedIn
	}
}

func (e Entry) requireTimedIn() error {
	switch e.State.(type) {
	case Absent, OnLeave:
		return ErrNotTimedIn
	case Completed:
		return ErrAlreadyTimedOut
	}
	if e.TimeIn == nil {
		return ErrNotTimedIn
	}
	return nil
}

// StartBreak moves Working to OnBreak. Only one break is allowed per day.
func (e Entry) StartBreak(now time.Time) (Entry, error) {
	if err := e.requireTimedIn(); err != nil {
		return e, err
	}
	switch s := e.State.(type) {
	case OnBreak:
		return e, ErrAlreadyOnBreak
	case Working:
		if s.BreakUsed || e.BreakTimeHours > 0 {
			return e, ErrBreakAlreadyTaken
		}
	}
	e.State = OnBreak{Since: now}
	return e, nil
}

// EndBreak moves OnBreak back to Working and accumulates break time.
// It returns the length of the break that just ended, in hours.
func (e Entry) EndBreak(now time.Time) (Entry, float64, error) {
	if err := e.requireTimedIn(); err != nil {
		return e, 0, err
	}
	s, ok := e.State.(OnBreak)
	if !ok {
		return e, 0, ErrNotOnBreak
	}
	duration := now.Sub(s.Since).Hours()
	if duration < 0 {
		duration = 0
	}
	e.BreakTimeHours = roundHours(e.BreakTimeHours + duration)
	e.State = Working{BreakUsed: true}
	return e, roundHours(duration), nil
}

// Complete is the normal time-out path.
func (e Entry) Complete(now time.Time, p Policy) (Entry, error) {
	if err := e.requireTimedIn(); err != nil {
		return e, err
	}
	if e.OnBreak() {
		return e, ErrOnBreak
	}
	return e.complete(now, p), nil
}

// CompleteSkippingBreak times out a day on which no break was taken.
func (e Entry) CompleteSkippingBreak(now time.Time, p Policy) (Entry, error) {
	if err := e.requireTimedIn(); err != nil {
		return e, err
	}
	if e.OnBreak() {
		return e, ErrOnBreak
	}
	if e.BreakUsed() {
		return e, ErrBreakTakenUseTimeOut
	}
	return e.complete(now, p), nil
}

func (e Entry) complete(now time.Time, p Policy) Entry {
	e.State = Completed{TimeOut: now}
	e.TotalHours = TotalHours(*e.TimeIn, now, e.BreakTimeHours)
	if e.ScheduledEnd != nil {
		e.Deviation = p.EvaluateDeviation(now, *e.ScheduledEnd)
	}
	return e
}

// Snapshot captures the derived values recorded in history.
func (e Entry) Snapshot() HistoryDetails {
	return HistoryDetails{
		State:            e.State.Name(),
		Status:           e.Status,
		IsLate:           e.IsLate,
		LateMinutes:      e.LateMinutes,
		GracePeriodUsed:  e.GracePeriodUsed,
		BreakTimeHours:   e.BreakTimeHours,
		TotalHours:       e.TotalHours,
		IsOvertime:       e.IsOvertime,
		OvertimeMinutes:  e.OvertimeMinutes,
		IsUndertime:      e.IsUndertime,
		UndertimeMinutes: e.UndertimeMinutes,
		NeedsReason:      e.IsCompleted() && e.NeedsReason(),
	}
}
