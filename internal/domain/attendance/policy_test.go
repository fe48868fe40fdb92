package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manila = time.FixedZone("PHT", 8*60*60)

func at(hour, minute int) time.Time {
	return time.Date(2025, 11, 10, hour, minute, 0, 0, manila)
}

func daySlot() schedule.Slot {
	return schedule.Slot{
		ID:    "slot-1",
		Date:  time.Date(2025, 11, 10, 0, 0, 0, 0, manila),
		Start: at(8, 0),
		End:   at(17, 0),
	}
}

func TestEvaluateLateness(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name      string
		now       time.Time
		graceLeft int
		want      Lateness
	}{
		{"early", at(7, 50), 3, Lateness{}},
		{"on time", at(8, 0), 3, Lateness{}},
		{"under a minute", at(8, 0).Add(40 * time.Second), 3, Lateness{}},
		{"within grace window", at(8, 3), 3, Lateness{LateMinutes: 3, GracePeriodUsed: true}},
		{"at grace window edge", at(8, 5), 1, Lateness{LateMinutes: 5, GracePeriodUsed: true}},
		{"within window without grace left", at(8, 3), 0, Lateness{IsLate: true, LateMinutes: 3}},
		{"beyond grace window", at(8, 10), 3, Lateness{IsLate: true, LateMinutes: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.EvaluateLateness(tc.now, at(8, 0), tc.graceLeft))
		})
	}
}

func TestEvaluateDeviation(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name string
		now  time.Time
		want Deviation
	}{
		{"overtime", at(17, 25), Deviation{IsOvertime: true, OvertimeMinutes: 25}},
		{"at overtime threshold", at(17, 20), Deviation{}},
		{"small overrun", at(17, 10), Deviation{}},
		{"small early leave", at(16, 55), Deviation{}},
		{"undertime", at(16, 30), Deviation{IsUndertime: true, UndertimeMinutes: 30}},
		{"rounded overtime", at(17, 20).Add(31 * time.Second), Deviation{IsOvertime: true, OvertimeMinutes: 21}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.EvaluateDeviation(tc.now, at(17, 0)))
		})
	}
}

func TestTotalHoursNeverNegative(t *testing.T) {
	assert.Equal(t, 8.0, TotalHours(at(8, 0), at(17, 0), 1))
	assert.Equal(t, 0.0, TotalHours(at(8, 0), at(8, 30), 1))
	assert.Equal(t, 0.0, TotalHours(at(9, 0), at(8, 0), 0))
	assert.Equal(t, 8.25, TotalHours(at(8, 0), at(16, 45), 0.5))
}

func TestStartDay(t *testing.T) {
	p := DefaultPolicy()

	t.Run("grace period keeps status present", func(t *testing.T) {
		lateness := p.EvaluateLateness(at(8, 3), at(8, 0), 3)
		e := StartDay("emp-1", daySlot(), at(8, 3), lateness)

		assert.Equal(t, StatusPresent, e.Status)
		assert.False(t, e.IsLate)
		assert.True(t, e.GracePeriodUsed)
		assert.Equal(t, 3, e.LateMinutes)
		assert.Equal(t, Working{}, e.State)
		require.NotNil(t, e.ScheduledEnd)
		assert.Equal(t, at(17, 0), *e.ScheduledEnd)
	})

	t.Run("late beyond grace", func(t *testing.T) {
		lateness := p.EvaluateLateness(at(8, 10), at(8, 0), 3)
		e := StartDay("emp-1", daySlot(), at(8, 10), lateness)

		assert.Equal(t, StatusLate, e.Status)
		assert.True(t, e.IsLate)
		assert.Equal(t, 10, e.LateMinutes)
	})
}

func TestBreakCycle(t *testing.T) {
	e := StartDay("emp-1", daySlot(), at(8, 0), Lateness{})

	e, err := e.StartBreak(at(12, 0))
	require.NoError(t, err)
	assert.True(t, e.OnBreak())
	require.NotNil(t, e.BreakStart())
	assert.Equal(t, at(12, 0), *e.BreakStart())

	_, err = e.StartBreak(at(12, 5))
	assert.ErrorIs(t, err, ErrAlreadyOnBreak)

	_, err = e.Complete(at(12, 10), DefaultPolicy())
	assert.ErrorIs(t, err, ErrOnBreak)

	e, hours, err := e.EndBreak(at(13, 0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, hours)
	assert.Equal(t, 1.0, e.BreakTimeHours)
	assert.False(t, e.OnBreak())
	assert.Nil(t, e.BreakStart())
	assert.True(t, e.BreakUsed())

	_, err = e.StartBreak(at(14, 0))
	assert.ErrorIs(t, err, ErrBreakAlreadyTaken)

	_, _, err = e.EndBreak(at(14, 0))
	assert.ErrorIs(t, err, ErrNotOnBreak)

	_, err = e.CompleteSkippingBreak(at(17, 0), DefaultPolicy())
	assert.ErrorIs(t, err, ErrBreakTakenUseTimeOut)

	e, err = e.Complete(at(17, 0), DefaultPolicy())
	require.NoError(t, err)
	assert.True(t, e.IsCompleted())
	assert.Equal(t, 8.0, e.TotalHours)
	assert.False(t, e.NeedsReason())
}

func TestCompleteFlagsOvertime(t *testing.T) {
	e := StartDay("emp-1", daySlot(), at(8, 0), Lateness{})

	e, err := e.Complete(at(17, 25), DefaultPolicy())
	require.NoError(t, err)

	assert.True(t, e.IsOvertime)
	assert.Equal(t, 25, e.OvertimeMinutes)
	assert.True(t, e.NeedsReason())

	resp := NewTransitionResponse(ActionTimeOut, e)
	assert.True(t, resp.NeedsReason)
	assert.Equal(t, "Overtime", resp.ReasonFor)

	_, err = e.Complete(at(17, 30), DefaultPolicy())
	assert.ErrorIs(t, err, ErrAlreadyTimedOut)
}

func TestSkipBreakTimeOutFlagsUndertime(t *testing.T) {
	e := StartDay("emp-1", daySlot(), at(8, 0), Lateness{})

	e, err := e.CompleteSkippingBreak(at(16, 0), DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, 8.0, e.TotalHours)
	assert.True(t, e.IsUndertime)
	assert.Equal(t, 60, e.UndertimeMinutes)
	require.NotNil(t, e.TimeOut())
	assert.Equal(t, at(16, 0), *e.TimeOut())
}

func TestTransitionsOnSweptDays(t *testing.T) {
	absent := MarkAbsent("emp-1", daySlot())
	onLeave := MarkOnLeave("emp-1", daySlot(), "leave-1")

	assert.True(t, absent.IsAbsent)
	assert.Equal(t, StatusAbsent, absent.Status)
	assert.Equal(t, StatusOnLeave, onLeave.Status)
	require.NotNil(t, onLeave.LeaveRequestID())
	assert.Equal(t, "leave-1", *onLeave.LeaveRequestID())

	for _, e := range []Entry{absent, onLeave} {
		_, err := e.StartBreak(at(12, 0))
		assert.ErrorIs(t, err, ErrNotTimedIn)
		_, err = e.Complete(at(17, 0), DefaultPolicy())
		assert.ErrorIs(t, err, ErrNotTimedIn)
		assert.ErrorIs(t, TimeInConflict(e), ErrAlreadyRecorded)
	}

	working := StartDay("emp-1", daySlot(), at(8, 0), Lateness{})
	assert.ErrorIs(t, TimeInConflict(working), ErrAlreadyTimedIn)
}

func TestSnapshotIsReproducible(t *testing.T) {
	build := func() HistoryDetails {
		e := StartDay("emp-1", daySlot(), at(8, 3), DefaultPolicy().EvaluateLateness(at(8, 3), at(8, 0), 2))
		e, _ = e.CompleteSkippingBreak(at(17, 30), DefaultPolicy())
		return e.Snapshot()
	}

	first, second := build(), build()
	assert.Equal(t, first, second)
	assert.Equal(t, StateCompleted, first.State)
	assert.True(t, first.NeedsReason)
	assert.Equal(t, 30, first.OvertimeMinutes)
}
