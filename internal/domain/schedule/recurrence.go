package schedule

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// MaxOccurrences caps how many slots one recurring request may create.
const MaxOccurrences = 366

// ExpandRecurrence returns the calendar days an RFC 5545 rule produces starting at from.
// Rules without COUNT or UNTIL are rejected once they pass MaxOccurrences.
func ExpandRecurrence(rule string, from time.Time) ([]time.Time, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")

	rOption, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, ErrInvalidRecurrence
	}
	rOption.Dtstart = from

	rr, err := rrule.NewRRule(*rOption)
	if err != nil {
		return nil, ErrInvalidRecurrence
	}

	ruleSet := rrule.Set{}
	ruleSet.RRule(rr)

	var dates []time.Time
	next := ruleSet.Iterator()
	for {
		instance, ok := next()
		if !ok {
			break
		}
		if len(dates) == MaxOccurrences {
			return nil, ErrTooManyOccurrences
		}
		dates = append(dates, time.Date(instance.Year(), instance.Month(), instance.Day(), 0, 0, 0, 0, from.Location()))
	}

	if len(dates) == 0 {
		return nil, ErrNoOccurrences
	}
	return dates, nil
}
