package schedule

import (
	"time"
)

// Slot is a scheduled work period on one calendar day, optionally assigned to one employee.
type Slot struct {
	ID                 string
	Date               time.Time
	Start              time.Time
	End                time.Time
	AssignedEmployeeID *string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Join
	AssignedEmployeeName *string
}

func (s Slot) IsAssigned() bool {
	return s.AssignedEmployeeID != nil && *s.AssignedEmployeeID != ""
}

func (s Slot) IsAssignedTo(employeeID string) bool {
	return s.IsAssigned() && *s.AssignedEmployeeID == employeeID
}

// Overlaps compares half-open intervals [Start, End).
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// FindOverlap returns the first slot in existing, other than candidate itself,
// whose interval overlaps candidate.
func FindOverlap(candidate Slot, existing []Slot) (Slot, bool) {
	for _, s := range existing {
		if s.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(s) {
			return s, true
		}
	}
	return Slot{}, false
}

// Earliest returns the slot with the smallest Start.
func Earliest(slots []Slot) (Slot, bool) {
	if len(slots) == 0 {
		return Slot{}, false
	}
	first := slots[0]
	for _, s := range slots[1:] {
		if s.Start.Before(first.Start) {
			first = s
		}
	}
	return first, true
}
