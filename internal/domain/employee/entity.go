package employee

import (
	"time"
)

// DefaultLateGracePeriodCount is the number of forgiven late arrivals a new employee starts with.
const DefaultLateGracePeriodCount = 3

type Employee struct {
	ID                   string
	UserID               string
	LateGracePeriodCount int
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Join
	Name     string
	Email    string
	IsActive bool
}

// HasGracePeriod reports whether a late arrival can still be forgiven.
func (e *Employee) HasGracePeriod() bool {
	return e.LateGracePeriodCount > 0
}
