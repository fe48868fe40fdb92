package overtime

import (
	"time"
)

type Type string

const (
	TypeOvertime  Type = "Overtime"
	TypeUndertime Type = "Undertime"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusDeclined Status = "Declined"
)

// Record is the employee's justification for one flagged deviation of one day.
// There is at most one record per (AttendanceID, Type).
type Record struct {
	ID            string
	EmployeeID    string
	AttendanceID  string
	Type          Type
	Date          time.Time
	ScheduledEnd  time.Time
	ActualTimeOut time.Time
	Minutes       int
	Reason        string
	Status        Status
	SubmittedAt   time.Time
	ReviewedBy    *string
	ReviewedAt    *time.Time
	ReviewNotes   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	EmployeeName *string
}

func (r Record) IsPending() bool {
	return r.Status == StatusPending
}

// Review moves a pending record to approved or declined.
func (r Record) Review(approve bool, reviewerID string, notes *string, now time.Time) (Record, error) {
	if !r.IsPending() {
		return r, ErrAlreadyReviewed
	}
	if approve {
		r.Status = StatusApproved
	} else {
		r.Status = StatusDeclined
	}
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	r.ReviewNotes = notes
	return r, nil
}

// Statistics aggregates records by status and type.
type Statistics struct {
	Total                    int64 `json:"total"`
	Pending                  int64 `json:"pending"`
	Approved                 int64 `json:"approved"`
	Declined                 int64 `json:"declined"`
	Overtime                 int64 `json:"overtime"`
	Undertime                int64 `json:"undertime"`
	ApprovedOvertimeMinutes  int64 `json:"approved_overtime_minutes"`
	ApprovedUndertimeMinutes int64 `json:"approved_undertime_minutes"`
}

// StatisticsRow is one (type, status) bucket as aggregated by storage.
type StatisticsRow struct {
	Type    Type
	Status  Status
	Count   int64
	Minutes int64
}

// Summarize folds bucket rows into Statistics.
func Summarize(rows []StatisticsRow) Statistics {
	var s Statistics
	for _, row := range rows {
		s.Total += row.Count
		switch row.Status {
		case StatusPending:
			s.Pending += row.Count
		case StatusApproved:
			s.Approved += row.Count
		case StatusDeclined:
			s.Declined += row.Count
		}
		switch row.Type {
		case TypeOvertime:
			s.Overtime += row.Count
			if row.Status == StatusApproved {
				s.ApprovedOvertimeMinutes += row.Minutes
			}
		case TypeUndertime:
			s.Undertime += row.Count
			if row.Status == StatusApproved {
				s.ApprovedUndertimeMinutes += row.Minutes
			}
		}
	}
	return s
}
