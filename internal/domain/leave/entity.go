package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategorySick     Category = "sickLeave"
	CategoryVacation Category = "vacationLeave"
)

func (c Category) IsValid() bool {
	return c == CategorySick || c == CategoryVacation
}

// Categories lists every balance category an employee holds.
func Categories() []Category {
	return []Category{CategorySick, CategoryVacation}
}

// Balance is one employee's ledger for one category.
// Remaining always equals Beginning - Availments and is never negative.
type Balance struct {
	EmployeeID string
	Category   Category
	Beginning  decimal.Decimal
	Availments decimal.Decimal
	Remaining  decimal.Decimal
	Active     decimal.Decimal
	Reserved   decimal.Decimal
	UpdatedBy  *string
	UpdatedAt  time.Time
}

func NewBalance(employeeID string, category Category) Balance {
	return Balance{
		EmployeeID: employeeID,
		Category:   category,
		Beginning:  decimal.Zero,
		Availments: decimal.Zero,
		Remaining:  decimal.Zero,
		Active:     decimal.Zero,
		Reserved:   decimal.Zero,
	}
}

// Consistent reports whether the ledger invariant holds.
func (b Balance) Consistent() bool {
	return b.Remaining.Equal(b.Beginning.Sub(b.Availments)) && !b.Remaining.IsNegative()
}

// Avail consumes days from the balance.
func (b Balance) Avail(days int) (Balance, error) {
	d := decimal.NewFromInt(int64(days))
	if b.Remaining.LessThan(d) {
		return b, ErrInsufficientBalance
	}
	b.Availments = b.Availments.Add(d)
	b.Active = b.Active.Add(d)
	b.Remaining = b.Beginning.Sub(b.Availments)
	return b, nil
}

// ResetBeginning sets a new beginning balance and recomputes what remains.
func (b Balance) ResetBeginning(beginning decimal.Decimal) (Balance, error) {
	if beginning.IsNegative() {
		return b, ErrNegativeBeginning
	}
	if beginning.LessThan(b.Availments) {
		return b, ErrBeginningBelowAvailments
	}
	b.Beginning = beginning
	b.Remaining = beginning.Sub(b.Availments)
	return b, nil
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusDeclined RequestStatus = "DECLINED"
)

// Type is derived from the dates: single iff start and end fall on the same day.
type Type string

const (
	TypeSingle Type = "single"
	TypeMulti  Type = "multi"
)

type Request struct {
	ID            string
	EmployeeID    string
	Reason        string
	StartDate     time.Time
	EndDate       time.Time
	NumberOfDays  int
	Type          Type
	Category      Category
	Status        RequestStatus
	ApprovedBy    *string
	DeclinedBy    *string
	DeclineReason *string
	DaysApproved  int
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	EmployeeName *string
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InclusiveDayCount counts calendar days from start to end, both included.
func InclusiveDayCount(start, end time.Time) int {
	return int(civil(end).Sub(civil(start)).Hours()/24) + 1
}

func DeriveType(start, end time.Time) Type {
	if civil(start).Equal(civil(end)) {
		return TypeSingle
	}
	return TypeMulti
}

func (r Request) IsPending() bool {
	return r.Status == StatusPending
}

// Covers reports whether date falls within the requested range.
func (r Request) Covers(date time.Time) bool {
	d := civil(date)
	return !d.Before(civil(r.StartDate)) && !d.After(civil(r.EndDate))
}

// Approve moves a pending request to APPROVED, recalculating the days from the stored dates.
func (r Request) Approve(approverID string, now time.Time) (Request, error) {
	if !r.IsPending() {
		return r, ErrLeaveRequestAlreadyProcessed
	}
	days := InclusiveDayCount(r.StartDate, r.EndDate)
	r.Status = StatusApproved
	r.ApprovedBy = &approverID
	r.DaysApproved = days
	r.NumberOfDays = days
	r.ReviewedAt = &now
	return r, nil
}

func (r Request) Decline(declinerID, reason string, now time.Time) (Request, error) {
	if !r.IsPending() {
		return r, ErrLeaveRequestAlreadyProcessed
	}
	r.Status = StatusDeclined
	r.DeclinedBy = &declinerID
	r.DeclineReason = &reason
	r.ReviewedAt = &now
	return r, nil
}
