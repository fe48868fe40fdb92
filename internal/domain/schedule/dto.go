package schedule

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type CreateSlotRequest struct {
	Date       string  `json:"date" validate:"required,date"`
	Start      string  `json:"start" validate:"required,clock"`
	End        string  `json:"end" validate:"required,clock"`
	EmployeeID *string `json:"employee_id,omitempty" validate:"omitempty,uuid"`
	CreatedBy  string  `json:"-"`
}

func (r *CreateSlotRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) == 0 && r.Start >= r.End {
		errs.Add("end", "end must be after start")
	}
	return errs.OrNil()
}

// Bounds resolves the request's wall clock values into instants in loc.
func (r *CreateSlotRequest) Bounds(loc *time.Location) (date, start, end time.Time, err error) {
	return SlotBounds(r.Date, r.Start, r.End, loc)
}

// SlotBounds combines a YYYY-MM-DD date with HH:MM start/end into instants in loc.
func SlotBounds(dateStr, startStr, endStr string, loc *time.Location) (date, start, end time.Time, err error) {
	date, err = time.ParseInLocation(dateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("invalid date: %w", err)
	}
	start, err = atClock(date, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	end, err = atClock(date, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidTimeRange
	}
	return date, start, end, nil
}

func atClock(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// CreateRecurringSlotsRequest expands an RFC 5545 RRULE (e.g. "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR;COUNT=20")
// starting at From into one slot per occurrence.
type CreateRecurringSlotsRequest struct {
	Rule       string  `json:"rule" validate:"required"`
	From       string  `json:"from" validate:"required,date"`
	Start      string  `json:"start" validate:"required,clock"`
	End        string  `json:"end" validate:"required,clock"`
	EmployeeID *string `json:"employee_id,omitempty" validate:"omitempty,uuid"`
	CreatedBy  string  `json:"-"`
}

func (r *CreateRecurringSlotsRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) == 0 && r.Start >= r.End {
		errs.Add("end", "end must be after start")
	}
	return errs.OrNil()
}

type AssignRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
}

func (r *AssignRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type MonthFilter struct {
	Month int `json:"month" validate:"min=1,max=12"`
	Year  int `json:"year" validate:"min=2000,max=2100"`
}

func (f *MonthFilter) Validate() error {
	return validator.Struct(f).OrNil()
}

type SlotResponse struct {
	ID                   string  `json:"id"`
	Date                 string  `json:"date"`
	Start                string  `json:"start"`
	End                  string  `json:"end"`
	AssignedEmployeeID   *string `json:"assigned_employee_id"`
	AssignedEmployeeName *string `json:"assigned_employee_name,omitempty"`
	CreatedBy            string  `json:"created_by"`
	CreatedAt            string  `json:"created_at"`
}

func NewSlotResponse(s Slot) SlotResponse {
	return SlotResponse{
		ID:                   s.ID,
		Date:                 s.Date.Format(dateLayout),
		Start:                s.Start.Format(time.RFC3339),
		End:                  s.End.Format(time.RFC3339),
		AssignedEmployeeID:   s.AssignedEmployeeID,
		AssignedEmployeeName: s.AssignedEmployeeName,
		CreatedBy:            s.CreatedBy,
		CreatedAt:            s.CreatedAt.Format(time.RFC3339),
	}
}

func NewSlotResponses(slots []Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, NewSlotResponse(s))
	}
	return out
}
