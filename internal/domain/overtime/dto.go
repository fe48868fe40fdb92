package overtime

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// SubmitReasonRequest explains a flagged deviation. Without AttendanceID today's entry is used.
type SubmitReasonRequest struct {
	EmployeeID   string  `json:"-"`
	AttendanceID *string `json:"attendance_id,omitempty" validate:"omitempty,uuid"`
	Reason       string  `json:"reason" validate:"required,max=500"`
}

func (r *SubmitReasonRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) == 0 && validator.IsEmpty(r.Reason) {
		errs.Add("reason", "is required")
	}
	return errs.OrNil()
}

type ReviewRequest struct {
	Notes *string `json:"review_notes,omitempty" validate:"omitempty,max=500"`
}

func (r *ReviewRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

// ValidateDecline additionally requires notes.
func (r *ReviewRequest) ValidateDecline() error {
	errs := validator.Struct(r)
	if r.Notes == nil || validator.IsEmpty(*r.Notes) {
		errs.Add("review_notes", "is required when declining")
	}
	return errs.OrNil()
}

type ListFilter struct {
	utils.Pagination
	Status     *Status `json:"status,omitempty" validate:"omitempty,oneof=Pending Approved Declined"`
	Type       *Type   `json:"type,omitempty" validate:"omitempty,oneof=Overtime Undertime"`
	EmployeeID *string `json:"employee_id,omitempty" validate:"omitempty,uuid"`
}

func (f *ListFilter) Validate() error {
	return validator.Struct(f).OrNil()
}

// StatisticsFilter bounds the aggregation by work date, both ends inclusive.
type StatisticsFilter struct {
	From *string `json:"from,omitempty" validate:"omitempty,date"`
	To   *string `json:"to,omitempty" validate:"omitempty,date"`
}

func (f *StatisticsFilter) Validate() error {
	errs := validator.Struct(f)
	if len(errs) == 0 && f.From != nil && f.To != nil && *f.To < *f.From {
		errs.Add("to", "must not be before from")
	}
	return errs.OrNil()
}

// Range parses the bounds; nil means open ended.
func (f *StatisticsFilter) Range() (from, to *time.Time) {
	if f.From != nil {
		if t, ok := validator.IsValidDate(*f.From); ok {
			from = &t
		}
	}
	if f.To != nil {
		if t, ok := validator.IsValidDate(*f.To); ok {
			to = &t
		}
	}
	return from, to
}

type RecordResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  *string `json:"employee_name,omitempty"`
	AttendanceID  string  `json:"attendance_id"`
	Type          Type    `json:"type"`
	Date          string  `json:"date"`
	ScheduledEnd  string  `json:"scheduled_end"`
	ActualTimeOut string  `json:"actual_time_out"`
	Minutes       int     `json:"minutes"`
	Reason        string  `json:"reason"`
	Status        Status  `json:"status"`
	SubmittedAt   string  `json:"submitted_at"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	ReviewNotes   *string `json:"review_notes,omitempty"`
}

func NewRecordResponse(r Record) RecordResponse {
	resp := RecordResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		AttendanceID:  r.AttendanceID,
		Type:          r.Type,
		Date:          r.Date.Format(dateLayout),
		ScheduledEnd:  r.ScheduledEnd.Format(time.RFC3339),
		ActualTimeOut: r.ActualTimeOut.Format(time.RFC3339),
		Minutes:       r.Minutes,
		Reason:        r.Reason,
		Status:        r.Status,
		SubmittedAt:   r.SubmittedAt.Format(time.RFC3339),
		ReviewedBy:    r.ReviewedBy,
		ReviewNotes:   r.ReviewNotes,
	}
	if r.ReviewedAt != nil {
		s := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}

type ListRecordResponse struct {
	utils.PageMeta
	Records []RecordResponse `json:"records"`
}
