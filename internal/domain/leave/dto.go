package leave

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type SubmitRequest struct {
	EmployeeID string   `json:"-"`
	Reason     string   `json:"reason" validate:"required,min=15,max=200"`
	StartDate  string   `json:"start_date" validate:"required,date"`
	EndDate    string   `json:"end_date" validate:"required,date"`
	Category   Category `json:"leave_category" validate:"required,oneof=sickLeave vacationLeave"`
}

// Validate checks field formats, then that the range starts strictly after today and is ordered.
func (r *SubmitRequest) Validate(today time.Time) error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}

	if r.StartDate <= today.Format(dateLayout) {
		errs.Add("start_date", ErrStartDateNotFuture.Message)
	}
	if r.EndDate < r.StartDate {
		errs.Add("end_date", ErrEndBeforeStart.Message)
	}
	return errs.OrNil()
}

// Dates parses the requested range as calendar days in loc.
func (r *SubmitRequest) Dates(loc *time.Location) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(dateLayout, r.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = time.ParseInLocation(dateLayout, r.EndDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

type DeclineRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (r *DeclineRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type EditBalanceRequest struct {
	EmployeeID string          `json:"-"`
	Category   Category        `json:"-"`
	AdminID    string          `json:"-"`
	Beginning  *decimal.Decimal `json:"beginning"`
}

func (r *EditBalanceRequest) Validate() error {
	var errs validator.ValidationErrors
	if !r.Category.IsValid() {
		errs.Add("category", ErrInvalidCategory.Message)
	}
	switch {
	case r.Beginning == nil:
		errs.Add("beginning", "beginning is required")
	case r.Beginning.IsNegative():
		errs.Add("beginning", ErrNegativeBeginning.Message)
	}
	return errs.OrNil()
}

type ListFilter struct {
	utils.Pagination
	Status     *RequestStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING APPROVED DECLINED"`
	EmployeeID *string        `json:"employee_id,omitempty" validate:"omitempty,uuid"`
	Category   *Category      `json:"leave_category,omitempty" validate:"omitempty,oneof=sickLeave vacationLeave"`
}

func (f *ListFilter) Validate() error {
	return validator.Struct(f).OrNil()
}

type BalanceResponse struct {
	Category   Category `json:"category"`
	Beginning  float64  `json:"beginning"`
	Availments float64  `json:"availments"`
	Remaining  float64  `json:"remaining"`
	Active     float64  `json:"active"`
	Reserved   float64  `json:"reserved"`
	UpdatedBy  *string  `json:"updated_by,omitempty"`
}

func NewBalanceResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		Category:   b.Category,
		Beginning:  b.Beginning.InexactFloat64(),
		Availments: b.Availments.InexactFloat64(),
		Remaining:  b.Remaining.InexactFloat64(),
		Active:     b.Active.InexactFloat64(),
		Reserved:   b.Reserved.InexactFloat64(),
		UpdatedBy:  b.UpdatedBy,
	}
}

type RequestResponse struct {
	ID            string        `json:"id"`
	EmployeeID    string        `json:"employee_id"`
	EmployeeName  *string       `json:"employee_name,omitempty"`
	Reason        string        `json:"reason"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	NumberOfDays  int           `json:"number_of_days"`
	LeaveType     Type          `json:"leave_type"`
	LeaveCategory Category      `json:"leave_category"`
	Status        RequestStatus `json:"status"`
	ApprovedBy    *string       `json:"approved_by,omitempty"`
	DeclinedBy    *string       `json:"declined_by,omitempty"`
	DeclineReason *string       `json:"decline_reason,omitempty"`
	DaysApproved  int           `json:"days_approved"`
	ReviewedAt    *string       `json:"reviewed_at,omitempty"`
	CreatedAt     string        `json:"created_at"`
}

func NewRequestResponse(r Request) RequestResponse {
	resp := RequestResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		Reason:        r.Reason,
		StartDate:     r.StartDate.Format(dateLayout),
		EndDate:       r.EndDate.Format(dateLayout),
		NumberOfDays:  r.NumberOfDays,
		LeaveType:     r.Type,
		LeaveCategory: r.Category,
		Status:        r.Status,
		ApprovedBy:    r.ApprovedBy,
		DeclinedBy:    r.DeclinedBy,
		DeclineReason: r.DeclineReason,
		DaysApproved:  r.DaysApproved,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReviewedAt != nil {
		s := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}

type ListRequestResponse struct {
	utils.PageMeta
	LeaveRequests []RequestResponse `json:"leave_requests"`
}
