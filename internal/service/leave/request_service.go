package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type RequestService struct {
	leave.RequestRepository
	clock clock.Clock
}

func NewRequestService(requestRepository leave.RequestRepository, clk clock.Clock) *RequestService {
	return &RequestService{
		RequestRepository: requestRepository,
		clock:             clk,
	}
}

// Create stores a new PENDING request built from a validated submission.
func (r *RequestService) Create(ctx context.Context, req leave.SubmitRequest) (leave.Request, error) {
	start, end, err := req.Dates(r.clock.Location())
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to parse leave dates: %w", err)
	}

	created, err := r.RequestRepository.Create(ctx, leave.Request{
		EmployeeID:   req.EmployeeID,
		Reason:       req.Reason,
		StartDate:    start,
		EndDate:      end,
		NumberOfDays: leave.InclusiveDayCount(start, end),
		Type:         leave.DeriveType(start, end),
		Category:     req.Category,
		Status:       leave.StatusPending,
	})
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

// Lock loads the request row for update.
func (r *RequestService) Lock(ctx context.Context, requestID string) (leave.Request, error) {
	request, err := r.RequestRepository.GetForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.Request{}, err
		}
		return leave.Request{}, fmt.Errorf("failed to lock leave request: %w", err)
	}
	return request, nil
}

// Approve marks a locked request approved and returns it with the recomputed day count.
func (r *RequestService) Approve(ctx context.Context, request leave.Request, approverID string) (leave.Request, error) {
	approved, err := request.Approve(approverID, r.clock.Now())
	if err != nil {
		return leave.Request{}, err
	}
	if err := r.RequestRepository.Update(ctx, approved); err != nil {
		return leave.Request{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	return approved, nil
}

// Decline marks a locked request declined. Balances are not touched.
func (r *RequestService) Decline(ctx context.Context, request leave.Request, declinerID, reason string) (leave.Request, error) {
	declined, err := request.Decline(declinerID, reason, r.clock.Now())
	if err != nil {
		return leave.Request{}, err
	}
	if err := r.RequestRepository.Update(ctx, declined); err != nil {
		return leave.Request{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	return declined, nil
}
