package leave

import (
	"context"
)

type LeaveService interface {
	// Request
	Submit(ctx context.Context, req SubmitRequest) (RequestResponse, error)
	Approve(ctx context.Context, requestID string, approverID string) (RequestResponse, error)
	Decline(ctx context.Context, requestID string, declinerID string, req DeclineRequest) (RequestResponse, error)
	GetLeaveRequest(ctx context.Context, requestID string) (RequestResponse, error)
	ListLeaveRequests(ctx context.Context, filter ListFilter) (ListRequestResponse, error)

	// Balance
	GetBalances(ctx context.Context, employeeID string) ([]BalanceResponse, error)
	EditBeginningBalance(ctx context.Context, req EditBalanceRequest) (BalanceResponse, error)
}
