package overtime

import (
	"context"
)

type OvertimeService interface {
	// SubmitReason is the employee side: explain today's (or the given day's) deviation.
	SubmitReason(ctx context.Context, req SubmitReasonRequest) (RecordResponse, error)

	GetRecord(ctx context.Context, id string) (RecordResponse, error)
	List(ctx context.Context, filter ListFilter) (ListRecordResponse, error)
	Approve(ctx context.Context, id string, reviewerID string, req ReviewRequest) (RecordResponse, error)
	Decline(ctx context.Context, id string, reviewerID string, req ReviewRequest) (RecordResponse, error)
	Statistics(ctx context.Context, filter StatisticsFilter) (Statistics, error)
}
