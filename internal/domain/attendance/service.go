package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	TimeIn(ctx context.Context, req TimeInRequest) (TransitionResponse, error)
	GoOnBreak(ctx context.Context, req CredentialsRequest) (TransitionResponse, error)
	BackFromBreak(ctx context.Context, req CredentialsRequest) (TransitionResponse, error)
	TimeOut(ctx context.Context, req CredentialsRequest) (TransitionResponse, error)
	SkipBreakTimeOut(ctx context.Context, req CredentialsRequest) (TransitionResponse, error)

	GetToday(ctx context.Context, employeeID string) (EntryResponse, error)
	ListMyAttendance(ctx context.Context, employeeID string, filter MonthFilter) ([]EntryResponse, error)
	ListHistory(ctx context.Context, employeeID string, filter HistoryFilter) (ListHistoryResponse, error)
}

// AbsenceSweeper reconciles the day's assigned slots that were never clocked into.
type AbsenceSweeper interface {
	MarkAbsences(ctx context.Context, date time.Time) (SweepSummary, error)
}
