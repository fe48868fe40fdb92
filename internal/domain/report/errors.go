package report

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	ErrReportGenerationFailed = apperror.New(apperror.KindInternal, "failed to generate report")
)
