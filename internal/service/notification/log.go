package notification

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

// LogNotifier writes notifications to the structured log instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements notification.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, recipients []notification.Recipient, kind notification.Kind, payload notification.Payload) error {
	emails := make([]string, len(recipients))
	for i, r := range recipients {
		emails[i] = r.Email
	}
	n.logger.InfoContext(ctx, "notification",
		"kind", kind,
		"subject", kind.Subject(),
		"recipients", emails,
		"payload", payload,
	)
	return nil
}
