package notification

import "context"

// Notifier delivers one notification to a set of recipients. A nil error means delivery was accepted.
type Notifier interface {
	Notify(ctx context.Context, recipients []Recipient, kind Kind, payload Payload) error
}

// Service resolves recipients before handing off to a Notifier.
type Service interface {
	// NotifyAdmins sends to every active admin account.
	NotifyAdmins(ctx context.Context, kind Kind, payload Payload) error
	NotifyUser(ctx context.Context, userID string, kind Kind, payload Payload) error
}
