package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// Config holds notification service configuration
type Config struct {
	BreakerName string        // default: notifier
	Timeout     time.Duration // open state duration, default: 30 seconds
}

type NotificationServiceImpl struct {
	userRepo user.UserRepository
	notifier notification.Notifier
	cb       *gobreaker.CircuitBreaker
}

// NewNotificationService wraps notifier in a circuit breaker and resolves recipients from userRepo.
func NewNotificationService(userRepo user.UserRepository, notifier notification.Notifier, cfg Config) notification.Service {
	if cfg.BreakerName == "" {
		cfg.BreakerName = "notifier"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip when at least half of 10 or more requests failed
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("notifier circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &NotificationServiceImpl{
		userRepo: userRepo,
		notifier: notifier,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

func toRecipient(u user.User) (notification.Recipient, bool) {
	if !u.IsActive || u.Email == "" {
		return notification.Recipient{}, false
	}
	return notification.Recipient{UserID: u.ID, Name: u.Name, Email: u.Email}, true
}

// NotifyAdmins implements notification.Service.
func (s *NotificationServiceImpl) NotifyAdmins(ctx context.Context, kind notification.Kind, payload notification.Payload) error {
	if !kind.IsValid() {
		return notification.ErrUnknownKind
	}

	admins, err := s.userRepo.ListActiveAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}

	recipients := make([]notification.Recipient, 0, len(admins))
	for _, a := range admins {
		if r, ok := toRecipient(a); ok {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return notification.ErrNoRecipients
	}

	return s.deliver(ctx, recipients, kind, payload)
}

// NotifyUser implements notification.Service.
func (s *NotificationServiceImpl) NotifyUser(ctx context.Context, userID string, kind notification.Kind, payload notification.Payload) error {
	if !kind.IsValid() {
		return notification.ErrUnknownKind
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return notification.ErrNoRecipients
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	r, ok := toRecipient(u)
	if !ok {
		return notification.ErrNoRecipients
	}

	return s.deliver(ctx, []notification.Recipient{r}, kind, payload)
}

func (s *NotificationServiceImpl) deliver(ctx context.Context, recipients []notification.Recipient, kind notification.Kind, payload notification.Payload) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.notifier.Notify(ctx, recipients, kind, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", notification.ErrNotifierUnavailable, err)
		}
		return fmt.Errorf("failed to deliver %s notification: %w", kind, err)
	}

	slog.Debug("notification delivered", "kind", kind, "recipients", len(recipients))
	return nil
}
