package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"
)

type fakeUserRepo struct {
	users []user.User
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) ListActiveAdmins(ctx context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.IsAdmin() && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

type call struct {
	recipients []notification.Recipient
	kind       notification.Kind
}

type recordingNotifier struct {
	calls []call
	err   error
}

func (r *recordingNotifier) Notify(ctx context.Context, recipients []notification.Recipient, kind notification.Kind, payload notification.Payload) error {
	r.calls = append(r.calls, call{recipients: recipients, kind: kind})
	return r.err
}

func newUsers() *fakeUserRepo {
	return &fakeUserRepo{users: []user.User{
		{ID: "admin-1", Name: "Ana", Email: "ana@example.com", Role: user.RoleAdmin, IsActive: true},
		{ID: "admin-2", Name: "Ben", Email: "ben@example.com", Role: user.RoleAdmin, IsActive: true},
		{ID: "admin-3", Name: "Old", Email: "old@example.com", Role: user.RoleAdmin, IsActive: false},
		{ID: "emp-user", Name: "Juan", Email: "juan@example.com", Role: user.RoleEmployee, IsActive: true},
		{ID: "gone-user", Name: "Gone", Email: "gone@example.com", Role: user.RoleEmployee, IsActive: false},
	}}
}

func TestNotifyAdmins(t *testing.T) {
	n := &recordingNotifier{}
	svc := NewNotificationService(newUsers(), n, Config{})

	err := svc.NotifyAdmins(context.Background(), notification.KindLeaveRequestSubmitted, notification.Payload{"request_id": "r-1"})
	require.NoError(t, err)

	require.Len(t, n.calls, 1)
	assert.Equal(t, notification.KindLeaveRequestSubmitted, n.calls[0].kind)
	assert.Equal(t, []notification.Recipient{
		{UserID: "admin-1", Name: "Ana", Email: "ana@example.com"},
		{UserID: "admin-2", Name: "Ben", Email: "ben@example.com"},
	}, n.calls[0].recipients)
}

func TestNotifyAdminsWithoutAdmins(t *testing.T) {
	n := &recordingNotifier{}
	svc := NewNotificationService(&fakeUserRepo{}, n, Config{})

	err := svc.NotifyAdmins(context.Background(), notification.KindOvertimeReasonSubmitted, nil)
	assert.ErrorIs(t, err, notification.ErrNoRecipients)
	assert.Empty(t, n.calls)
}

func TestNotifyUser(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		wantErr error
	}{
		{name: "active user", userID: "emp-user"},
		{name: "inactive user", userID: "gone-user", wantErr: notification.ErrNoRecipients},
		{name: "unknown user", userID: "nobody", wantErr: notification.ErrNoRecipients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			svc := NewNotificationService(newUsers(), n, Config{})

			err := svc.NotifyUser(context.Background(), tt.userID, notification.KindOvertimeReviewed, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, n.calls)
				return
			}
			require.NoError(t, err)
			require.Len(t, n.calls, 1)
			assert.Equal(t, "juan@example.com", n.calls[0].recipients[0].Email)
		})
	}
}

func TestNotifyUnknownKind(t *testing.T) {
	svc := NewNotificationService(newUsers(), &recordingNotifier{}, Config{})

	err := svc.NotifyUser(context.Background(), "emp-user", "birthday", nil)
	assert.ErrorIs(t, err, notification.ErrUnknownKind)
}

func TestCircuitBreakerOpens(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	svc := NewNotificationService(newUsers(), n, Config{})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		err := svc.NotifyUser(ctx, "emp-user", notification.KindLeaveRequestReviewed, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp down")
	}

	err := svc.NotifyUser(ctx, "emp-user", notification.KindLeaveRequestReviewed, nil)
	assert.ErrorIs(t, err, notification.ErrNotifierUnavailable)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Len(t, n.calls, 10)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := n.Notify(context.Background(),
		[]notification.Recipient{{Email: "ana@example.com"}},
		notification.KindLeaveRequestSubmitted,
		notification.Payload{"request_id": "r-1"},
	)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"kind":"leave_request_submitted"`)
	assert.Contains(t, buf.String(), `"recipients":["ana@example.com"]`)
	assert.Contains(t, buf.String(), `"request_id":"r-1"`)
}
