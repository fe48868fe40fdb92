package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

type templateData struct {
	RecipientName string
	Payload       notification.Payload
}

// Renderer turns a notification kind and payload into an html body, one template per kind.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render returns the subject and html body for one recipient.
func (r *Renderer) Render(kind notification.Kind, to notification.Recipient, payload notification.Payload) (string, string, error) {
	tmpl := r.templates.Lookup(string(kind) + ".html")
	if tmpl == nil {
		return "", "", notification.ErrUnknownKind
	}

	name := to.Name
	if name == "" {
		name = to.Email
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, templateData{RecipientName: name, Payload: payload}); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}
	return kind.Subject(), body.String(), nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends one html email per recipient over SMTP.
type SMTPNotifier struct {
	cfg      config.SMTPConfig
	renderer *Renderer
	send     sendFunc
	backoff  time.Duration
}

func NewSMTPNotifier(cfg config.SMTPConfig, renderer *Renderer) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:      cfg,
		renderer: renderer,
		send:     smtp.SendMail,
		backoff:  time.Second,
	}
}

// Notify implements notification.Notifier.
func (s *SMTPNotifier) Notify(ctx context.Context, recipients []notification.Recipient, kind notification.Kind, payload notification.Payload) error {
	var errs []error
	for _, to := range recipients {
		subject, body, err := s.renderer.Render(kind, to, payload)
		if err != nil {
			return err
		}
		if err := s.sendHTML(ctx, to.Email, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *SMTPNotifier) sendHTML(ctx context.Context, to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1s, 2s, 4s
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("email to %s cancelled: %w", to, ctx.Err())
			case <-time.After(s.backoff << (attempt - 1)):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
