package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

// SESClient is the subset of the SES API the notifier uses.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends notifications through Amazon SES.
type SESNotifier struct {
	client   SESClient
	sender   string
	renderer *Renderer
}

func NewSESNotifier(client SESClient, sender string, renderer *Renderer) *SESNotifier {
	return &SESNotifier{client: client, sender: sender, renderer: renderer}
}

// Notify implements notification.Notifier.
func (s *SESNotifier) Notify(ctx context.Context, recipients []notification.Recipient, kind notification.Kind, payload notification.Payload) error {
	tracer := otel.Tracer("ses-notifier")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("notification.kind", string(kind)),
		attribute.Int("notification.recipients", len(recipients)),
	)

	var errs []error
	for _, to := range recipients {
		subject, body, err := s.renderer.Render(kind, to, payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render failed")
			return err
		}

		input := &ses.SendEmailInput{
			Source: aws.String(s.sender),
			Destination: &types.Destination{
				ToAddresses: []string{to.Email},
			},
			Message: &types.Message{
				Subject: &types.Content{
					Data: aws.String(subject),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		}

		if _, err := s.client.SendEmail(ctx, input); err != nil {
			errs = append(errs, fmt.Errorf("failed to send email to %s: %w", to.Email, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return err
	}
	return nil
}
