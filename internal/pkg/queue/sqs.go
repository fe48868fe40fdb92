package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/telemetry"
)

// SQSClient sendMessage interface based on aws sdk
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Envelope is the message body consumers of the notification queue receive.
type Envelope struct {
	Kind       notification.Kind        `json:"kind"`
	Recipients []notification.Recipient `json:"recipients"`
	Payload    notification.Payload     `json:"payload"`
	Subject    string                   `json:"subject"`
	CreatedAt  time.Time                `json:"created_at"`
}

// SQSPublisher hands notifications to a queue; delivery happens downstream.
type SQSPublisher struct {
	client   SQSClient
	queueURL string
	now      func() time.Time
}

func NewSQSPublisher(client SQSClient, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL, now: time.Now}
}

// Notify implements notification.Notifier.
func (p *SQSPublisher) Notify(ctx context.Context, recipients []notification.Recipient, kind notification.Kind, payload notification.Payload) error {
	body, err := json.Marshal(Envelope{
		Kind:       kind,
		Recipients: recipients,
		Payload:    payload,
		Subject:    kind.Subject(),
		CreatedAt:  p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{
		"EventType": {
			DataType:    aws.String("String"),
			StringValue: aws.String(string(kind)),
		},
	}
	telemetry.InjectTraceContext(ctx, attrs)

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send message to notification queue: %w", err)
	}
	return nil
}
