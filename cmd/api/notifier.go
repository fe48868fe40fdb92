package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/queue"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
)

// newAWSConfig loads the default credential chain. With an endpoint override
// (LocalStack) static test credentials are used instead.
func newAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	if cfg.Endpoint != "" {
		slog.Info("Routing AWS calls to custom endpoint", "endpoint", cfg.Endpoint)
		return awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
}

// newNotifier builds the delivery backend selected by NOTIFY_BACKEND.
func newNotifier(ctx context.Context, cfg *config.Config) (notification.Notifier, error) {
	switch cfg.Notifier.Backend {
	case "log":
		return notificationService.NewLogNotifier(slog.Default()), nil

	case "smtp":
		renderer, err := email.NewRenderer()
		if err != nil {
			return nil, err
		}
		return email.NewSMTPNotifier(cfg.SMTP, renderer), nil

	case "ses":
		renderer, err := email.NewRenderer()
		if err != nil {
			return nil, err
		}
		awsCfg, err := newAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS config: %w", err)
		}
		client := ses.NewFromConfig(awsCfg, func(o *ses.Options) {
			if cfg.AWS.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			}
		})
		return email.NewSESNotifier(client, cfg.AWS.SESSender, renderer), nil

	case "sqs":
		awsCfg, err := newAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS config: %w", err)
		}
		client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.AWS.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			}
		})
		return queue.NewSQSPublisher(client, cfg.AWS.SQSQueueURL), nil

	default:
		return nil, fmt.Errorf("unknown notifier backend %q", cfg.Notifier.Backend)
	}
}
