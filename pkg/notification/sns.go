package notification

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/shashiranjanraj/shopfront/pkg/awsclient"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// SNSAPI is the subset of *sns.Client the publisher calls.
type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes to an SNS topic.
type SNSPublisher struct {
	client SNSAPI
}

func NewSNSPublisher(ctx context.Context) (*SNSPublisher, error) {
	cfg, err := awsclient.Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("notification/sns: %w", err)
	}
	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		if ep := awsclient.Endpoint(); ep != nil {
			o.BaseEndpoint = ep
		}
	})
	return NewSNSPublisherWithClient(client), nil
}

func NewSNSPublisherWithClient(client SNSAPI) *SNSPublisher {
	return &SNSPublisher{client: client}
}

func (p *SNSPublisher) Publish(ctx context.Context, topic, subject, message string) error {
	if topic == "" {
		return observe("sns", fmt.Errorf("notification/sns: SNS_TOPIC_ARN is not configured"))
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topic),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return observe("sns", fmt.Errorf("notification/sns: publish: %w", err))
	}

	logger.WithCtx(ctx).Info("notification: published",
		"driver", "sns", "topic", topic, "message_id", aws.ToString(out.MessageId))
	return observe("sns", nil)
}
