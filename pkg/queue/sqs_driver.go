package queue

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/shashiranjanraj/shopfront/pkg/awsclient"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// sqsMaxBatch is the SQS limit for ReceiveMessage and DeleteMessageBatch.
const sqsMaxBatch = 10

// SQSAPI is the subset of *sqs.Client the driver calls.
type SQSAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, in *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

// SQSDriver sends to and polls one SQS queue.
type SQSDriver struct {
	client   SQSAPI
	queueURL string
	waitSecs int32
}

// NewSQSDriver builds a client from the shared AWS config.
func NewSQSDriver(ctx context.Context, queueURL string, waitSecs int32) (*SQSDriver, error) {
	if queueURL == "" {
		return nil, fmt.Errorf("queue/sqs: SQS_QUEUE_URL is not configured")
	}

	cfg, err := awsclient.Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue/sqs: %w", err)
	}
	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if ep := awsclient.Endpoint(); ep != nil {
			o.BaseEndpoint = ep
		}
	})
	return NewSQSDriverWithClient(client, queueURL, waitSecs), nil
}

func NewSQSDriverWithClient(client SQSAPI, queueURL string, waitSecs int32) *SQSDriver {
	return &SQSDriver{client: client, queueURL: queueURL, waitSecs: waitSecs}
}

func (d *SQSDriver) Name() string { return "sqs" }

func (d *SQSDriver) Send(ctx context.Context, body []byte) error {
	if len(body) == 0 {
		return ErrEmptyBody
	}
	_, err := d.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(d.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("queue/sqs: send: %w", err)
	}
	metrics.QueueMessages.WithLabelValues(d.Name(), "sent").Inc()
	return nil
}

// Receive long-polls for up to max messages (SQS caps a receive at 10).
func (d *SQSDriver) Receive(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		max = 1
	}
	if max > sqsMaxBatch {
		max = sqsMaxBatch
	}

	out, err := d.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(d.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     d.waitSecs,
	})
	if err != nil {
		return nil, fmt.Errorf("queue/sqs: receive: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, Message{
			ID:      aws.ToString(m.MessageId),
			Body:    []byte(aws.ToString(m.Body)),
			Receipt: aws.ToString(m.ReceiptHandle),
		})
	}
	metrics.QueueMessages.WithLabelValues(d.Name(), "received").Add(float64(len(msgs)))
	return msgs, nil
}

func (d *SQSDriver) Ack(ctx context.Context, msgs []Message) error {
	for start := 0; start < len(msgs); start += sqsMaxBatch {
		end := start + sqsMaxBatch
		if end > len(msgs) {
			end = len(msgs)
		}

		entries := make([]types.DeleteMessageBatchRequestEntry, 0, end-start)
		for i, m := range msgs[start:end] {
			entries = append(entries, types.DeleteMessageBatchRequestEntry{
				Id:            aws.String(strconv.Itoa(i)),
				ReceiptHandle: aws.String(m.Receipt),
			})
		}

		out, err := d.client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
			QueueUrl: aws.String(d.queueURL),
			Entries:  entries,
		})
		if err != nil {
			return fmt.Errorf("queue/sqs: ack: %w", err)
		}
		if len(out.Failed) > 0 {
			return fmt.Errorf("queue/sqs: ack: %d of %d deletes failed: %s",
				len(out.Failed), len(entries), aws.ToString(out.Failed[0].Message))
		}
		metrics.QueueMessages.WithLabelValues(d.Name(), "acked").Add(float64(len(entries)))
	}
	return nil
}
