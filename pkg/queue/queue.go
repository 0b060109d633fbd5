// Package queue carries Ingest Messages from the import parser to the batch
// consumer.
//
// Usage:
//
//	d, _ := queue.NewSQSDriver(ctx, config.QueueURL())
//	d.Send(ctx, body)
//
//	c := queue.NewConsumer(d, handler, queue.WithBatchSize(5))
//	c.Run(ctx) // until ctx is cancelled
package queue

import (
	"context"
	"errors"
)

// Message is one received queue message.
type Message struct {
	// ID is the driver's message id (SQS MessageId, generated for others).
	ID string
	// Body is the raw payload as sent.
	Body []byte
	// Receipt is the driver token needed to acknowledge the message.
	Receipt string
}

// Driver is the queue backend.
type Driver interface {
	// Name identifies the driver in logs and metrics.
	Name() string

	// Send enqueues body.
	Send(ctx context.Context, body []byte) error

	// Receive returns up to max messages. It waits a driver-specific time for
	// the first message and returns an empty slice when none arrived.
	Receive(ctx context.Context, max int) ([]Message, error)

	// Ack removes successfully processed messages from the queue.
	Ack(ctx context.Context, msgs []Message) error
}

// Handler processes one batch. A non-nil error fails the whole batch.
type Handler func(ctx context.Context, msgs []Message) error

// ErrEmptyBody is returned by Send for an empty payload.
var ErrEmptyBody = errors.New("queue: empty message body")
