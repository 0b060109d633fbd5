package queue

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// MemoryDriver is an in-process, channel-backed queue. Not durable; Ack is a
// no-op because Receive already removed the messages.
type MemoryDriver struct {
	ch   chan Message
	wait time.Duration
	seq  atomic.Int64
}

// NewMemoryDriver creates an in-memory queue buffering up to 1000 messages.
// Receive waits at most wait for the first message.
func NewMemoryDriver(wait time.Duration) *MemoryDriver {
	return &MemoryDriver{ch: make(chan Message, 1000), wait: wait}
}

func (d *MemoryDriver) Name() string { return "memory" }

func (d *MemoryDriver) Send(ctx context.Context, body []byte) error {
	if len(body) == 0 {
		return ErrEmptyBody
	}

	id := "mem-" + strconv.FormatInt(d.seq.Add(1), 10)
	msg := Message{ID: id, Body: append([]byte(nil), body...), Receipt: id}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case d.ch <- msg:
		metrics.QueueMessages.WithLabelValues(d.Name(), "sent").Inc()
		return nil
	}
}

func (d *MemoryDriver) Receive(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		max = 1
	}

	timer := time.NewTimer(d.wait)
	defer timer.Stop()

	var out []Message
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case msg := <-d.ch:
		out = append(out, msg)
	}

	for len(out) < max {
		select {
		case msg := <-d.ch:
			out = append(out, msg)
		default:
			metrics.QueueMessages.WithLabelValues(d.Name(), "received").Add(float64(len(out)))
			return out, nil
		}
	}
	metrics.QueueMessages.WithLabelValues(d.Name(), "received").Add(float64(len(out)))
	return out, nil
}

func (d *MemoryDriver) Ack(_ context.Context, msgs []Message) error {
	metrics.QueueMessages.WithLabelValues(d.Name(), "acked").Add(float64(len(msgs)))
	return nil
}

// Len reports how many messages are waiting.
func (d *MemoryDriver) Len() int { return len(d.ch) }
