package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/workerpool"
)

// Consumer polls a Driver in batches and runs each batch through a Handler
// on a bounded worker pool. Each batch is independent: a failing batch is
// recorded and left unacknowledged, other batches proceed.
type Consumer struct {
	driver    Driver
	handler   Handler
	failed    FailedStore
	batchSize int
	workers   int
	idle      time.Duration
}

// Option configures a Consumer.
type Option func(*Consumer)

func WithBatchSize(n int) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

func WithWorkers(n int) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithFailedStore(s FailedStore) Option {
	return func(c *Consumer) {
		if s != nil {
			c.failed = s
		}
	}
}

// WithIdleBackoff sets the pause after a receive error.
func WithIdleBackoff(d time.Duration) Option {
	return func(c *Consumer) { c.idle = d }
}

func NewConsumer(d Driver, h Handler, opts ...Option) *Consumer {
	c := &Consumer{
		driver:    d,
		handler:   h,
		failed:    NewMemoryFailedStore(),
		batchSize: 5,
		workers:   2,
		idle:      500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Failed exposes the failed batch store.
func (c *Consumer) Failed() FailedStore { return c.failed }

// Run polls until ctx is cancelled, then waits for in-flight batches.
func (c *Consumer) Run(ctx context.Context) error {
	pool := workerpool.New(c.workers)
	defer pool.Shutdown()

	logger.Info("queue: consumer started",
		"driver", c.driver.Name(), "batch_size", c.batchSize, "workers", c.workers)

	for {
		if ctx.Err() != nil {
			logger.Info("queue: consumer stopping", "driver", c.driver.Name())
			return nil
		}

		batch, err := c.driver.Receive(ctx, c.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("queue: receive failed", "driver", c.driver.Name(), "error", err)
			sleep(ctx, c.idle)
			continue
		}
		if len(batch) == 0 {
			continue
		}

		// Batches already received are finished even if ctx is cancelled
		// meanwhile, so they are not half-applied.
		batchCtx := context.WithoutCancel(ctx)
		if err := pool.SubmitWait(func() { _ = c.process(batchCtx, batch) }); err != nil {
			if errors.Is(err, workerpool.ErrPoolClosed) {
				return nil
			}
			return fmt.Errorf("queue: submit batch: %w", err)
		}
	}
}

// RunOnce receives and processes a single batch synchronously. It returns the
// number of messages received and the handler's error.
func (c *Consumer) RunOnce(ctx context.Context) (int, error) {
	batch, err := c.driver.Receive(ctx, c.batchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}
	return len(batch), c.process(ctx, batch)
}

func (c *Consumer) process(ctx context.Context, batch []Message) error {
	start := time.Now()

	if err := c.handler(ctx, batch); err != nil {
		metrics.RecordBatch("failed", start)
		logger.Error("queue: batch failed",
			"driver", c.driver.Name(), "size", len(batch), "error", err)
		c.recordFailure(ctx, batch, err)
		return err
	}

	metrics.RecordBatch("success", start)
	if err := c.driver.Ack(ctx, batch); err != nil {
		logger.Error("queue: ack failed", "driver", c.driver.Name(), "error", err)
		return err
	}
	return nil
}

func (c *Consumer) recordFailure(ctx context.Context, batch []Message, cause error) {
	fb := FailedBatch{
		Driver:   c.driver.Name(),
		Err:      cause.Error(),
		FailedAt: time.Now(),
	}
	for _, m := range batch {
		fb.MessageIDs = append(fb.MessageIDs, m.ID)
		fb.Bodies = append(fb.Bodies, string(m.Body))
	}
	if err := c.failed.Record(ctx, fb); err != nil {
		logger.Error("queue: record failed batch", "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
