package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// RedisDriver is a list-backed queue. Send does LPUSH; Receive moves
// messages onto a processing list (BLMOVE/LMOVE) so a crashed consumer
// does not lose them; Ack removes them from the processing list.
type RedisDriver struct {
	rdb        *redis.Client
	key        string
	processing string
	wait       time.Duration
}

// NewRedisDriver creates a driver on key. Pass the shared *redis.Client.
func NewRedisDriver(rdb *redis.Client, key string, wait time.Duration) *RedisDriver {
	return &RedisDriver{
		rdb:        rdb,
		key:        key,
		processing: key + ":processing",
		wait:       wait,
	}
}

func (d *RedisDriver) Name() string { return "redis" }

func (d *RedisDriver) Send(ctx context.Context, body []byte) error {
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if err := d.rdb.LPush(ctx, d.key, body).Err(); err != nil {
		return fmt.Errorf("queue/redis: send: %w", err)
	}
	metrics.QueueMessages.WithLabelValues(d.Name(), "sent").Inc()
	return nil
}

func (d *RedisDriver) Receive(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		max = 1
	}

	first, err := d.rdb.BLMove(ctx, d.key, d.processing, "RIGHT", "LEFT", d.wait).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // timed out, queue empty
	}
	if err != nil {
		return nil, fmt.Errorf("queue/redis: receive: %w", err)
	}

	out := []Message{d.message(first)}
	for len(out) < max {
		body, err := d.rdb.LMove(ctx, d.key, d.processing, "RIGHT", "LEFT").Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("queue/redis: receive: %w", err)
		}
		out = append(out, d.message(body))
	}

	metrics.QueueMessages.WithLabelValues(d.Name(), "received").Add(float64(len(out)))
	return out, nil
}

func (d *RedisDriver) message(body string) Message {
	return Message{ID: uuid.NewString(), Body: []byte(body), Receipt: body}
}

func (d *RedisDriver) Ack(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	pipe := d.rdb.Pipeline()
	for _, m := range msgs {
		pipe.LRem(ctx, d.processing, 1, m.Receipt)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue/redis: ack: %w", err)
	}
	metrics.QueueMessages.WithLabelValues(d.Name(), "acked").Add(float64(len(msgs)))
	return nil
}
