package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shashiranjanraj/shopfront/pkg/queue"
)

func send(t *testing.T, d queue.Driver, bodies ...string) {
	t.Helper()
	for _, b := range bodies {
		require.NoError(t, d.Send(context.Background(), []byte(b)))
	}
}

func TestMemoryDriver_ReceiveUpToMax(t *testing.T) {
	d := queue.NewMemoryDriver(10 * time.Millisecond)
	send(t, d, "1", "2", "3", "4", "5", "6", "7")

	batch, err := d.Receive(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, batch, 5)
	assert.Equal(t, "1", string(batch[0].Body))
	assert.Equal(t, 2, d.Len())
}

func TestMemoryDriver_ReceiveTimesOutEmpty(t *testing.T) {
	d := queue.NewMemoryDriver(10 * time.Millisecond)

	batch, err := d.Receive(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestMemoryDriver_RejectsEmptyBody(t *testing.T) {
	d := queue.NewMemoryDriver(time.Millisecond)
	assert.ErrorIs(t, d.Send(context.Background(), nil), queue.ErrEmptyBody)
}

func TestConsumer_RunOnceAcksSuccessfulBatch(t *testing.T) {
	d := queue.NewMemoryDriver(10 * time.Millisecond)
	send(t, d, "a", "b", "c")

	var got []string
	c := queue.NewConsumer(d, func(_ context.Context, msgs []queue.Message) error {
		for _, m := range msgs {
			got = append(got, string(m.Body))
		}
		return nil
	}, queue.WithBatchSize(2))

	n, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, got)

	failed, err := c.Failed().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestConsumer_RecordsFailedBatch(t *testing.T) {
	d := queue.NewMemoryDriver(10 * time.Millisecond)
	send(t, d, "x", "y")

	store := queue.NewMemoryFailedStore()
	c := queue.NewConsumer(d, func(context.Context, []queue.Message) error {
		return errors.New("store unavailable")
	}, queue.WithFailedStore(store))

	_, err := c.RunOnce(context.Background())
	require.Error(t, err)

	failed, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "memory", failed[0].Driver)
	assert.Equal(t, []string{"x", "y"}, failed[0].Bodies)
	assert.Equal(t, "store unavailable", failed[0].Err)
}

func TestConsumer_RunProcessesBatchesUntilCancelled(t *testing.T) {
	d := queue.NewMemoryDriver(5 * time.Millisecond)
	for i := 0; i < 12; i++ {
		send(t, d, fmt.Sprint(i))
	}

	var mu sync.Mutex
	var sizes []int
	seen := make(chan struct{}, 12)

	c := queue.NewConsumer(d, func(_ context.Context, msgs []queue.Message) error {
		mu.Lock()
		sizes = append(sizes, len(msgs))
		mu.Unlock()
		for range msgs {
			seen <- struct{}{}
		}
		return nil
	}, queue.WithBatchSize(5), queue.WithWorkers(2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	for i := 0; i < 12; i++ {
		select {
		case <-seen:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 12 messages processed", i)
		}
	}
	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	for _, s := range sizes {
		assert.LessOrEqual(t, s, 5)
	}
}

func TestGormFailedStore_RoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:failed_batches?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	store, err := queue.NewGormFailedStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, queue.FailedBatch{
		Driver:     "sqs",
		MessageIDs: []string{"m1", "m2"},
		Bodies:     []string{`{"id":"1"}`, `{"id":"2"}`},
		Err:        "boom",
		FailedAt:   time.Now(),
	}))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"m1", "m2"}, got[0].MessageIDs)
	assert.Equal(t, "boom", got[0].Err)
}

type fakeSQS struct {
	sent     []string
	inbox    []types.Message
	deleted  []string
	maxAsked int32
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sent = append(f.sent, aws.ToString(in.MessageBody))
	return &sqs.SendMessageOutput{MessageId: aws.String("id")}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.maxAsked = in.MaxNumberOfMessages
	n := int(in.MaxNumberOfMessages)
	if n > len(f.inbox) {
		n = len(f.inbox)
	}
	out := f.inbox[:n]
	f.inbox = f.inbox[n:]
	return &sqs.ReceiveMessageOutput{Messages: out}, nil
}

func (f *fakeSQS) DeleteMessageBatch(_ context.Context, in *sqs.DeleteMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error) {
	for _, e := range in.Entries {
		f.deleted = append(f.deleted, aws.ToString(e.ReceiptHandle))
	}
	return &sqs.DeleteMessageBatchOutput{}, nil
}

func TestSQSDriver_SendReceiveAck(t *testing.T) {
	fake := &fakeSQS{}
	for i := 0; i < 12; i++ {
		fake.inbox = append(fake.inbox, types.Message{
			MessageId:     aws.String(fmt.Sprintf("m%d", i)),
			Body:          aws.String(fmt.Sprintf(`{"n":%d}`, i)),
			ReceiptHandle: aws.String(fmt.Sprintf("r%d", i)),
		})
	}
	d := queue.NewSQSDriverWithClient(fake, "https://sqs.local/queue", 0)
	ctx := context.Background()

	require.NoError(t, d.Send(ctx, []byte(`{"id":"1"}`)))
	assert.Equal(t, []string{`{"id":"1"}`}, fake.sent)

	msgs, err := d.Receive(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, int32(10), fake.maxAsked, "receive is capped at the SQS limit")
	require.Len(t, msgs, 10)
	assert.Equal(t, "m0", msgs[0].ID)
	assert.Equal(t, "r0", msgs[0].Receipt)

	require.NoError(t, d.Ack(ctx, msgs))
	assert.Len(t, fake.deleted, 10)
}
