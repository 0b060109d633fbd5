package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sinkBuffer    = 4096
	sinkBatch     = 50
	sinkFlushTick = 2 * time.Second
)

// LogEntry is one log line as stored in MongoDB. Catalogue identifiers are
// lifted out of attrs so operators can index and filter on them.
type LogEntry struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	ProductID string    `bson:"product_id,omitempty"`
	MessageID string    `bson:"message_id,omitempty"`
	Key       string    `bson:"key,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// insertFunc writes a batch of entries; the mongo collection in production.
type insertFunc func(ctx context.Context, docs []any) error

// MongoHandler is a slog.Handler that buffers entries and writes them in
// batches from one goroutine. A full buffer drops entries rather than
// stalling the request that logged them.
type MongoHandler struct {
	shared *sinkState
	attrs  []slog.Attr
	group  string
}

type sinkState struct {
	insert     insertFunc
	disconnect func(context.Context) error
	entries    chan LogEntry
	stop       chan struct{}
	stopped    chan struct{}
	once       sync.Once
}

// NewMongoHandler connects to uri, ensures the query indexes exist and
// starts flushing.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("logger/mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger/mongo: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
		{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "time", Value: -1}}},
	})

	insert := func(ctx context.Context, docs []any) error {
		_, err := col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
		return err
	}
	return newMongoHandler(insert, client.Disconnect), nil
}

func newMongoHandler(insert insertFunc, disconnect func(context.Context) error) *MongoHandler {
	s := &sinkState{
		insert:     insert,
		disconnect: disconnect,
		entries:    make(chan LogEntry, sinkBuffer),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go s.run()
	return &MongoHandler{shared: s}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelInfo }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Time:  r.Time,
		Level: r.Level.String(),
		Msg:   r.Message,
	}

	collect := func(a slog.Attr) bool {
		if h.group == "" {
			switch a.Key {
			case "request_id":
				entry.RequestID = a.Value.String()
				return true
			case "product_id":
				entry.ProductID = a.Value.String()
				return true
			case "message_id":
				entry.MessageID = a.Value.String()
				return true
			case "key":
				entry.Key = a.Value.String()
				return true
			}
		}
		if entry.Attrs == nil {
			entry.Attrs = bson.M{}
		}
		entry.Attrs[h.group+a.Key] = a.Value.Resolve().Any()
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	select {
	case h.shared.entries <- entry:
	default:
	}
	return nil
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

// Close flushes buffered entries and disconnects. Safe to call twice.
func (h *MongoHandler) Close() {
	h.shared.once.Do(func() {
		close(h.shared.stop)
		<-h.shared.stopped

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if h.shared.disconnect != nil {
			_ = h.shared.disconnect(ctx)
		}
	})
}

func (s *sinkState) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(sinkFlushTick)
	defer ticker.Stop()

	batch := make([]any, 0, sinkBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.insert(ctx, batch)
		batch = make([]any, 0, sinkBatch)
	}

	for {
		select {
		case e := <-s.entries:
			batch = append(batch, e)
			if len(batch) >= sinkBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stop:
			for {
				select {
				case e := <-s.entries:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}

// MultiHandler sends each record to every wrapped handler.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: hs}
}
