package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Buffering knobs for the Mongo sink. A full buffer drops records rather
// than block a request.
const (
	sinkBuffer   = 4096
	sinkBatch    = 50
	sinkInterval = 2 * time.Second
)

// logEntry is the document shape stored per record.
type logEntry struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	Source    string    `bson:"source,omitempty"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// MongoHandler is an slog.Handler that batches records into a MongoDB
// collection off the request path. Records are enqueued without blocking; a
// single goroutine drains the queue with InsertMany. Insert failures are
// ignored — the stdout handler remains the source of truth.
type MongoHandler struct {
	client *mongo.Client
	col    *mongo.Collection
	queue  chan logEntry
	done   chan struct{}

	attrs []slog.Attr
	group string
}

// NewMongoHandler connects to uri and targets db.collection. Close must be
// called on shutdown so queued entries flush.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)

	// Newest-first queries are the only access pattern.
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "time", Value: -1}},
	})

	h := &MongoHandler{
		client: client,
		col:    col,
		queue:  make(chan logEntry, sinkBuffer),
		done:   make(chan struct{}),
	}
	go h.drain()
	return h, nil
}

func (h *MongoHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	entry := logEntry{
		Time:  r.Time,
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: bson.M{},
	}

	for _, a := range h.attrs {
		entry.absorb(a, h.group)
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.absorb(a, h.group)
		return true
	})

	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		if frame, _ := frames.Next(); frame.File != "" {
			entry.Source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
	}

	select {
	case h.queue <- entry:
	default:
		// Queue full: drop. Logging never blocks a request.
	}
	return nil
}

// absorb files one attr into the entry, lifting request_id into the
// dedicated field so it can be indexed separately.
func (e *logEntry) absorb(a slog.Attr, group string) {
	if a.Key == "request_id" {
		e.RequestID = a.Value.String()
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	e.Attrs[key] = a.Value.Any()
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.group = strings.TrimPrefix(h.group+"."+name, ".")
	return &clone
}

// drain flushes queued entries in batches, on size or on the tick,
// whichever comes first.
func (h *MongoHandler) drain() {
	tick := time.NewTicker(sinkInterval)
	defer tick.Stop()

	batch := make([]interface{}, 0, sinkBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = h.col.InsertMany(ctx, batch)
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-h.queue:
			batch = append(batch, entry)
			if len(batch) >= sinkBatch {
				flush()
			}
		case <-tick.C:
			flush()
		case <-h.done:
			for {
				select {
				case entry := <-h.queue:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close flushes what is queued and disconnects. Safe to call twice.
func (h *MongoHandler) Close() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.client.Disconnect(ctx)
}
