// Package logger wraps log/slog with the two things every handler in this
// service needs: an environment-appropriate default handler and a
// per-request logger that already carries the request ID.
//
//	log := logger.WithCtx(r.Context())
//	log.Info("listing created", "listing_id", listing.ID, "farmer_id", listing.FarmerID)
//	// → time=... level=INFO msg="listing created" request_id=a1b2c3d4 listing_id=42 farmer_id=7
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/agriconnect-ug/agriconnect/config"
)

// L is the process-wide logger. Handlers should prefer WithCtx so their
// lines carry the request ID.
var L *slog.Logger

func init() {
	Reset()
}

// Reset rebuilds L from the current environment. Production gets JSON for
// the log aggregator at INFO; everything else gets readable text at DEBUG.
func Reset() {
	L = slog.New(stdoutHandler())
	slog.SetDefault(L)
}

func stdoutHandler() slog.Handler {
	if env := config.AppEnv(); env == "production" || env == "prod" {
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// EnableMongo tees every record into the async MongoDB sink in addition to
// stdout. Boot calls this once when MONGO_LOG_URI is set; the returned
// handler must be Closed on shutdown so buffered records flush.
func EnableMongo(uri, db, collection string) (*MongoHandler, error) {
	sink, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return nil, err
	}
	L = slog.New(tee{stdoutHandler(), sink})
	slog.SetDefault(L)
	return sink, nil
}

// ctxKey keys the per-request logger inside a context.
type ctxKey struct{}

// InjectLogger stores a request-tagged logger in ctx. The Logger middleware
// is the only expected caller.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// WithCtx returns the logger stored by the Logger middleware, tagged with
// request_id. Outside a request (jobs, scheduler, boot) it returns L.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// Package-level shorthands on the base logger, for code that runs outside
// a request.

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }

// tee fans a record out to every handler that wants it.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
