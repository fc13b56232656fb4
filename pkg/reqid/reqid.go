// Package reqid tags every HTTP request with an ID that travels through
// the context, the X-Request-ID response header, and (via logger.WithCtx)
// every log line the request produces.
package reqid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header carries the request ID on the wire, both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// New returns a fresh request ID.
func New() string { return uuid.NewString() }

// WithValue returns ctx carrying the id.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx returns the request ID in ctx, or "" when there is none.
func FromCtx(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Middleware assigns the request its ID. An incoming X-Request-ID wins so
// a gateway in front of the service can correlate its own traces; otherwise
// a new one is minted. The ID is echoed on the response.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if id == "" {
				id = New()
			}
			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithValue(r.Context(), id)))
		})
	}
}
