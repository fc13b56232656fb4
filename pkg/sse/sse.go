// Package sse streams server-sent events, the change-feed transport for
// clients that cannot hold a WebSocket (older Android WebViews, strict
// proxies). One Stream wraps one response; the controller pumps events
// into it until Done fires.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// retryHint tells the browser how long to wait before reconnecting.
const retryHint = "retry: 5000\n\n"

// Stream is one open SSE response.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	done    <-chan struct{}
	closed  bool
}

// New prepares w for event streaming and returns the stream, or nil when
// the writer cannot flush (a buffering middleware got in the way).
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	// nginx buffers responses by default, which stalls the stream.
	h.Set("X-Accel-Buffering", "no")

	s := &Stream{w: w, flusher: flusher, done: r.Context().Done()}
	s.write([]byte(retryHint))
	return s
}

// Send emits one named event with a JSON payload.
func (s *Stream) Send(event string, data any) error {
	if s == nil || s.IsClosed() {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal %s event: %w", event, err)
	}
	s.write([]byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload)))
	return nil
}

// Comment emits a comment line. Browsers ignore it; proxies see traffic,
// so the connection stays up.
func (s *Stream) Comment(msg string) {
	if s == nil || s.IsClosed() {
		return
	}
	s.write([]byte(fmt.Sprintf(": %s\n\n", msg)))
}

// write pushes raw frames out and marks the stream closed on error.
func (s *Stream) write(frame []byte) {
	if _, err := s.w.Write(frame); err != nil {
		s.closed = true
		return
	}
	s.flusher.Flush()
}

// Done is closed when the client disconnects.
func (s *Stream) Done() <-chan struct{} {
	if s == nil {
		dead := make(chan struct{})
		close(dead)
		return dead
	}
	return s.done
}

// IsClosed reports whether the client is gone or a write failed.
func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	select {
	case <-s.done:
		s.closed = true
	default:
	}
	return s.closed
}
