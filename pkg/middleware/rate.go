// Package middleware provides the HTTP middleware stack shared by every
// AgriConnect route: auth, CORS, rate limiting, panic recovery, logging.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/response"
)

// ipWindow is one client's fixed-window counter.
type ipWindow struct {
	hits     int
	openedAt time.Time
}

// limiter holds per-IP windows for a single RateLimit instance, so two
// limits mounted on different route groups do not share counters.
type limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	clients map[string]*ipWindow
}

// take counts one request for ip and reports whether it is still within
// the window's budget.
func (l *limiter) take(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[ip]
	if !ok || now.Sub(w.openedAt) >= l.window {
		w = &ipWindow{openedAt: now}
		l.clients[ip] = w
	}
	w.hits++
	return w.hits <= l.max
}

// sweep drops windows that have lapsed, bounding memory on long-running
// servers that see many distinct client IPs.
func (l *limiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for now := range ticker.C {
		l.mu.Lock()
		for ip, w := range l.clients {
			if now.Sub(w.openedAt) >= l.window {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit caps each client IP at max requests per window and answers
// 429 with a Retry-After hint beyond that. The per-route signin throttle
// is separate; this is the blanket cap on the whole API.
//
//	r.Use(middleware.RateLimit(200, time.Minute))
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	l := &limiter{max: max, window: window, clients: make(map[string]*ipWindow)}
	go l.sweep()

	retryAfter := strconv.Itoa(int(window / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.take(clientAddr(r), time.Now()) {
				w.Header().Set("Retry-After", retryAfter)
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
