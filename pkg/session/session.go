// Package session keeps small per-visitor state in Redis behind a cookie.
// The marketplace uses it for guests' favorite listings, which survive
// until the visitor signs up.
//
//	sess := session.FromCtx(r)
//	sess.Set("favorites", ids)
//	sess.Save(w)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/cache"
)

// Options configures the session cookie and store TTL.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions suits local development; production sets Secure.
func DefaultOptions() Options {
	return Options{
		CookieName: "agriconnect_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		Secure:     false,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

// Session is the per-request handle. Mutations mark it dirty; nothing is
// written back until Save.
type Session struct {
	id          string
	opts        Options
	data        map[string]any
	dirty       bool
	invalidated bool
}

func newID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("session: random id: %v", err))
	}
	return hex.EncodeToString(b)
}

func key(id string) string { return "agriconnect:session:" + id }

// open loads the stored payload for id, or an empty map for unknown and
// expired sessions.
func open(id string) map[string]any {
	var data map[string]any
	if cache.Get(key(id), &data) && data != nil {
		return data
	}
	return map[string]any{}
}

// Set stores value under k. Values round-trip through JSON, so numbers
// come back as float64.
func (s *Session) Set(k string, value any) {
	s.data[k] = value
	s.dirty = true
	s.invalidated = false
}

// Get reads the value under k.
func (s *Session) Get(k string) (any, bool) {
	v, ok := s.data[k]
	return v, ok
}

// Delete removes k.
func (s *Session) Delete(k string) {
	delete(s.data, k)
	s.dirty = true
}

// Invalidate empties the session. The next Save drops the Redis entry
// and expires the cookie; used on signout.
func (s *Session) Invalidate() {
	s.data = map[string]any{}
	s.invalidated = true
	s.dirty = true
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Save writes the session to Redis and refreshes the cookie. A clean
// session is a no-op, so handlers can call Save unconditionally.
func (s *Session) Save(w http.ResponseWriter) error {
	if !s.dirty {
		return nil
	}

	if s.invalidated {
		_ = cache.Forget(key(s.id))
		http.SetCookie(w, s.cookie("", -1))
		s.dirty = false
		return nil
	}

	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := cache.Set(key(s.id), json.RawMessage(raw), s.opts.TTL); err != nil {
		return fmt.Errorf("session: store: %w", err)
	}

	http.SetCookie(w, s.cookie(s.id, int(s.opts.TTL.Seconds())))
	s.dirty = false
	return nil
}

func (s *Session) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     s.opts.Path,
		MaxAge:   maxAge,
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	}
}

// Middleware resolves the visitor's session from the cookie, minting a
// fresh id when there is none, and parks it in the request context.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts}
			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				sess.id = cookie.Value
				sess.data = open(sess.id)
			} else {
				sess.id = newID()
				sess.data = map[string]any{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromCtx returns the request's session. Requests outside the middleware
// get a detached session that saves nowhere useful but never nils out.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]any{}, opts: DefaultOptions()}
}
