// Package event is the in-process dispatcher connecting domain writes to
// their side effects. Services fire names like "listing.created" and stay
// unaware of who reacts; the boot wiring listens and feeds the realtime
// hub and the job queue. Handlers run synchronously on the firing
// goroutine, so a listing write has published its change before the HTTP
// response goes out.
package event

import "sync"

// Handler receives the fired payload.
type Handler func(payload any)

type registry struct {
	mu     sync.RWMutex
	byName map[string][]Handler
}

var events = &registry{byName: map[string][]Handler{}}

func (r *registry) listen(name string, h Handler) {
	r.mu.Lock()
	r.byName[name] = append(r.byName[name], h)
	r.mu.Unlock()
}

func (r *registry) fire(name string, payload any) {
	r.mu.RLock()
	// Snapshot of the slice header; concurrent Listens append past our
	// length and never touch the elements we read.
	hs := r.byName[name]
	r.mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

func (r *registry) reset() {
	r.mu.Lock()
	r.byName = map[string][]Handler{}
	r.mu.Unlock()
}

// Listen registers a handler for the named event.
func Listen(name string, h Handler) { events.listen(name, h) }

// Fire invokes every handler registered for name, in registration order.
func Fire(name string, payload any) { events.fire(name, payload) }

// Flush drops all handlers. Test teardown only.
func Flush() { events.reset() }
