// Package realtime fans out row-change events to subscribers.
//
// Repositories publish a Change whenever a row is inserted, updated, or
// deleted; interested parties (the live listing snapshot, WebSocket and SSE
// clients) hold a Subscription filtered by table and, optionally, by row id
// or a published attribute.
//
//	sub := hub.Subscribe(realtime.Filter{Table: "listings"})
//	defer sub.Close()
//	for change := range sub.Events() {
//	    // apply change
//	}
//
// Delivery is best effort: events arrive in publish order per subscriber,
// but a slow subscriber whose buffer is full loses the event. There is no
// sequence numbering or replay.
package realtime

import (
	"sync"

	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

// Op is the kind of row change.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Change is one row-level mutation. Record carries the full new row for
// inserts and updates and is nil for deletes. Attrs carries flat string
// attributes of the row used only for subscription filtering; it is not
// serialized to transports.
type Change struct {
	Table  string            `json:"table"`
	Op     Op                `json:"op"`
	ID     uint              `json:"id"`
	Record any               `json:"record,omitempty"`
	Attrs  map[string]string `json:"-"`
}

// Filter selects which changes a subscription receives. Table is required.
// ID restricts to a single row; Column/Value restrict on a published
// attribute (e.g. Column "buyer_id", Value "42").
type Filter struct {
	Table  string
	ID     uint
	Column string
	Value  string
}

func (f Filter) matches(c Change) bool {
	if f.Table != c.Table {
		return false
	}
	if f.ID != 0 && f.ID != c.ID {
		return false
	}
	if f.Column != "" && c.Attrs[f.Column] != f.Value {
		return false
	}
	return true
}

// subscriptionBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing events.
const subscriptionBuffer = 256

// Subscription is one registered listener. Close is idempotent and must be
// called when done; the event channel is closed on Close and on hub Stop.
type Subscription struct {
	hub    *Hub
	filter Filter
	ch     chan Change
	once   sync.Once
}

// Events returns the receive-only change stream.
func (s *Subscription) Events() <-chan Change { return s.ch }

// Close unregisters the subscription and closes its event channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		select {
		case s.hub.unsubscribe <- s:
		case <-s.hub.stop:
		}
	})
}

// Hub owns all subscriptions and serializes publish/subscribe through a
// single goroutine, the same shape as a chat-room hub.
type Hub struct {
	subscribers map[*Subscription]bool
	publish     chan Change
	subscribe   chan *Subscription
	unsubscribe chan *Subscription
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewHub creates a Hub. Call hub.Run() in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscription]bool),
		publish:     make(chan Change, 256),
		subscribe:   make(chan *Subscription),
		unsubscribe: make(chan *Subscription),
		stop:        make(chan struct{}),
	}
}

// Run processes subscriptions and published changes until Stop. It owns
// the subscriber set, so it must run in a goroutine of its own.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.subscribe:
			h.subscribers[sub] = true
			logger.Debug("realtime: subscribed", "table", sub.filter.Table, "total", len(h.subscribers))

		case sub := <-h.unsubscribe:
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.ch)
				logger.Debug("realtime: unsubscribed", "table", sub.filter.Table, "total", len(h.subscribers))
			}

		case change := <-h.publish:
			for sub := range h.subscribers {
				if !sub.filter.matches(change) {
					continue
				}
				select {
				case sub.ch <- change:
				default:
					// Buffer full — drop this event for this subscriber.
					logger.Warn("realtime: subscriber lagging, event dropped",
						"table", change.Table, "op", change.Op, "id", change.ID)
				}
			}

		case <-h.stop:
			for sub := range h.subscribers {
				delete(h.subscribers, sub)
				close(sub.ch)
			}
			return
		}
	}
}

// Stop shuts the hub down and closes every subscription channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Subscribe registers a new filtered subscription. Subscribing against a
// stopped hub returns a subscription whose channel is already closed.
func (h *Hub) Subscribe(f Filter) *Subscription {
	sub := &Subscription{
		hub:    h,
		filter: f,
		ch:     make(chan Change, subscriptionBuffer),
	}
	select {
	case h.subscribe <- sub:
	case <-h.stop:
		close(sub.ch)
	}
	return sub
}

// Publish fans a change out to every matching subscription. Events are
// delivered to each subscriber in the order they were published.
func (h *Hub) Publish(c Change) {
	select {
	case h.publish <- c:
	case <-h.stop:
	}
}
