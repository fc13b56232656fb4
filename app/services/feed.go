package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
	"github.com/agriconnect-ug/agriconnect/pkg/realtime"
)

// ListingsTable is the change-feed table name for listings.
const ListingsTable = "listings"

// LiveFeed keeps an in-memory snapshot of available listings, kept
// eventually consistent with the database by the change feed. Events are
// applied in arrival order, last-applied-wins; there is no sequence
// reconciliation, so a delayed stale update silently overwrites a newer
// one. Best effort only.
type LiveFeed struct {
	hub      *realtime.Hub
	listings *repositories.ListingRepository

	mu   sync.RWMutex
	rows []models.Listing

	sub  *realtime.Subscription
	once sync.Once
}

func NewLiveFeed(hub *realtime.Hub, listings *repositories.ListingRepository) *LiveFeed {
	return &LiveFeed{hub: hub, listings: listings}
}

// Start seeds the snapshot from the database and begins consuming the
// change feed until ctx is cancelled.
func (f *LiveFeed) Start(ctx context.Context) error {
	seed, err := f.listings.Available()
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.rows = seed
	f.mu.Unlock()
	f.gauge()

	f.sub = f.hub.Subscribe(realtime.Filter{Table: ListingsTable})
	metrics.RealtimeClients.WithLabelValues("internal").Inc()

	go f.consume(ctx)

	logger.Info("live feed started", "listings", len(seed))
	return nil
}

func (f *LiveFeed) consume(ctx context.Context) {
	defer func() {
		f.Stop()
		metrics.RealtimeClients.WithLabelValues("internal").Dec()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-f.sub.Events():
			if !ok {
				return
			}
			f.Apply(change)
		}
	}
}

// Stop closes the feed's subscription. Safe to call more than once.
func (f *LiveFeed) Stop() {
	f.once.Do(func() {
		if f.sub != nil {
			f.sub.Close()
		}
	})
}

// Snapshot returns a copy of the current listing rows, newest first.
func (f *LiveFeed) Snapshot() []models.Listing {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.Listing, len(f.rows))
	copy(out, f.rows)
	return out
}

// Len returns the number of rows currently visible.
func (f *LiveFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rows)
}

// Apply merges one change event into the snapshot:
//
//   - DELETE removes the matching row by id.
//   - INSERT/UPDATE normalizes the record, then replaces the existing row
//     by id or prepends it if new and available; a record whose
//     availability flag is false is removed instead.
func (f *LiveFeed) Apply(c realtime.Change) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch c.Op {
	case realtime.OpDelete:
		f.remove(c.ID)
	case realtime.OpInsert, realtime.OpUpdate:
		l, ok := listingRecord(c)
		if !ok {
			logger.Warn("live feed: dropping change with no listing record", "op", string(c.Op), "id", c.ID)
			return
		}
		l = Normalize(l)
		if !l.Available {
			f.remove(l.ID)
			break
		}
		f.upsert(l)
	}

	metrics.LiveListings.Set(float64(len(f.rows)))
}

// remove drops the row with the given id, leaving all others unchanged.
// Callers hold f.mu.
func (f *LiveFeed) remove(id uint) {
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return
		}
	}
}

// upsert replaces the row by id or prepends it when new. Callers hold f.mu.
func (f *LiveFeed) upsert(l models.Listing) {
	for i, row := range f.rows {
		if row.ID == l.ID {
			f.rows[i] = l
			return
		}
	}
	f.rows = append([]models.Listing{l}, f.rows...)
}

func (f *LiveFeed) gauge() {
	f.mu.RLock()
	n := len(f.rows)
	f.mu.RUnlock()
	metrics.LiveListings.Set(float64(n))
}

// Normalize applies defaults for nullable fields and lower-cases the
// enumerated ones, mirroring what the listing writer does, so records
// arriving over the feed look identical to freshly loaded rows.
func Normalize(l models.Listing) models.Listing {
	l.Category = strings.ToLower(strings.TrimSpace(l.Category))
	l.Quality = strings.ToLower(strings.TrimSpace(l.Quality))
	if l.Unit == "" {
		l.Unit = "kg"
	}
	if l.ListedAt.IsZero() {
		if !l.CreatedAt.IsZero() {
			l.ListedAt = l.CreatedAt
		} else {
			l.ListedAt = time.Now()
		}
	}
	return l
}

func listingRecord(c realtime.Change) (models.Listing, bool) {
	switch rec := c.Record.(type) {
	case models.Listing:
		return rec, true
	case *models.Listing:
		if rec != nil {
			return *rec, true
		}
	}
	return models.Listing{}, false
}
