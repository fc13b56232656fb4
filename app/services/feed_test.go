package services_test

import (
	"testing"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/realtime"
)

func change(op realtime.Op, l models.Listing) realtime.Change {
	return realtime.Change{Table: services.ListingsTable, Op: op, ID: l.ID, Record: l}
}

// feedOf builds a feed by replaying inserts, so rows end up newest first.
func feedOf(listings ...models.Listing) *services.LiveFeed {
	f := services.NewLiveFeed(nil, nil)
	for _, l := range listings {
		f.Apply(change(realtime.OpInsert, l))
	}
	return f
}

func ids(rows []models.Listing) []uint {
	out := make([]uint, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestApplyInsertPrependsNewRows(t *testing.T) {
	f := feedOf(
		listing(1, "Coffee", "Amina", "Mbale", 9500),
		listing(2, "Maize", "John", "Gulu", 1200),
	)

	got := ids(f.Snapshot())
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("expected the newest row first, got %v", got)
	}
}

func TestApplyUpdateReplacesRowInPlace(t *testing.T) {
	f := feedOf(
		listing(1, "Coffee", "Amina", "Mbale", 9500),
		listing(2, "Maize", "John", "Gulu", 1200),
	)

	f.Apply(change(realtime.OpUpdate, listing(1, "Coffee", "Amina", "Mbale", 8000)))

	rows := f.Snapshot()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].ID != 1 || rows[1].Price != 8000 {
		t.Errorf("expected row 1 repriced in place, got id=%d price=%v", rows[1].ID, rows[1].Price)
	}
}

func TestApplyDeleteRemovesOnlyMatchingRow(t *testing.T) {
	f := feedOf(
		listing(1, "Coffee", "Amina", "Mbale", 9500),
		listing(2, "Maize", "John", "Gulu", 1200),
		listing(3, "Beans", "Grace", "Lira", 3400),
	)

	f.Apply(realtime.Change{Table: services.ListingsTable, Op: realtime.OpDelete, ID: 2})

	got := ids(f.Snapshot())
	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("expected rows 3 and 1 to survive, got %v", got)
	}
}

func TestApplyUpdateToUnavailableRemovesRow(t *testing.T) {
	f := feedOf(listing(1, "Coffee", "Amina", "Mbale", 9500))

	sold := listing(1, "Coffee", "Amina", "Mbale", 9500)
	sold.Available = false
	f.Apply(change(realtime.OpUpdate, sold))

	if f.Len() != 0 {
		t.Errorf("expected the sold listing to drop out, still have %v", ids(f.Snapshot()))
	}
}

func TestApplyInsertUnavailableIsNotAdded(t *testing.T) {
	l := listing(1, "Coffee", "Amina", "Mbale", 9500)
	l.Available = false

	f := services.NewLiveFeed(nil, nil)
	f.Apply(change(realtime.OpInsert, l))

	if f.Len() != 0 {
		t.Errorf("expected no rows, got %d", f.Len())
	}
}

func TestApplyAcceptsPointerRecords(t *testing.T) {
	l := listing(1, "Coffee", "Amina", "Mbale", 9500)

	f := services.NewLiveFeed(nil, nil)
	f.Apply(realtime.Change{Table: services.ListingsTable, Op: realtime.OpInsert, ID: l.ID, Record: &l})

	if f.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", f.Len())
	}
}

func TestApplyIgnoresChangeWithoutRecord(t *testing.T) {
	f := feedOf(listing(1, "Coffee", "Amina", "Mbale", 9500))

	f.Apply(realtime.Change{Table: services.ListingsTable, Op: realtime.OpUpdate, ID: 1})

	if f.Len() != 1 {
		t.Errorf("expected the snapshot untouched, got %d rows", f.Len())
	}
}

func TestSnapshotReturnsACopy(t *testing.T) {
	f := feedOf(listing(1, "Coffee", "Amina", "Mbale", 9500))

	rows := f.Snapshot()
	rows[0].Price = 1

	if got := f.Snapshot()[0].Price; got != 9500 {
		t.Errorf("expected the feed unchanged after mutating a snapshot, got price %v", got)
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	l := models.Listing{Crop: "Coffee", Category: " Cereal ", Quality: "Grade A"}
	l.CreatedAt = time.Date(2026, 7, 10, 8, 0, 0, 0, time.UTC)

	out := services.Normalize(l)

	if out.Category != "cereal" {
		t.Errorf("expected category %q, got %q", "cereal", out.Category)
	}
	if out.Quality != "grade a" {
		t.Errorf("expected quality %q, got %q", "grade a", out.Quality)
	}
	if out.Unit != "kg" {
		t.Errorf("expected unit to default to kg, got %q", out.Unit)
	}
	if !out.ListedAt.Equal(l.CreatedAt) {
		t.Errorf("expected listed_at to fall back to created_at, got %v", out.ListedAt)
	}
}

func TestNormalizeBackfillsListedAt(t *testing.T) {
	out := services.Normalize(models.Listing{Crop: "Maize"})
	if out.ListedAt.IsZero() {
		t.Error("expected a non-zero listed_at")
	}
}
