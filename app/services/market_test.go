package services_test

import (
	"math"
	"testing"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/geo"
)

func fptr(v float64) *float64 { return &v }

func listing(id uint, crop, farmer, district string, price float64) models.Listing {
	l := models.Listing{
		Crop:       crop,
		FarmerName: farmer,
		District:   district,
		Price:      price,
		Available:  true,
		ListedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	l.ID = id
	return l
}

func rows(listings ...models.Listing) []services.MarketRow {
	return services.Annotate(listings, nil)
}

func crops(rows []services.MarketRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Crop)
	}
	return out
}

func TestSearchQueryMatchesFarmerNameCaseInsensitive(t *testing.T) {
	in := rows(
		listing(1, "Coffee", "Amina", "Mbale", 9500),
		listing(2, "Maize", "John", "Gulu", 1200),
	)

	out := services.Search(in, services.Criteria{Query: "amina"})

	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	if out[0].Crop != "Coffee" {
		t.Errorf("expected the Coffee row, got %q", out[0].Crop)
	}
}

func TestSearchQueryMatchesCropVarietyAndDistrict(t *testing.T) {
	l := listing(1, "Coffee", "Amina", "Mbale", 9500)
	l.Variety = "Arabica"
	in := rows(l, listing(2, "Maize", "John", "Gulu", 1200))

	for _, query := range []string{"coffee", "ARABICA", "mbale"} {
		out := services.Search(in, services.Criteria{Query: query})
		if len(out) != 1 || out[0].ID != 1 {
			t.Errorf("query %q: expected only listing 1, got %d rows", query, len(out))
		}
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	a := listing(1, "Coffee", "Amina", "Mbale", 9500)
	a.Category = "coffee"
	b := listing(2, "Maize", "John", "Gulu", 1200)
	b.Category = "maize"
	in := rows(a, b)

	out := services.Search(in, services.Criteria{Category: "Coffee"})
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("expected only the coffee listing, got %d rows", len(out))
	}

	// Empty and "all" bypass the filter entirely.
	for _, sel := range []string{"", "all", "ALL"} {
		out := services.Search(in, services.Criteria{Category: sel})
		if len(out) != 2 {
			t.Errorf("category %q: expected 2 rows, got %d", sel, len(out))
		}
	}
}

func TestSearchMaxPriceCeilingIsInclusive(t *testing.T) {
	in := rows(
		listing(1, "Beans", "A", "Mbale", 1000),
		listing(2, "Coffee", "B", "Mbale", 5000),
		listing(3, "Vanilla", "C", "Mbale", 9999),
	)

	out := services.Search(in, services.Criteria{MaxPrice: fptr(5000)})

	if len(out) != 2 {
		t.Fatalf("expected 2 rows at or under the ceiling, got %d", len(out))
	}
	for _, r := range out {
		if r.Price > 5000 {
			t.Errorf("row %d with price %f slipped past the ceiling", r.ID, r.Price)
		}
	}
}

func TestSearchNonFinitePriceTreatedAsZero(t *testing.T) {
	in := rows(
		listing(1, "Coffee", "A", "Mbale", math.NaN()),
		listing(2, "Maize", "B", "Gulu", math.Inf(1)),
		listing(3, "Beans", "C", "Lira", 3000),
	)

	out := services.Search(in, services.Criteria{MaxPrice: fptr(100)})

	if len(out) != 2 {
		t.Fatalf("expected the two non-finite rows to pass as zero, got %d rows", len(out))
	}
}

func TestSortPriceLowAndHigh(t *testing.T) {
	in := rows(
		listing(1, "Coffee", "A", "Mbale", 9500),
		listing(2, "Maize", "B", "Gulu", 1200),
		listing(3, "Beans", "C", "Lira", 3200),
	)

	low := services.Search(in, services.Criteria{Sort: services.SortPriceLow})
	if got := crops(low); got[0] != "Maize" || got[2] != "Coffee" {
		t.Errorf("price_low order wrong: %v", got)
	}

	high := services.Search(in, services.Criteria{Sort: services.SortPriceHigh})
	if got := crops(high); got[0] != "Coffee" || got[2] != "Maize" {
		t.Errorf("price_high order wrong: %v", got)
	}
}

func TestSortPriceIsStableForEqualPrices(t *testing.T) {
	in := rows(
		listing(1, "Coffee", "A", "Mbale", 2000),
		listing(2, "Maize", "B", "Gulu", 2000),
		listing(3, "Beans", "C", "Lira", 2000),
	)

	out := services.Search(in, services.Criteria{Sort: services.SortPriceLow})

	for i, want := range []uint{1, 2, 3} {
		if out[i].ID != want {
			t.Fatalf("equal-price rows reordered: position %d has id %d, want %d", i, out[i].ID, want)
		}
	}
}

func TestSortNewestByListedAt(t *testing.T) {
	old := listing(1, "Coffee", "A", "Mbale", 9500)
	old.ListedAt = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	fresh := listing(2, "Maize", "B", "Gulu", 1200)
	fresh.ListedAt = time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	out := services.Search(rows(old, fresh), services.Criteria{Sort: services.SortNewest})

	if out[0].ID != 2 {
		t.Errorf("expected the fresher listing first, got id %d", out[0].ID)
	}
}

func TestSortNearestPutsUnknownDistanceLast(t *testing.T) {
	near := listing(1, "Coffee", "A", "Mbale", 9500)
	near.Lat, near.Lng = fptr(0.40), fptr(32.60)
	far := listing(2, "Maize", "B", "Gulu", 1200)
	far.Lat, far.Lng = fptr(2.77), fptr(32.30)
	unknown := listing(3, "Beans", "C", "Lira", 3200)

	origin := &geo.Point{Lat: 0.3476, Lng: 32.5825} // Kampala
	in := services.Annotate([]models.Listing{unknown, far, near}, origin)

	out := services.Search(in, services.Criteria{Sort: services.SortNearest})

	if got := crops(out); got[0] != "Coffee" || got[1] != "Maize" || got[2] != "Beans" {
		t.Errorf("nearest order wrong: %v", got)
	}
}

func TestSearchRadiusKeepsUnknownDistanceRows(t *testing.T) {
	far := listing(1, "Maize", "B", "Gulu", 1200)
	far.Lat, far.Lng = fptr(2.77), fptr(32.30) // ~270 km from Kampala
	unknown := listing(2, "Beans", "C", "Lira", 3200)

	origin := &geo.Point{Lat: 0.3476, Lng: 32.5825}
	in := services.Annotate([]models.Listing{far, unknown}, origin)

	out := services.Search(in, services.Criteria{Origin: origin, RadiusKM: 50})

	if len(out) != 1 || out[0].Crop != "Beans" {
		t.Fatalf("expected only the row with no coordinates to survive, got %v", crops(out))
	}
}

func TestSearchRadiusIsClamped(t *testing.T) {
	far := listing(1, "Maize", "B", "Gulu", 1200)
	far.Lat, far.Lng = fptr(2.77), fptr(32.30) // ~270 km from Kampala

	origin := &geo.Point{Lat: 0.3476, Lng: 32.5825}
	in := services.Annotate([]models.Listing{far}, origin)

	// 1000 km clamps down to 200, which still excludes Gulu.
	out := services.Search(in, services.Criteria{Origin: origin, RadiusKM: 1000})
	if len(out) != 0 {
		t.Errorf("expected the clamped radius to drop the far row, got %d rows", len(out))
	}
}

func TestAnnotateComputesDistanceOnlyWithBothEndpoints(t *testing.T) {
	withCoords := listing(1, "Coffee", "Amina", "Mbale", 9500)
	withCoords.Lat, withCoords.Lng = fptr(1.0784), fptr(34.1754)
	without := listing(2, "Maize", "John", "Gulu", 1200)

	origin := &geo.Point{Lat: 0.3476, Lng: 32.5825}
	out := services.Annotate([]models.Listing{withCoords, without}, origin)

	if out[0].DistanceKM == nil {
		t.Fatal("expected a distance for the row with coordinates")
	}
	if d := *out[0].DistanceKM; d < 180 || d > 210 {
		t.Errorf("Kampala-Mbale distance out of range: %f", d)
	}
	if out[1].DistanceKM != nil {
		t.Errorf("expected nil distance for the row without coordinates, got %f", *out[1].DistanceKM)
	}

	noOrigin := services.Annotate([]models.Listing{withCoords}, nil)
	if noOrigin[0].DistanceKM != nil {
		t.Error("expected nil distance when the buyer position is unknown")
	}
}

func TestTrendingCountsAndOrders(t *testing.T) {
	in := []models.Listing{
		listing(1, "Coffee", "Amina", "Mbale", 9500),
		listing(2, "Coffee", "Amina", "Mbale", 8000),
		listing(3, "Maize", "John", "Gulu", 1200),
		listing(4, "Beans", "Sarah", "Lira", 3200),
		listing(5, "Beans", "Amina", "Mbale", 3000),
	}

	tr := services.TrendingOf(in)

	if len(tr.TopCrops) != 3 {
		t.Fatalf("expected 3 crops, got %d", len(tr.TopCrops))
	}
	// Beans and Coffee tie at two listings each; the tie breaks by name.
	want := []services.TrendingEntry{
		{Name: "Beans", Count: 2},
		{Name: "Coffee", Count: 2},
		{Name: "Maize", Count: 1},
	}
	for i, w := range want {
		if tr.TopCrops[i] != w {
			t.Errorf("crop %d: expected %s x%d, got %s x%d", i, w.Name, w.Count, tr.TopCrops[i].Name, tr.TopCrops[i].Count)
		}
	}
	if tr.TopFarmers[0].Name != "Amina" || tr.TopFarmers[0].Count != 3 {
		t.Errorf("expected Amina x3 as top farmer, got %s x%d", tr.TopFarmers[0].Name, tr.TopFarmers[0].Count)
	}
}

func TestTrendingSkipsBlankNamesAndCapsAtFive(t *testing.T) {
	in := []models.Listing{listing(1, "", "Amina", "Mbale", 100)}
	for i, crop := range []string{"Coffee", "Maize", "Beans", "Matooke", "Cassava", "Rice", "Vanilla"} {
		in = append(in, listing(uint(i+2), crop, "F", "Mbale", 100))
	}

	tr := services.TrendingOf(in)

	if len(tr.TopCrops) != 5 {
		t.Errorf("expected the leaderboard capped at 5, got %d", len(tr.TopCrops))
	}
	for _, e := range tr.TopCrops {
		if e.Name == "" {
			t.Error("blank crop name leaked into the leaderboard")
		}
	}
}
