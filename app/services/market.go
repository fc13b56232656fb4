package services

import (
	"math"
	"sort"
	"strings"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/collection"
	"github.com/agriconnect-ug/agriconnect/pkg/geo"
)

// Sort keys accepted by the browse surface.
const (
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortNewest    = "newest"
	SortNearest   = "nearest"
)

// FilterAll is the sentinel that bypasses the category and quality filters.
const FilterAll = "all"

// Criteria is everything the buyer picked on the browse page.
type Criteria struct {
	Query    string
	Category string
	Quality  string
	MaxPrice *float64
	Sort     string
	Origin   *geo.Point
	RadiusKM float64
}

// MarketRow is a listing annotated with the distance from the buyer's
// position. DistanceKM is nil when either endpoint is unknown; such rows
// are never dropped by the radius filter and sort last under "nearest".
type MarketRow struct {
	models.Listing
	DistanceKM *float64 `json:"distance_km"`
}

// Annotate wraps listings in MarketRows, computing the distance from
// origin where both coordinates are known.
func Annotate(listings []models.Listing, origin *geo.Point) []MarketRow {
	return collection.Map(listings, func(l models.Listing) MarketRow {
		row := MarketRow{Listing: l}
		if origin != nil && l.Lat != nil && l.Lng != nil {
			d := geo.Distance(*origin, geo.Point{Lat: *l.Lat, Lng: *l.Lng})
			row.DistanceKM = &d
		}
		return row
	})
}

// Search filters and orders rows according to the criteria. All matching
// rows are returned; the browse surface does not paginate.
func Search(rows []MarketRow, c Criteria) []MarketRow {
	out := make([]MarketRow, 0, len(rows))
	query := strings.ToLower(strings.TrimSpace(c.Query))

	for _, row := range rows {
		if query != "" && !matchesQuery(row.Listing, query) {
			continue
		}
		if !matchesFilter(row.Category, c.Category) {
			continue
		}
		if !matchesFilter(row.Quality, c.Quality) {
			continue
		}
		if c.MaxPrice != nil && price(row.Listing) > *c.MaxPrice {
			continue
		}
		if c.RadiusKM > 0 && row.DistanceKM != nil {
			if *row.DistanceKM > geo.ClampRadius(c.RadiusKM) {
				continue
			}
		}
		out = append(out, row)
	}

	sortRows(out, c.Sort)
	return out
}

// matchesQuery does a case-insensitive substring match against the
// concatenation of crop, variety, farmer name, and district.
func matchesQuery(l models.Listing, query string) bool {
	haystack := strings.ToLower(l.Crop + " " + l.Variety + " " + l.FarmerName + " " + l.District)
	return strings.Contains(haystack, query)
}

// matchesFilter is an equality check on the lower-cased field; empty and
// the "all" sentinel bypass it.
func matchesFilter(field, selected string) bool {
	selected = strings.ToLower(strings.TrimSpace(selected))
	if selected == "" || selected == FilterAll {
		return true
	}
	return strings.ToLower(field) == selected
}

// price treats non-finite values as zero so broken rows never outrank
// real ones under a price ceiling.
func price(l models.Listing) float64 {
	if math.IsNaN(l.Price) || math.IsInf(l.Price, 0) {
		return 0
	}
	return l.Price
}

func sortRows(rows []MarketRow, key string) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(rows, func(i, j int) bool {
			return price(rows[i].Listing) < price(rows[j].Listing)
		})
	case SortPriceHigh:
		sort.SliceStable(rows, func(i, j int) bool {
			return price(rows[i].Listing) > price(rows[j].Listing)
		})
	case SortNearest:
		sort.SliceStable(rows, func(i, j int) bool {
			di, dj := rows[i].DistanceKM, rows[j].DistanceKM
			if di == nil {
				return false
			}
			if dj == nil {
				return true
			}
			return *di < *dj
		})
	case SortNewest:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ListedAt.After(rows[j].ListedAt)
		})
	}
}

// TrendingEntry is one leaderboard row.
type TrendingEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Trending holds the marketplace leaderboards.
type Trending struct {
	TopCrops   []TrendingEntry `json:"top_crops"`
	TopFarmers []TrendingEntry `json:"top_farmers"`
}

// TrendingOf aggregates the snapshot into top crops and top farmers by
// listing count, five entries each.
func TrendingOf(listings []models.Listing) Trending {
	return Trending{
		TopCrops:   leaderboard(listings, func(l models.Listing) string { return l.Crop }),
		TopFarmers: leaderboard(listings, func(l models.Listing) string { return l.FarmerName }),
	}
}

func leaderboard(listings []models.Listing, key func(models.Listing) string) []TrendingEntry {
	groups := collection.GroupBy(listings, key)

	entries := make([]TrendingEntry, 0, len(groups))
	for name, group := range groups {
		if name == "" {
			continue
		}
		entries = append(entries, TrendingEntry{Name: name, Count: len(group)})
	}

	entries = collection.SortBy(entries, func(a, b TrendingEntry) bool {
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return collection.Take(entries, 5)
}

// MarketService serves the browse surfaces from the live snapshot.
type MarketService struct {
	feed *LiveFeed
}

func NewMarketService(feed *LiveFeed) *MarketService {
	return &MarketService{feed: feed}
}

// Browse annotates the live snapshot with distances and runs the search
// reducer over it.
func (s *MarketService) Browse(c Criteria) []MarketRow {
	return Search(Annotate(s.feed.Snapshot(), c.Origin), c)
}

// Trending aggregates the live snapshot into the leaderboards.
func (s *MarketService) Trending() Trending {
	return TrendingOf(s.feed.Snapshot())
}
