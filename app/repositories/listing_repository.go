package repositories

import (
	"strings"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// ListingFilter is the declarative select surface for listings: equality
// filters, newest-first ordering, optional limit. Zero values mean "any".
type ListingFilter struct {
	FarmerID  uint
	Category  string
	Available *bool
	Limit     int
}

// ListingRepository handles database operations for Listing.
type ListingRepository struct{}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{}
}

// Create persists a new listing.
func (r *ListingRepository) Create(l *models.Listing) error {
	return orm.DB().Create(l)
}

// FindByID looks up a listing by primary key.
func (r *ListingRepository) FindByID(id uint) (models.Listing, error) {
	var l models.Listing
	err := orm.DB().Model(&models.Listing{}).Where("id = ?", id).First(&l)
	return l, err
}

// Select returns listings matching the filter, newest first.
func (r *ListingRepository) Select(f ListingFilter) ([]models.Listing, error) {
	q := orm.DB().Model(&models.Listing{})
	if f.FarmerID != 0 {
		q = q.Where("farmer_id = ?", f.FarmerID)
	}
	if f.Category != "" && !strings.EqualFold(f.Category, "all") {
		q = q.Where("category = ?", strings.ToLower(f.Category))
	}
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}
	q = q.Order("listed_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var listings []models.Listing
	err := q.Get(&listings)
	return listings, err
}

// Available returns every currently available listing, newest first.
// The live feed seeds its snapshot from this.
func (r *ListingRepository) Available() ([]models.Listing, error) {
	available := true
	return r.Select(ListingFilter{Available: &available})
}

// CountAvailable reports how many listings are live on the market.
func (r *ListingRepository) CountAvailable() (int64, error) {
	var n int64
	err := orm.DB().Model(&models.Listing{}).
		Where("available = ?", true).
		Count(&n)
	return n, err
}

// Save persists changes to an existing listing.
func (r *ListingRepository) Save(l *models.Listing) error {
	return orm.DB().Save(l)
}

// Delete soft-deletes a listing.
func (r *ListingRepository) Delete(l *models.Listing) error {
	return orm.DB().Delete(l)
}

// SetAvailability flips the availability flag and returns the updated row.
func (r *ListingRepository) SetAvailability(id uint, available bool) (models.Listing, error) {
	l, err := r.FindByID(id)
	if err != nil {
		return l, err
	}
	l.Available = available
	if err := orm.DB().Save(&l); err != nil {
		return l, err
	}
	return l, nil
}

// StaleBefore returns available listings listed before the cutoff. The
// freshness sweep marks each unavailable afterwards via SetAvailability
// so every change is published to the feed.
func (r *ListingRepository) StaleBefore(cutoff time.Time) ([]models.Listing, error) {
	var listings []models.Listing
	err := orm.DB().Model(&models.Listing{}).
		Where("available = ?", true).
		Where("listed_at < ?", cutoff).
		Get(&listings)
	return listings, err
}
