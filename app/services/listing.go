package services

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/event"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
	"github.com/agriconnect-ug/agriconnect/pkg/phone"
	"github.com/agriconnect-ug/agriconnect/pkg/storage"
)

// ErrPhotoUpload marks a storage failure while saving the listing photo.
var ErrPhotoUpload = errors.New("photo upload failed")

// ListingService owns the write side of listings: creation with photo
// upload, availability toggles, deletes, and the freshness sweep. Every
// mutation fires a domain event the boot wiring turns into a change-feed
// publish.
type ListingService struct {
	listings *repositories.ListingRepository
	users    *repositories.UserRepository
}

func NewListingService() *ListingService {
	return &ListingService{
		listings: repositories.NewListingRepository(),
		users:    repositories.NewUserRepository(),
	}
}

// ListingInput is the listing form. Validation runs in the controller
// before Create is called.
type ListingInput struct {
	Crop        string   `json:"crop" validate:"required"`
	Category    string   `json:"category"`
	Variety     string   `json:"variety"`
	Quality     string   `json:"quality"`
	Quantity    float64  `json:"quantity" validate:"required,gt=0"`
	Unit        string   `json:"unit"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	District    string   `json:"district" validate:"required"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Description string   `json:"description"`
}

// Create inserts a listing for the farmer, uploading the photo first when
// one was attached. The farmer's name and phone are denormalised onto the
// row at insert time.
func (s *ListingService) Create(farmerID uint, in ListingInput, photo io.Reader, photoName string) (models.Listing, error) {
	farmer, err := s.users.FindByID(farmerID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("services: load farmer %d: %w", farmerID, err)
	}

	listing := models.Listing{
		FarmerID:    farmer.ID,
		FarmerName:  farmer.FullName(),
		FarmerPhone: farmer.Phone,
		Crop:        strings.TrimSpace(in.Crop),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Variety:     strings.TrimSpace(in.Variety),
		Quality:     strings.ToLower(strings.TrimSpace(in.Quality)),
		Quantity:    in.Quantity,
		Unit:        defaultString(in.Unit, "kg"),
		Price:       in.Price,
		Lat:         in.Lat,
		Lng:         in.Lng,
		District:    strings.TrimSpace(in.District),
		Available:   true,
		ListedAt:    time.Now(),
		Description: strings.TrimSpace(in.Description),
	}

	if photo != nil {
		url, err := s.storePhoto(farmer.ID, photo, photoName)
		if err != nil {
			logger.Error("store listing photo", "farmer_id", farmer.ID, "error", err)
			return models.Listing{}, ErrPhotoUpload
		}
		listing.PhotoURL = url
	}

	if err := s.listings.Create(&listing); err != nil {
		return models.Listing{}, fmt.Errorf("services: insert listing: %w", err)
	}

	metrics.ListingsCreated.Inc()
	event.Fire("listing.created", listing)

	return listing, nil
}

// storePhoto writes the image under a per-farmer path with a random name
// and returns its public URL.
func (s *ListingService) storePhoto(farmerID uint, photo io.Reader, name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("listings/farmer_%d/%s%s", farmerID, uuid.NewString(), ext)

	if err := storage.PutStream(key, photo); err != nil {
		return "", err
	}
	return storage.URL(key), nil
}

// Find returns one listing by id.
func (s *ListingService) Find(id uint) (models.Listing, error) {
	listing, err := s.listings.FindByID(id)
	if err != nil {
		if orm.IsNotFound(err) {
			return models.Listing{}, ErrNotFound
		}
		return models.Listing{}, fmt.Errorf("services: load listing %d: %w", id, err)
	}
	return listing, nil
}

// Select runs the declarative listing select.
func (s *ListingService) Select(f repositories.ListingFilter) ([]models.Listing, error) {
	return s.listings.Select(f)
}

// Delete removes a listing and, best-effort, its stored photo. Only the
// owning farmer or an admin may do it.
func (s *ListingService) Delete(userID uint, role string, id uint) error {
	listing, err := s.Find(id)
	if err != nil {
		return err
	}
	if listing.FarmerID != userID && role != models.RoleAdmin {
		return ErrForbidden
	}

	if err := s.listings.Delete(&listing); err != nil {
		return fmt.Errorf("services: delete listing %d: %w", id, err)
	}

	if key, ok := storage.KeyFor(listing.PhotoURL); ok {
		if err := storage.Delete(key); err != nil {
			logger.Warn("delete listing photo", "listing_id", id, "error", err)
		}
	}

	event.Fire("listing.deleted", listing)
	return nil
}

// SetAvailability flips the availability flag. Only the owner may do it.
// Feeds drop rows whose flag turns false.
func (s *ListingService) SetAvailability(userID uint, role string, id uint, available bool) (models.Listing, error) {
	listing, err := s.Find(id)
	if err != nil {
		return models.Listing{}, err
	}
	if listing.FarmerID != userID && role != models.RoleAdmin {
		return models.Listing{}, ErrForbidden
	}

	listing, err = s.listings.SetAvailability(id, available)
	if err != nil {
		return models.Listing{}, fmt.Errorf("services: set availability %d: %w", id, err)
	}

	event.Fire("listing.updated", listing)
	return listing, nil
}

// ContactLinks are the deep links a buyer uses to reach the seller.
type ContactLinks struct {
	Phone    string `json:"phone"`
	Tel      string `json:"tel"`
	WhatsApp string `json:"whatsapp"`
}

// Contact builds tel: and wa.me links from the listing's stored phone.
func (s *ListingService) Contact(id uint) (ContactLinks, error) {
	listing, err := s.Find(id)
	if err != nil {
		return ContactLinks{}, err
	}

	return ContactLinks{
		Phone:    phone.Normalize(listing.FarmerPhone),
		Tel:      phone.TelLink(listing.FarmerPhone),
		WhatsApp: phone.WhatsAppLink(listing.FarmerPhone),
	}, nil
}

// SweepStale marks listings older than LISTING_FRESHNESS_DAYS unavailable
// and publishes the updates so feeds drop them. Run daily by the scheduler.
func (s *ListingService) SweepStale() error {
	cutoff := time.Now().AddDate(0, 0, -config.ListingFreshnessDays())

	stale, err := s.listings.StaleBefore(cutoff)
	if err != nil {
		return fmt.Errorf("services: load stale listings: %w", err)
	}

	for _, listing := range stale {
		updated, err := s.listings.SetAvailability(listing.ID, false)
		if err != nil {
			logger.Error("sweep stale listing", "listing_id", listing.ID, "error", err)
			continue
		}
		event.Fire("listing.updated", updated)
	}

	if len(stale) > 0 {
		logger.Info("stale listings swept", "count", len(stale), "cutoff", cutoff)
	}
	return nil
}
