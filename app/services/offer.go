package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/pkg/event"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// OfferService owns the market-matching flow: a farmer answers an open
// buyer demand with one of their own listings.
type OfferService struct {
	offers   *repositories.OfferRepository
	listings *repositories.ListingRepository
	demands  *repositories.DemandRepository
}

func NewOfferService() *OfferService {
	return &OfferService{
		offers:   repositories.NewOfferRepository(),
		listings: repositories.NewListingRepository(),
		demands:  repositories.NewDemandRepository(),
	}
}

// Send inserts an offer linking the farmer's listing to the demand, with
// quantity and price snapshotted from the listing. Nothing prevents the
// same pair being offered twice; each send is its own row.
func (s *OfferService) Send(farmerID, listingID, demandID uint) (models.Offer, error) {
	listing, err := s.listings.FindByID(listingID)
	if err != nil {
		if orm.IsNotFound(err) {
			return models.Offer{}, ErrNotFound
		}
		return models.Offer{}, fmt.Errorf("services: load listing %d: %w", listingID, err)
	}
	if listing.FarmerID != farmerID {
		return models.Offer{}, ErrForbidden
	}

	demand, err := s.demands.FindByID(demandID)
	if err != nil {
		if orm.IsNotFound(err) {
			return models.Offer{}, ErrNotFound
		}
		return models.Offer{}, fmt.Errorf("services: load demand %d: %w", demandID, err)
	}
	if demand.Status != models.DemandOpen {
		return models.Offer{}, ErrDemandNotOpen
	}

	offer := models.Offer{
		ListingID: listing.ID,
		DemandID:  demand.ID,
		FarmerID:  farmerID,
		BuyerID:   demand.BuyerID,
		Crop:      listing.Crop,
		Quantity:  listing.Quantity,
		Price:     listing.Price,
		Reference: uuid.NewString(),
		Status:    models.OfferSent,
	}

	if err := s.offers.Create(&offer); err != nil {
		return models.Offer{}, fmt.Errorf("services: insert offer: %w", err)
	}

	metrics.OffersSent.Inc()
	event.Fire("offer.sent", offer)

	return offer, nil
}

// For returns the offers visible to the user: farmers see what they sent,
// buyers see what they received.
func (s *OfferService) For(userID uint, role string) ([]models.Offer, error) {
	if role == models.RoleFarmer {
		return s.offers.ByFarmer(userID)
	}
	return s.offers.ByBuyer(userID)
}
