package repositories

import (
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// OfferRepository handles database operations for Offer.
type OfferRepository struct{}

func NewOfferRepository() *OfferRepository {
	return &OfferRepository{}
}

// Create persists a new offer. Duplicate listing/demand pairs are allowed;
// each send is its own row.
func (r *OfferRepository) Create(o *models.Offer) error {
	return orm.DB().Create(o)
}

// FindByID looks up an offer by primary key.
func (r *OfferRepository) FindByID(id uint) (models.Offer, error) {
	var o models.Offer
	err := orm.DB().Model(&models.Offer{}).Where("id = ?", id).First(&o)
	return o, err
}

// ByFarmer returns offers a farmer has sent, newest first.
func (r *OfferRepository) ByFarmer(farmerID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := orm.DB().Model(&models.Offer{}).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Get(&offers)
	return offers, err
}

// ByBuyer returns offers a buyer has received, newest first.
func (r *OfferRepository) ByBuyer(buyerID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := orm.DB().Model(&models.Offer{}).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Get(&offers)
	return offers, err
}
