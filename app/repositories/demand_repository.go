package repositories

import (
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// DemandRepository handles database operations for Demand.
type DemandRepository struct{}

func NewDemandRepository() *DemandRepository {
	return &DemandRepository{}
}

// Create persists a new demand.
func (r *DemandRepository) Create(d *models.Demand) error {
	return orm.DB().Create(d)
}

// FindByID looks up a demand by primary key.
func (r *DemandRepository) FindByID(id uint) (models.Demand, error) {
	var d models.Demand
	err := orm.DB().Model(&models.Demand{}).Where("id = ?", id).First(&d)
	return d, err
}

// Open returns all open demands, newest first. Farmers browse these on
// the matching page.
func (r *DemandRepository) Open() ([]models.Demand, error) {
	var demands []models.Demand
	err := orm.DB().Model(&models.Demand{}).
		Where("status = ?", models.DemandOpen).
		Order("created_at DESC").
		Get(&demands)
	return demands, err
}

// CountOpen reports how many demands are waiting for offers.
func (r *DemandRepository) CountOpen() (int64, error) {
	var n int64
	err := orm.DB().Model(&models.Demand{}).
		Where("status = ?", models.DemandOpen).
		Count(&n)
	return n, err
}

// ByBuyer returns a buyer's own demands, newest first.
func (r *DemandRepository) ByBuyer(buyerID uint) ([]models.Demand, error) {
	var demands []models.Demand
	err := orm.DB().Model(&models.Demand{}).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Get(&demands)
	return demands, err
}

// Save persists changes to an existing demand.
func (r *DemandRepository) Save(d *models.Demand) error {
	return orm.DB().Save(d)
}
