package services

import (
	"fmt"
	"strings"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// DemandService owns buyer demands for the matching page.
type DemandService struct {
	demands *repositories.DemandRepository
	users   *repositories.UserRepository
}

func NewDemandService() *DemandService {
	return &DemandService{
		demands: repositories.NewDemandRepository(),
		users:   repositories.NewUserRepository(),
	}
}

// DemandInput is the demand form.
type DemandInput struct {
	Crop        string   `json:"crop" validate:"required"`
	Quantity    float64  `json:"quantity" validate:"required,gt=0"`
	Unit        string   `json:"unit"`
	TargetPrice float64  `json:"target_price" validate:"gte=0"`
	RadiusKM    float64  `json:"radius_km"`
	District    string   `json:"district"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

// Create opens a new demand for the buyer.
func (s *DemandService) Create(buyerID uint, in DemandInput) (models.Demand, error) {
	buyer, err := s.users.FindByID(buyerID)
	if err != nil {
		return models.Demand{}, fmt.Errorf("services: load buyer %d: %w", buyerID, err)
	}

	demand := models.Demand{
		BuyerID:     buyer.ID,
		BuyerName:   buyer.FullName(),
		Crop:        strings.TrimSpace(in.Crop),
		Quantity:    in.Quantity,
		Unit:        defaultString(in.Unit, "kg"),
		TargetPrice: in.TargetPrice,
		RadiusKM:    in.RadiusKM,
		District:    strings.TrimSpace(in.District),
		Lat:         in.Lat,
		Lng:         in.Lng,
		Status:      models.DemandOpen,
	}

	if err := s.demands.Create(&demand); err != nil {
		return models.Demand{}, fmt.Errorf("services: insert demand: %w", err)
	}
	return demand, nil
}

// Open returns all open demands, for farmers browsing the matching page.
func (s *DemandService) Open() ([]models.Demand, error) {
	return s.demands.Open()
}

// ForBuyer returns the buyer's own demands.
func (s *DemandService) ForBuyer(buyerID uint) ([]models.Demand, error) {
	return s.demands.ByBuyer(buyerID)
}

// UpdateStatus moves a demand between open, paused, and closed. Only the
// owning buyer may do it.
func (s *DemandService) UpdateStatus(buyerID, id uint, status string) (models.Demand, error) {
	switch status {
	case models.DemandOpen, models.DemandPaused, models.DemandClosed:
	default:
		return models.Demand{}, fmt.Errorf("services: unknown demand status %q", status)
	}

	demand, err := s.demands.FindByID(id)
	if err != nil {
		if orm.IsNotFound(err) {
			return models.Demand{}, ErrNotFound
		}
		return models.Demand{}, fmt.Errorf("services: load demand %d: %w", id, err)
	}
	if demand.BuyerID != buyerID {
		return models.Demand{}, ErrForbidden
	}

	demand.Status = status
	if err := s.demands.Save(&demand); err != nil {
		return models.Demand{}, fmt.Errorf("services: update demand %d: %w", id, err)
	}
	return demand, nil
}
