package repositories

import (
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// OrderRepository reads the aggregated trade records for the profile
// page. Orders are written by the matching flow, never through the API.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// ForUser returns orders where the user is either side of the trade,
// newest first.
func (r *OrderRepository) ForUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := orm.DB().Model(&models.Order{}).
		Where("buyer_id = ? OR farmer_id = ?", userID, userID).
		Order("created_at DESC").
		Get(&orders)
	return orders, err
}

// Completed returns every finished trade, for the operator dashboard.
func (r *OrderRepository) Completed() ([]models.Order, error) {
	var orders []models.Order
	err := orm.DB().Model(&models.Order{}).
		Where("status = ?", models.OrderCompleted).
		Get(&orders)
	return orders, err
}
