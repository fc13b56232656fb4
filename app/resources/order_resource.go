package resources

import (
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/resource"
)

// OrderResource renders a trade record from the caller's point of view:
// the side they were on and the counterparty's name.
type OrderResource struct {
	resource.Base
	UserID uint
}

func (r *OrderResource) ToArray(v interface{}) resource.Map {
	o := v.(models.Order)

	side := "bought"
	counterparty := o.FarmerName
	if o.FarmerID == r.UserID {
		side = "sold"
		counterparty = o.BuyerName
	}

	return resource.Map{
		"id":           o.ID,
		"listing_id":   o.ListingID,
		"crop":         o.Crop,
		"quantity":     o.Quantity,
		"price":        o.Price,
		"status":       o.Status,
		"side":         side,
		"counterparty": counterparty,
		"created_at":   o.CreatedAt,
	}
}
