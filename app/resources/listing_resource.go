// Package resources defines the API resource transformers: the exact JSON
// shapes endpoints return, independent of the DB models.
package resources

import (
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/phone"
	"github.com/agriconnect-ug/agriconnect/pkg/resource"
)

// ListingResource renders one listing with its seller contact links
// attached, so the detail page needs no second request.
type ListingResource struct{ resource.Base }

func (r *ListingResource) ToArray(v interface{}) resource.Map {
	l := v.(models.Listing)
	return resource.Map{
		"id":          l.ID,
		"farmer_id":   l.FarmerID,
		"farmer_name": l.FarmerName,
		"crop":        l.Crop,
		"category":    l.Category,
		"variety":     l.Variety,
		"quality":     l.Quality,
		"quantity":    l.Quantity,
		"unit":        l.Unit,
		"price":       l.Price,
		"lat":         l.Lat,
		"lng":         l.Lng,
		"district":    l.District,
		"available":   l.Available,
		"listed_at":   l.ListedAt,
		"photo_url":   l.PhotoURL,
		"description": l.Description,
		"links": resource.Map{
			"tel":      phone.TelLink(l.FarmerPhone),
			"whatsapp": phone.WhatsAppLink(l.FarmerPhone),
		},
	}
}
