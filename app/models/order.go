package models

import "gorm.io/gorm"

// Order statuses.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCompleted = "completed"
)

// Order is the aggregated trade record shown on the profile page. Names
// and crop are denormalised; the API only ever reads these rows.
type Order struct {
	gorm.Model
	ListingID  uint    `gorm:"not null;index" json:"listing_id"`
	BuyerID    uint    `gorm:"not null;index" json:"buyer_id"`
	FarmerID   uint    `gorm:"not null;index" json:"farmer_id"`
	BuyerName  string  `gorm:"size:255" json:"buyer_name"`
	FarmerName string  `gorm:"size:255" json:"farmer_name"`
	Crop       string  `gorm:"size:100" json:"crop"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"` // agreed price per unit
	Status     string  `gorm:"size:20;default:pending" json:"status"`
}

// Favorite pins a listing to a signed-in user's shortlist. Guests keep
// theirs in the cookie session instead.
type Favorite struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorites_user_listing" json:"user_id"`
	ListingID uint `gorm:"not null;uniqueIndex:idx_favorites_user_listing" json:"listing_id"`
}
