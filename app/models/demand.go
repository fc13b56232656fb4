package models

import "gorm.io/gorm"

// Demand statuses.
const (
	DemandOpen   = "open"
	DemandPaused = "paused"
	DemandClosed = "closed"
)

// Offer statuses.
const (
	OfferSent     = "sent"
	OfferAccepted = "accepted"
	OfferDeclined = "declined"
)

// Demand is a buyer's standing request for a crop within a price and
// radius envelope. Farmers browse open demands on the matching page.
type Demand struct {
	gorm.Model
	BuyerID     uint     `gorm:"not null;index" json:"buyer_id"`
	BuyerName   string   `gorm:"size:255" json:"buyer_name"`
	Crop        string   `gorm:"size:100;not null" json:"crop"`
	Quantity    float64  `gorm:"not null;default:0" json:"quantity"`
	Unit        string   `gorm:"size:20;default:kg" json:"unit"`
	TargetPrice float64  `gorm:"not null;default:0" json:"target_price"`
	RadiusKM    float64  `gorm:"column:radius_km" json:"radius_km"`
	District    string   `gorm:"size:100" json:"district"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Status      string   `gorm:"size:20;default:open;index" json:"status"`
}

// Offer links one of a farmer's listings to a buyer demand. Quantity and
// price are snapshotted from the listing at send time so later edits do
// not rewrite history. Repeated sends create repeated rows.
type Offer struct {
	gorm.Model
	ListingID uint    `gorm:"not null;index" json:"listing_id"`
	DemandID  uint    `gorm:"not null;index" json:"demand_id"`
	FarmerID  uint    `gorm:"not null;index" json:"farmer_id"`
	BuyerID   uint    `gorm:"not null;index" json:"buyer_id"`
	Crop      string  `gorm:"size:100" json:"crop"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Reference string  `gorm:"size:64;index" json:"reference"`
	Status    string  `gorm:"size:20;default:sent" json:"status"`
}
