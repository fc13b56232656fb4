package models

import (
	"time"

	"gorm.io/gorm"
)

// Listing is a farmer's produce-for-sale record. Farmer name and phone are
// denormalised onto the row so search and contact links never need a join.
// Category and quality are stored lower-case; filters compare lower-case.
type Listing struct {
	gorm.Model
	FarmerID    uint      `gorm:"not null;index" json:"farmer_id"`
	FarmerName  string    `gorm:"size:255" json:"farmer_name"`
	FarmerPhone string    `gorm:"size:30" json:"farmer_phone"`
	Crop        string    `gorm:"size:100;not null;index" json:"crop"`
	Category    string    `gorm:"size:100;index" json:"category"`
	Variety     string    `gorm:"size:100" json:"variety"`
	Quality     string    `gorm:"size:50" json:"quality"`
	Quantity    float64   `gorm:"not null;default:0" json:"quantity"`
	Unit        string    `gorm:"size:20;default:kg" json:"unit"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Lat         *float64  `json:"lat"`
	Lng         *float64  `json:"lng"`
	District    string    `gorm:"size:100;index" json:"district"`
	Available   bool      `gorm:"default:true;index" json:"available"`
	ListedAt    time.Time `gorm:"index" json:"listed_at"`
	PhotoURL    string    `gorm:"size:512" json:"photo_url"`
	Description string    `gorm:"type:text" json:"description"`
}

// Category is static reference data for the listing form dropdowns.
type Category struct {
	gorm.Model
	Name   string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Active bool   `gorm:"default:true" json:"active"`
}
