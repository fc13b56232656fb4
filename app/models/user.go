package models

import (
	"time"

	"gorm.io/gorm"
)

// Account roles. The role drives which API surfaces a user may call.
const (
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
	RoleGuest  = "guest"
)

// User is the primary account model.
type User struct {
	gorm.Model
	FirstName  string     `gorm:"size:100;not null" json:"first_name"`
	LastName   string     `gorm:"size:100;not null" json:"last_name"`
	Email      string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone      string     `gorm:"size:30" json:"phone"`
	Password   string     `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	Role       string     `gorm:"size:20;default:buyer;index" json:"role"`
	Language   string     `gorm:"size:10;default:en" json:"preferred_language"`
	District   string     `gorm:"size:100" json:"district"`
	Lat        *float64   `json:"lat"`
	Lng        *float64   `json:"lng"`
	VerifiedAt *time.Time `gorm:"column:email_verified_at" json:"email_verified_at"`
}

// FullName joins first and last name for denormalised columns and emails.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Verified reports whether the email confirmation flow completed.
func (u User) Verified() bool { return u.VerifiedAt != nil }
