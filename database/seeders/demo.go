package seeders

import (
	"time"

	"gorm.io/gorm"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/auth"
)

func init() {
	Register("demo_users", SeedDemoUsers)
	Register("demo_listings", SeedDemoListings)
	Register("demo_demands", SeedDemoDemands)
}

func ptr(v float64) *float64 { return &v }

// SeedDemoUsers inserts a farmer, a buyer and an operator account for
// local development. All three sign in with "password". Signup only
// accepts the farmer and buyer roles, so the seeded operator is how the
// admin surface gets its first user.
func SeedDemoUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		return err
	}

	now := time.Now()
	users := []models.User{
		{
			FirstName:  "Amina",
			LastName:   "Nakato",
			Email:      "amina@example.com",
			Phone:      "0772123456",
			Password:   hash,
			Role:       models.RoleFarmer,
			Language:   "lg",
			District:   "Mbale",
			Lat:        ptr(1.0820),
			Lng:        ptr(34.1758),
			VerifiedAt: &now,
		},
		{
			FirstName:  "John",
			LastName:   "Okello",
			Email:      "john@example.com",
			Phone:      "0701987654",
			Password:   hash,
			Role:       models.RoleBuyer,
			Language:   "en",
			District:   "Kampala",
			Lat:        ptr(0.3476),
			Lng:        ptr(32.5825),
			VerifiedAt: &now,
		},
		{
			FirstName:  "Sarah",
			LastName:   "Adeke",
			Email:      "ops@agriconnect.ug",
			Phone:      "0752000001",
			Password:   hash,
			Role:       models.RoleAdmin,
			Language:   "en",
			District:   "Kampala",
			VerifiedAt: &now,
		},
	}

	return db.Create(&users).Error
}

// SeedDemoListings inserts a handful of listings owned by the demo farmer so
// the market pages have content on a fresh database.
func SeedDemoListings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Listing{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var farmer models.User
	if err := db.Where("role = ?", models.RoleFarmer).First(&farmer).Error; err != nil {
		return err
	}

	now := time.Now()
	listings := []models.Listing{
		{
			FarmerID: farmer.ID, FarmerName: farmer.FullName(), FarmerPhone: farmer.Phone,
			Crop: "Coffee", Category: "coffee", Variety: "Arabica", Quality: "premium",
			Quantity: 120, Unit: "kg", Price: 9500,
			Lat: farmer.Lat, Lng: farmer.Lng, District: farmer.District,
			Available: true, ListedAt: now.Add(-2 * time.Hour),
			Description: "Sun-dried Arabica from the slopes of Mount Elgon.",
		},
		{
			FarmerID: farmer.ID, FarmerName: farmer.FullName(), FarmerPhone: farmer.Phone,
			Crop: "Maize", Category: "maize", Quality: "standard",
			Quantity: 800, Unit: "kg", Price: 1200,
			Lat: farmer.Lat, Lng: farmer.Lng, District: farmer.District,
			Available: true, ListedAt: now.Add(-26 * time.Hour),
			Description: "Dry maize grain, moisture below 13 percent.",
		},
		{
			FarmerID: farmer.ID, FarmerName: farmer.FullName(), FarmerPhone: farmer.Phone,
			Crop: "Beans", Category: "beans", Variety: "K132", Quality: "standard",
			Quantity: 350, Unit: "kg", Price: 3200,
			Lat: farmer.Lat, Lng: farmer.Lng, District: farmer.District,
			Available: true, ListedAt: now.Add(-3 * 24 * time.Hour),
			Description: "Fresh harvest, sorted and bagged.",
		},
	}

	return db.Create(&listings).Error
}

// SeedDemoDemands inserts one open demand from the demo buyer so the
// matching page has a row to answer on a fresh database.
func SeedDemoDemands(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Demand{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var buyer models.User
	if err := db.Where("role = ?", models.RoleBuyer).First(&buyer).Error; err != nil {
		return err
	}

	demand := models.Demand{
		BuyerID:     buyer.ID,
		BuyerName:   buyer.FullName(),
		Crop:        "Maize",
		Quantity:    500,
		Unit:        "kg",
		TargetPrice: 1100,
		RadiusKM:    150,
		District:    buyer.District,
		Lat:         buyer.Lat,
		Lng:         buyer.Lng,
		Status:      models.DemandOpen,
	}

	return db.Create(&demand).Error
}
