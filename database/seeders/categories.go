package seeders

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agriconnect-ug/agriconnect/app/models"
)

func init() {
	Register("categories", SeedCategories)
}

// SeedCategories inserts the produce categories shown in the listing form.
// Names are stored lower-case, matching how listings store them. Re-running
// the seeder is a no-op for rows that already exist.
func SeedCategories(db *gorm.DB) error {
	names := []string{
		"Coffee", "Maize", "Beans", "Matooke", "Cassava",
		"Rice", "Groundnuts", "Sweet Potatoes", "Fruits", "Vegetables",
	}

	for _, name := range names {
		cat := models.Category{Name: strings.ToLower(name), Active: true}
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cat).Error
		if err != nil {
			return err
		}
	}
	return nil
}
