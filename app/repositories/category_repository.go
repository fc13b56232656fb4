package repositories

import (
	"time"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/cache"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

const categoriesCacheKey = "categories:active"

// CategoryRepository serves the reference rows behind the form dropdowns.
type CategoryRepository struct{}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

// Active returns active categories ordered by name, cached for an hour.
func (r *CategoryRepository) Active() ([]models.Category, error) {
	var categories []models.Category
	err := orm.DB().Model(&models.Category{}).
		Where("active = ?", true).
		Order("name ASC").
		Cache(categoriesCacheKey, time.Hour, &categories)
	return categories, err
}

// Flush drops the category cache, e.g. after seeding.
func (r *CategoryRepository) Flush() {
	cache.Forget(categoriesCacheKey)
}
