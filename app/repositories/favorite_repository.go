package repositories

import (
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// FavoriteRepository handles a signed-in user's listing shortlist.
type FavoriteRepository struct{}

func NewFavoriteRepository() *FavoriteRepository {
	return &FavoriteRepository{}
}

// ListingIDs returns the listing ids the user has favorited.
func (r *FavoriteRepository) ListingIDs(userID uint) ([]uint, error) {
	var favorites []models.Favorite
	err := orm.DB().Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Get(&favorites)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ListingID)
	}
	return ids, nil
}

// Add favorites a listing for the user. Adding twice is a no-op thanks to
// the unique pair index; the duplicate error is swallowed.
func (r *FavoriteRepository) Add(userID, listingID uint) error {
	err := orm.DB().Create(&models.Favorite{UserID: userID, ListingID: listingID})
	if orm.IsDuplicate(err) {
		return nil
	}
	return err
}

// Remove unfavorites a listing for the user.
func (r *FavoriteRepository) Remove(userID, listingID uint) error {
	return orm.DB().
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.Favorite{})
}
