package repositories

import (
	"strings"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// UserRepository is the query surface for accounts.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByEmail resolves an account by email. Addresses are matched
// case-insensitively, so Amina@coop.ug signs in as amina@coop.ug.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user)
	return user, err
}

// FindByID resolves an account by primary key.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("id = ?", id).First(&user)
	return user, err
}

// Create inserts the account row.
func (r *UserRepository) Create(user *models.User) error {
	return orm.DB().Create(user)
}

// Update writes back every field of the row.
func (r *UserRepository) Update(user *models.User) error {
	return orm.DB().Save(user)
}

// All returns one page of accounts, newest signup first.
func (r *UserRepository) All(page, limit int) ([]models.User, orm.Pagination, error) {
	var users []models.User
	pagination, err := orm.DB().Model(&models.User{}).
		Order("created_at DESC").
		GetWithPagination(&users, page, limit)
	return users, pagination, err
}

// Count reports how many accounts exist.
func (r *UserRepository) Count() (int64, error) {
	var n int64
	err := orm.DB().Model(&models.User{}).Count(&n)
	return n, err
}

// Delete soft-deletes the account row. The unique email stays occupied,
// so a removed account's address cannot sign up again.
func (r *UserRepository) Delete(user *models.User) error {
	return orm.DB().Delete(user)
}
