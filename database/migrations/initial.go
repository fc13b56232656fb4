package migrations

import (
	"gorm.io/gorm"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/migration"
	"github.com/agriconnect-ug/agriconnect/pkg/notify"
	"github.com/agriconnect-ug/agriconnect/pkg/queue"
)

func init() {
	migration.Register("20260105000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260105000001_create_categories_table", &CreateCategoriesTable{})
	migration.Register("20260105000002_create_listings_table", &CreateListingsTable{})
	migration.Register("20260105000003_create_demands_table", &CreateDemandsTable{})
	migration.Register("20260105000004_create_offers_table", &CreateOffersTable{})
	migration.Register("20260105000005_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260105000006_create_favorites_table", &CreateFavoritesTable{})
	migration.Register("20260105000007_create_system_tables", &CreateSystemTables{})
}

// -------- 0000: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0001: categories --------

type CreateCategoriesTable struct{}

func (m *CreateCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{})
}

func (m *CreateCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}

// -------- 0002: listings --------

type CreateListingsTable struct{}

func (m *CreateListingsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Listing{})
}

func (m *CreateListingsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("listings")
}

// -------- 0003: demands --------

type CreateDemandsTable struct{}

func (m *CreateDemandsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Demand{})
}

func (m *CreateDemandsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("demands")
}

// -------- 0004: offers --------

type CreateOffersTable struct{}

func (m *CreateOffersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Offer{})
}

func (m *CreateOffersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("offers")
}

// -------- 0005: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

// -------- 0006: favorites --------

type CreateFavoritesTable struct{}

func (m *CreateFavoritesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Favorite{})
}

func (m *CreateFavoritesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("favorites")
}

// -------- 0007: notifications + failed_jobs --------
// Boot also creates these via UseDB; the explicit migration keeps
// fresh-from-CLI databases complete without a server start.

type CreateSystemTables struct{}

func (m *CreateSystemTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&notify.Record{}, &queue.FailedJobRecord{})
}

func (m *CreateSystemTables) Down(db *gorm.DB) error {
	if err := db.Migrator().DropTable("notifications"); err != nil {
		return err
	}
	return db.Migrator().DropTable("failed_jobs")
}
