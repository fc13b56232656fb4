package controllers

import (
	"fmt"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/app/resources"
	"github.com/agriconnect-ug/agriconnect/pkg/collection"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/event"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
	"github.com/agriconnect-ug/agriconnect/pkg/resource"
	"github.com/agriconnect-ug/agriconnect/pkg/storage"
)

// AdminController serves the operator surface. Every route here sits
// behind the admin role guard.
type AdminController struct {
	users    *repositories.UserRepository
	listings *repositories.ListingRepository
	demands  *repositories.DemandRepository
	orders   *repositories.OrderRepository
}

func NewAdminController() *AdminController {
	return &AdminController{
		users:    repositories.NewUserRepository(),
		listings: repositories.NewListingRepository(),
		demands:  repositories.NewDemandRepository(),
		orders:   repositories.NewOrderRepository(),
	}
}

// Users lists accounts, newest first, one page at a time.
func (ac *AdminController) Users(c *ctx.Context) {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 15)

	users, pagination, err := ac.users.All(page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}

	resource.CollectionOf(&resources.UserResource{}, users).
		WithPagination(pagination).
		Respond(c.W)
}

// Stats aggregates the operator dashboard counters. Traded value is the
// sum of quantity times agreed unit price over completed orders.
func (ac *AdminController) Stats(c *ctx.Context) {
	users, err := ac.users.Count()
	if err != nil {
		respondError(c, err)
		return
	}
	live, err := ac.listings.CountAvailable()
	if err != nil {
		respondError(c, err)
		return
	}
	open, err := ac.demands.CountOpen()
	if err != nil {
		respondError(c, err)
		return
	}
	completed, err := ac.orders.Completed()
	if err != nil {
		respondError(c, err)
		return
	}

	traded := collection.Sum(completed, func(o models.Order) float64 {
		return o.Quantity * o.Price
	})

	c.Success(map[string]any{
		"users":            users,
		"live_listings":    live,
		"open_demands":     open,
		"completed_orders": len(completed),
		"traded_value":     traded,
	})
}

// RemoveUser deletes an account and everything it sells: each listing row
// goes out as a DELETE event so live feeds drop it, then the account's
// whole photo directory is wiped in one call. Offers and orders stay
// untouched as the trade history. Admin accounts cannot be removed over
// the API.
func (ac *AdminController) RemoveUser(c *ctx.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	user, err := ac.users.FindByID(id)
	if err != nil {
		if orm.IsNotFound(err) {
			c.NotFound()
			return
		}
		respondError(c, err)
		return
	}
	if user.Role == models.RoleAdmin {
		c.Forbidden()
		return
	}

	listings, err := ac.listings.Select(repositories.ListingFilter{FarmerID: user.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	for _, l := range listings {
		if err := ac.listings.Delete(&l); err != nil {
			respondError(c, err)
			return
		}
		event.Fire("listing.deleted", l)
	}
	if len(listings) > 0 {
		if err := storage.DeletePrefix(fmt.Sprintf("listings/farmer_%d", user.ID)); err != nil {
			logger.Warn("remove user: wipe photo directory", "user_id", user.ID, "error", err)
		}
	}

	if err := ac.users.Delete(&user); err != nil {
		respondError(c, err)
		return
	}

	logger.Info("account removed", "user_id", user.ID, "role", user.Role, "listings", len(listings))
	c.Success(map[string]any{"deleted": user.ID, "listings_removed": len(listings)})
}
