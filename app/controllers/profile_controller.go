package controllers

import (
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/app/resources"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
	"github.com/agriconnect-ug/agriconnect/pkg/resource"
)

// ProfileController serves the signed-in user's surfaces: trade history,
// the category reference rows and the in-app notification feed.
type ProfileController struct {
	orders        *repositories.OrderRepository
	categories    *repositories.CategoryRepository
	notifications *repositories.NotificationRepository
	users         *repositories.UserRepository
}

func NewProfileController() *ProfileController {
	return &ProfileController{
		orders:        repositories.NewOrderRepository(),
		categories:    repositories.NewCategoryRepository(),
		notifications: repositories.NewNotificationRepository(),
		users:         repositories.NewUserRepository(),
	}
}

// Orders returns the caller's trades, rendered from their side of the
// deal.
func (pc *ProfileController) Orders(c *ctx.Context) {
	userID := middleware.UserIDFromCtx(c.Context())

	orders, err := pc.orders.ForUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resource.CollectionOf(&resources.OrderResource{UserID: userID}, orders).Respond(c.W)
}

// Categories returns the active reference rows for the form dropdowns.
func (pc *ProfileController) Categories(c *ctx.Context) {
	categories, err := pc.categories.Active()
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(categories)
}

// Notifications returns the caller's in-app feed, newest first, with the
// unread count for the badge.
func (pc *ProfileController) Notifications(c *ctx.Context) {
	user, err := pc.users.FindByID(middleware.UserIDFromCtx(c.Context()))
	if err != nil {
		respondError(c, err)
		return
	}

	rows, err := pc.notifications.ForUser(user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	unread := 0
	for _, r := range rows {
		if r.ReadAt == nil {
			unread++
		}
	}

	c.Success(map[string]interface{}{
		"notifications": rows,
		"unread":        unread,
	})
}

// ReadNotifications marks the caller's whole feed as read and reports
// how many rows changed.
func (pc *ProfileController) ReadNotifications(c *ctx.Context) {
	user, err := pc.users.FindByID(middleware.UserIDFromCtx(c.Context()))
	if err != nil {
		respondError(c, err)
		return
	}

	n, err := pc.notifications.MarkAllRead(user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(map[string]interface{}{"read": n})
}
