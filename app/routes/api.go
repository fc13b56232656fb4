// Package routes mounts the API surface onto the router. Endpoints are
// grouped the way clients consume them: the auth flow, public market
// browsing, role-guarded write surfaces and the realtime change feed.
package routes

import (
	"github.com/agriconnect-ug/agriconnect/app/controllers"
	"github.com/agriconnect-ug/agriconnect/app/graph"
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/gql"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
	"github.com/agriconnect-ug/agriconnect/pkg/rbac"
	"github.com/agriconnect-ug/agriconnect/pkg/realtime"
	"github.com/agriconnect-ug/agriconnect/pkg/router"
)

// Deps carries the shared resources built once at boot and injected into
// the controllers that need them.
type Deps struct {
	Hub  *realtime.Hub
	Feed *services.LiveFeed
}

// RegisterAPI mounts every endpoint under /api.
func RegisterAPI(r *router.Router, d Deps) {
	auth := controllers.NewAuthController()
	market := controllers.NewMarketController(services.NewMarketService(d.Feed))
	listings := controllers.NewListingController()
	demands := controllers.NewDemandController()
	offers := controllers.NewOfferController()
	profile := controllers.NewProfileController()
	favorites := controllers.NewFavoriteController(d.Feed)
	admin := controllers.NewAdminController()
	feed := controllers.NewRealtimeController(d.Hub)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", "auth.signup", ctx.Wrap(auth.Signup), middleware.AuthOptional, rbac.Guest)
	authGroup.Post("/signin", "auth.signin", ctx.Wrap(auth.Signin), middleware.AuthOptional, rbac.Guest)
	authGroup.Get("/verify", "auth.verify", ctx.Wrap(auth.Verify))
	authGroup.Get("/session", "auth.session", ctx.Wrap(auth.Session), middleware.Auth)
	authGroup.Post("/signout", "auth.signout", ctx.Wrap(auth.Signout), middleware.AuthOptional)

	api.Get("/market/listings", "market.listings", ctx.Wrap(market.Listings))
	api.Get("/market/trending", "market.trending", ctx.Wrap(market.Trending))
	api.Get("/market/demands", "market.demands", ctx.Wrap(market.Demands))

	if schema, err := graph.NewSchema(d.Feed); err != nil {
		logger.Error("build graphql schema", "error", err)
	} else {
		api.Post("/gql", "market.gql", gql.Handler(schema))
	}

	api.Get("/listings", "listings.index", ctx.Wrap(listings.Index))
	api.Get("/listings/{id}", "listings.show", ctx.Wrap(listings.Show))
	api.Get("/listings/{id}/contact", "listings.contact", ctx.Wrap(listings.Contact))
	api.Post("/listings", "listings.create", ctx.Wrap(listings.Create),
		middleware.Auth, rbac.HasRole(models.RoleFarmer))
	api.Delete("/listings/{id}", "listings.delete", ctx.Wrap(listings.Delete),
		middleware.Auth, rbac.HasRole(models.RoleFarmer, models.RoleAdmin))
	api.Patch("/listings/{id}/availability", "listings.availability", ctx.Wrap(listings.Availability),
		middleware.Auth, rbac.HasRole(models.RoleFarmer, models.RoleAdmin))

	api.Post("/demands", "demands.create", ctx.Wrap(demands.Create),
		middleware.Auth, rbac.HasRole(models.RoleBuyer))
	api.Get("/demands", "demands.index", ctx.Wrap(demands.Index),
		middleware.Auth, rbac.HasRole(models.RoleBuyer))
	api.Patch("/demands/{id}/status", "demands.status", ctx.Wrap(demands.UpdateStatus),
		middleware.Auth, rbac.HasRole(models.RoleBuyer))

	api.Post("/offers", "offers.create", ctx.Wrap(offers.Create),
		middleware.Auth, rbac.HasRole(models.RoleFarmer))
	api.Get("/offers", "offers.index", ctx.Wrap(offers.Index),
		middleware.Auth, rbac.HasRole(models.RoleFarmer, models.RoleBuyer))

	api.Get("/orders", "orders.index", ctx.Wrap(profile.Orders), middleware.Auth)
	api.Get("/categories", "categories.index", ctx.Wrap(profile.Categories))

	api.Get("/notifications", "notifications.index", ctx.Wrap(profile.Notifications), middleware.Auth)
	api.Post("/notifications/read", "notifications.read", ctx.Wrap(profile.ReadNotifications), middleware.Auth)

	api.Get("/favorites", "favorites.index", ctx.Wrap(favorites.Index), middleware.AuthOptional)
	api.Post("/favorites", "favorites.store", ctx.Wrap(favorites.Store), middleware.AuthOptional)
	api.Delete("/favorites/{id}", "favorites.destroy", ctx.Wrap(favorites.Destroy), middleware.AuthOptional)

	adminGroup := api.Group("/admin", middleware.Auth, rbac.HasRole(models.RoleAdmin))
	adminGroup.Get("/users", "admin.users", ctx.Wrap(admin.Users))
	adminGroup.Delete("/users/{id}", "admin.users.remove", ctx.Wrap(admin.RemoveUser))
	adminGroup.Get("/stats", "admin.stats", ctx.Wrap(admin.Stats))

	api.Get("/realtime/ws", "realtime.ws", ctx.Wrap(feed.WS))
	api.Get("/realtime/sse", "realtime.sse", ctx.Wrap(feed.SSE))
}
