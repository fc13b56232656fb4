// Package listeners wires domain events to their side effects. Services
// fire the events and stay unaware of transport: the wiring here feeds
// listing mutations to the change feed and turns offers and signups into
// notifications.
package listeners

import (
	"github.com/agriconnect-ug/agriconnect/app/jobs"
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/event"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/notify"
	"github.com/agriconnect-ug/agriconnect/pkg/queue"
	"github.com/agriconnect-ug/agriconnect/pkg/realtime"
)

// Register attaches every listener to the dispatcher. Call once at boot,
// after the hub is running.
func Register(hub *realtime.Hub) {
	event.Listen("listing.created", func(payload any) {
		if l, ok := payload.(models.Listing); ok {
			hub.Publish(listingChange(realtime.OpInsert, l))
		}
	})

	event.Listen("listing.updated", func(payload any) {
		if l, ok := payload.(models.Listing); ok {
			hub.Publish(listingChange(realtime.OpUpdate, l))
		}
	})

	event.Listen("listing.deleted", func(payload any) {
		if l, ok := payload.(models.Listing); ok {
			hub.Publish(realtime.Change{
				Table: services.ListingsTable,
				Op:    realtime.OpDelete,
				ID:    l.ID,
				Attrs: map[string]string{"category": l.Category},
			})
		}
	})

	event.Listen("offer.sent", func(payload any) {
		offer, ok := payload.(models.Offer)
		if !ok {
			return
		}
		if err := queue.Dispatch(&jobs.OfferNotificationJob{OfferID: offer.ID}); err != nil {
			logger.Error("listeners: dispatch offer notification", "offer_id", offer.ID, "error", err)
		}
	})

	event.Listen("user.registered", func(payload any) {
		u, ok := payload.(models.User)
		if !ok {
			return
		}
		logger.Info("user registered", "user_id", u.ID, "role", u.Role, "district", u.District)
		notify.SendAsync(u.Email, signupNotice{User: u})
	})
}

// listingChange builds the insert/update change with the full row attached.
// Category rides along as a filterable attribute for subscriptions like
// "only vegetables".
func listingChange(op realtime.Op, l models.Listing) realtime.Change {
	return realtime.Change{
		Table:  services.ListingsTable,
		Op:     op,
		ID:     l.ID,
		Record: l,
		Attrs:  map[string]string{"category": l.Category},
	}
}
