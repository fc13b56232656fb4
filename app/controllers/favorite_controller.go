package controllers

import (
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/collection"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
	"github.com/agriconnect-ug/agriconnect/pkg/session"
)

// sessionFavoritesKey holds a guest's favorite listing ids in the cookie
// session, standing in for the browser-local list signed-out users had.
const sessionFavoritesKey = "favorites"

// FavoriteController manages the listing shortlist: database-backed for
// signed-in users, session-backed for guests.
type FavoriteController struct {
	favorites *repositories.FavoriteRepository
	feed      *services.LiveFeed
}

func NewFavoriteController(feed *services.LiveFeed) *FavoriteController {
	return &FavoriteController{favorites: repositories.NewFavoriteRepository(), feed: feed}
}

// Index returns the caller's favorite ids together with the favorited
// rows still on the market. A sold or withdrawn listing keeps its id in
// the shortlist but contributes no row.
func (fc *FavoriteController) Index(c *ctx.Context) {
	var ids []uint
	if userID := middleware.UserIDFromCtx(c.Context()); userID != 0 {
		stored, err := fc.favorites.ListingIDs(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		ids = stored
	} else {
		ids = guestFavorites(session.FromCtx(c.R))
	}

	byID := collection.KeyBy(fc.feed.Snapshot(), func(l models.Listing) uint { return l.ID })
	live := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			live = append(live, l)
		}
	}

	c.Success(map[string]any{"listing_ids": ids, "listings": live})
}

type favoriteRequest struct {
	ListingID uint `json:"listing_id" validate:"required,gt=0"`
}

// Store favorites a listing. Doing it twice is a no-op.
func (fc *FavoriteController) Store(c *ctx.Context) {
	var req favoriteRequest
	if !c.BindJSON(&req) {
		return
	}

	if userID := middleware.UserIDFromCtx(c.Context()); userID != 0 {
		if err := fc.favorites.Add(userID, req.ListingID); err != nil {
			respondError(c, err)
			return
		}
		c.Created(map[string]any{"listing_id": req.ListingID})
		return
	}

	sess := session.FromCtx(c.R)
	ids := guestFavorites(sess)
	already := collection.Contains(ids, func(existing uint) bool { return existing == req.ListingID })
	if !already {
		saveGuestFavorites(c, sess, append(ids, req.ListingID))
	}
	c.Created(map[string]any{"listing_id": req.ListingID})
}

// Destroy unfavorites a listing.
func (fc *FavoriteController) Destroy(c *ctx.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if userID := middleware.UserIDFromCtx(c.Context()); userID != 0 {
		if err := fc.favorites.Remove(userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Success(map[string]any{"removed": id})
		return
	}

	sess := session.FromCtx(c.R)
	kept := collection.Filter(guestFavorites(sess), func(existing uint) bool { return existing != id })
	saveGuestFavorites(c, sess, kept)
	c.Success(map[string]any{"removed": id})
}

// guestFavorites reads the id list back out of the session. Values come
// back as JSON numbers after the Redis round trip, or as the original
// []uint within the request that set them. The session is client-adjacent
// state, so the list is de-duplicated on every read.
func guestFavorites(sess *session.Session) []uint {
	raw, ok := sess.Get(sessionFavoritesKey)
	if !ok {
		return nil
	}

	switch items := raw.(type) {
	case []uint:
		return collection.Unique(items)
	case []interface{}:
		ids := make([]uint, 0, len(items))
		for _, item := range items {
			if n, ok := item.(float64); ok && n > 0 {
				ids = append(ids, uint(n))
			}
		}
		return collection.Unique(ids)
	}
	return nil
}

func saveGuestFavorites(c *ctx.Context, sess *session.Session, ids []uint) {
	sess.Set(sessionFavoritesKey, ids)
	sess.Save(c.W) //nolint:errcheck
}
