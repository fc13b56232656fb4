package controllers

import (
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/geo"
)

// MarketController serves the browse surfaces off the live snapshot: the
// search/filter/sort endpoint, the trending leaderboards, and the open
// demands farmers match against.
type MarketController struct {
	market  *services.MarketService
	demands *services.DemandService
}

func NewMarketController(market *services.MarketService) *MarketController {
	return &MarketController{
		market:  market,
		demands: services.NewDemandService(),
	}
}

// Listings runs the search reducer over the live snapshot. All matching
// rows come back; the page does not paginate.
func (mc *MarketController) Listings(c *ctx.Context) {
	criteria := services.Criteria{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Quality:  c.Query("quality"),
		Sort:     c.DefaultQuery("sort", services.SortNewest),
	}

	if max, ok := c.QueryFloat("max_price"); ok {
		criteria.MaxPrice = &max
	}

	lat, latOK := c.QueryFloat("lat")
	lng, lngOK := c.QueryFloat("lng")
	if latOK && lngOK {
		criteria.Origin = &geo.Point{Lat: lat, Lng: lng}
	}
	if radius, ok := c.QueryFloat("radius_km"); ok {
		criteria.RadiusKM = geo.ClampRadius(radius)
	}

	rows := mc.market.Browse(criteria)
	c.Success(map[string]any{
		"listings": rows,
		"count":    len(rows),
	})
}

// Trending returns the top crops and farmers by listing count.
func (mc *MarketController) Trending(c *ctx.Context) {
	c.Success(mc.market.Trending())
}

// Demands returns all open buyer demands for the matching page.
func (mc *MarketController) Demands(c *ctx.Context) {
	demands, err := mc.demands.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(demands)
}
