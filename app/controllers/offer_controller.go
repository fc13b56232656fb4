package controllers

import (
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
)

// OfferController serves the farmer side of market matching.
type OfferController struct {
	service *services.OfferService
}

func NewOfferController() *OfferController {
	return &OfferController{service: services.NewOfferService()}
}

type offerRequest struct {
	ListingID uint `json:"listing_id" validate:"required,gt=0"`
	DemandID  uint `json:"demand_id" validate:"required,gt=0"`
}

// Create sends an offer from one of the farmer's listings to an open
// demand. Sending twice creates two offers.
func (oc *OfferController) Create(c *ctx.Context) {
	var req offerRequest
	if !c.BindJSON(&req) {
		return
	}

	farmerID := middleware.UserIDFromCtx(c.Context())

	offer, err := oc.service.Send(farmerID, req.ListingID, req.DemandID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Created(offer)
}

// Index returns the caller's offers: sent for farmers, received for
// buyers.
func (oc *OfferController) Index(c *ctx.Context) {
	userID := middleware.UserIDFromCtx(c.Context())
	role := middleware.RoleFromCtx(c.Context())

	offers, err := oc.service.For(userID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(offers)
}
