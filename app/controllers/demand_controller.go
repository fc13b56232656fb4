package controllers

import (
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
)

// DemandController serves the buyer side of market matching.
type DemandController struct {
	service *services.DemandService
}

func NewDemandController() *DemandController {
	return &DemandController{service: services.NewDemandService()}
}

// Create opens a demand for the signed-in buyer.
func (dc *DemandController) Create(c *ctx.Context) {
	var input services.DemandInput
	if !c.BindJSON(&input) {
		return
	}

	buyerID := middleware.UserIDFromCtx(c.Context())

	demand, err := dc.service.Create(buyerID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Created(demand)
}

// Index returns the buyer's own demands.
func (dc *DemandController) Index(c *ctx.Context) {
	buyerID := middleware.UserIDFromCtx(c.Context())

	demands, err := dc.service.ForBuyer(buyerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(demands)
}

type demandStatusRequest struct {
	Status string `json:"status" validate:"required,in=open,paused,closed"`
}

// UpdateStatus moves a demand between open, paused, and closed.
func (dc *DemandController) UpdateStatus(c *ctx.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req demandStatusRequest
	if !c.BindJSON(&req) {
		return
	}

	buyerID := middleware.UserIDFromCtx(c.Context())

	demand, err := dc.service.UpdateStatus(buyerID, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(demand)
}
