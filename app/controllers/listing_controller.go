package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/app/resources"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
	"github.com/agriconnect-ug/agriconnect/pkg/resource"
	"github.com/agriconnect-ug/agriconnect/pkg/validate"
)

// maxPhotoBytes caps listing photo uploads at 8 MB.
const maxPhotoBytes = 8 << 20

// ListingController serves the listing CRUD surface for farmers and the
// read/contact surface for everyone.
type ListingController struct {
	service *services.ListingService
}

func NewListingController() *ListingController {
	return &ListingController{service: services.NewListingService()}
}

// Create inserts a listing from the multipart form, uploading the photo
// when one is attached. Validation runs before any write.
func (lc *ListingController) Create(c *ctx.Context) {
	if err := c.R.ParseMultipartForm(maxPhotoBytes); err != nil {
		c.ValidationError(map[string]string{"form": "The form could not be parsed."})
		return
	}

	quantity, _ := c.FormFloat("quantity")
	price, _ := c.FormFloat("price")
	input := services.ListingInput{
		Crop:        c.PostForm("crop"),
		Category:    c.PostForm("category"),
		Variety:     c.PostForm("variety"),
		Quality:     c.PostForm("quality"),
		Quantity:    quantity,
		Unit:        c.PostForm("unit"),
		Price:       price,
		District:    c.PostForm("district"),
		Description: c.PostForm("description"),
	}

	lat, latOK := c.FormFloat("lat")
	lng, lngOK := c.FormFloat("lng")
	if latOK && lngOK {
		input.Lat = &lat
		input.Lng = &lng
	}

	if errs := validate.Struct(input); validate.HasErrors(errs) {
		c.ValidationError(errs)
		return
	}

	photo, header, err := c.FormFile("photo")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		c.ValidationError(map[string]string{"photo": "The photo could not be read."})
		return
	}

	var (
		photoReader io.Reader
		photoName   string
	)
	if photo != nil {
		defer photo.Close()
		photoReader = photo
		photoName = header.Filename
	}

	farmerID := middleware.UserIDFromCtx(c.Context())

	listing, err := lc.service.Create(farmerID, input, photoReader, photoName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Created(listing)
}

// Index runs the declarative select: equality filters, newest first,
// optional limit.
func (lc *ListingController) Index(c *ctx.Context) {
	filter := repositories.ListingFilter{
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit", 0),
	}

	if raw := c.Query("farmer_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.FarmerID = uint(id)
		}
	}
	if available, ok := c.QueryBool("available"); ok {
		filter.Available = &available
	}

	listings, err := lc.service.Select(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(listings)
}

// Show returns one listing with contact links attached.
func (lc *ListingController) Show(c *ctx.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	listing, err := lc.service.Find(id)
	if err != nil {
		respondError(c, err)
		return
	}

	resource.New(&resources.ListingResource{}, listing).Respond(c.W)
}

// Delete removes the caller's listing (admins may remove any). Feeds see
// a DELETE change event.
func (lc *ListingController) Delete(c *ctx.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	userID := middleware.UserIDFromCtx(c.Context())
	role := middleware.RoleFromCtx(c.Context())

	if err := lc.service.Delete(userID, role, id); err != nil {
		respondError(c, err)
		return
	}

	c.Success(map[string]any{"deleted": id})
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

// Availability flips the listing's availability flag. Turning it off
// removes the row from every subscriber's view.
func (lc *ListingController) Availability(c *ctx.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req availabilityRequest
	if !c.BindJSON(&req) {
		return
	}
	if req.Available == nil {
		c.ValidationError(map[string]string{"available": "The available field is required."})
		return
	}

	userID := middleware.UserIDFromCtx(c.Context())
	role := middleware.RoleFromCtx(c.Context())

	listing, err := lc.service.SetAvailability(userID, role, id, *req.Available)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(listing)
}

// Contact returns the tel: and wa.me deep links for the listing's seller.
func (lc *ListingController) Contact(c *ctx.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	links, err := lc.service.Contact(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(links)
}
