// Package controllers maps HTTP requests onto the services layer. Every
// handler takes a *ctx.Context and is mounted through ctx.Wrap in
// app/routes.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

// respondError maps domain error kinds onto fixed user-facing messages.
// Raw backend error text never reaches the client; unknown errors are
// logged and reduced to a generic message.
func respondError(c *ctx.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDuplicateAccount):
		c.Error(http.StatusConflict, "An account with this email already exists.")
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Error(http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, services.ErrRateLimited):
		c.Error(http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
	case errors.Is(err, services.ErrNotFound):
		c.NotFound()
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden()
	case errors.Is(err, services.ErrDemandNotOpen):
		c.Error(http.StatusUnprocessableEntity, "This demand is no longer open.")
	case errors.Is(err, services.ErrPhotoUpload):
		c.Error(http.StatusInternalServerError, "Photo upload failed. Please try again.")
	default:
		logger.WithCtx(c.Context()).Error("request failed", "error", err)
		c.Error(http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// paramID parses the {id} path parameter. On garbage it writes a 422 and
// returns false.
func paramID(c *ctx.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.ValidationError(map[string]string{"id": "The id must be a positive integer."})
		return 0, false
	}
	return uint(id), true
}
