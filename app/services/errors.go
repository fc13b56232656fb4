// Package services holds the domain logic between controllers and
// repositories: auth flows, the market browse reducers, the live listing
// feed, and the offer/demand matching flow.
package services

import "errors"

// Domain error kinds. Controllers map these to fixed user-facing messages
// so raw backend error text never reaches the client.
var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("action not allowed")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")
	ErrDemandNotOpen      = errors.New("demand is not open")
)
