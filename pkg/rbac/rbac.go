// Package rbac gates routes by account role. The marketplace has three:
// farmers sell, buyers post demands, admins moderate. Guards read the role
// middleware.Auth stored in the request context, so they mount after it.
package rbac

import (
	"net/http"

	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
	"github.com/agriconnect-ug/agriconnect/pkg/response"
)

// HasRole admits only callers whose token carries one of the given roles.
// Guests (no token) are refused outright.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := middleware.RoleFromCtx(r.Context())
			if got == "" {
				response.Unauthorized(w)
				return
			}
			for _, want := range roles {
				if got == want {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w)
		})
	}
}

// Guest refuses signed-in callers. Mounted on signup and signin so a held
// token cannot be used to mint accounts or sessions on top of itself.
func Guest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.UserIDFromCtx(r.Context()) != 0 {
			response.Error(w, http.StatusConflict, "Already signed in.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
