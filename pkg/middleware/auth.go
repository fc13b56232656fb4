package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/agriconnect-ug/agriconnect/pkg/auth"
	"github.com/agriconnect-ug/agriconnect/pkg/response"
)

type userIDKey struct{}
type roleKey struct{}

// Auth rejects requests without a valid Bearer token and stores the
// token's user ID and role in the request context for downstream
// handlers and the rbac guards.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromHeader(r)
		if !ok {
			response.Unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// AuthOptional attaches the user ID and role when a valid Bearer token is
// present and lets the request through either way. Used on routes that
// serve both guests and signed-in users (favorites, market browse).
func AuthOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := claimsFromHeader(r); ok {
			r = r.WithContext(withClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFromHeader(r *http.Request) (*auth.Claims, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return nil, false
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, claims.UserID)
	return context.WithValue(ctx, roleKey{}, claims.Role)
}

// UserIDFromCtx returns the authenticated user's ID, or 0 for guests.
func UserIDFromCtx(ctx context.Context) uint {
	if id, ok := ctx.Value(userIDKey{}).(uint); ok {
		return id
	}
	return 0
}

// RoleFromCtx returns the authenticated user's role, or "" for guests.
func RoleFromCtx(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey{}).(string); ok {
		return role
	}
	return ""
}
