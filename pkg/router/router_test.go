package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agriconnect-ug/agriconnect/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupPrefixAndMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(label string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, label)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New()
	api := r.Group("/api", tag("group"))
	api.Get("/listings", "listings.index", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(order) != 2 || order[0] != "group" || order[1] != "route" {
		t.Errorf("expected group middleware to run first, got %v", order)
	}
}

func TestURL(t *testing.T) {
	r := router.New()
	r.Get("/api/listings/{id}", "listings.show", ok)

	url, err := r.URL("listings.show", map[string]string{"id": "7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "/api/listings/7" {
		t.Errorf("expected /api/listings/7, got %s", url)
	}

	if _, err := r.URL("listings.show", nil); err == nil {
		t.Error("expected error for missing id parameter")
	}
	if _, err := r.URL("listings.missing", nil); err == nil {
		t.Error("expected error for unknown route name")
	}
}

func TestRoutesTable(t *testing.T) {
	r := router.New()
	r.Get("/api/listings", "listings.index", ok)
	r.Post("/api/listings", "listings.create", ok)

	routes := r.Routes()
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].Method != http.MethodGet || routes[0].Name != "listings.index" {
		t.Errorf("unexpected first route: %+v", routes[0])
	}
	if routes[1].Method != http.MethodPost || routes[1].Name != "listings.create" {
		t.Errorf("unexpected second route: %+v", routes[1])
	}
}
