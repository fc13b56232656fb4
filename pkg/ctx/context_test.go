package ctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	appctx "github.com/agriconnect-ug/agriconnect/pkg/ctx"
)

func serve(t *testing.T, method, target, body string, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestSuccessEnvelope(t *testing.T) {
	rec := serve(t, http.MethodGet, "/", "", func(c *appctx.Context) {
		c.Success(map[string]any{"crop": "Coffee"})
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"success"`) {
		t.Errorf("expected success envelope, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"crop":"Coffee"`) {
		t.Errorf("expected data in body, got %s", rec.Body.String())
	}
}

func TestParam(t *testing.T) {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", "42")
	req := httptest.NewRequest(http.MethodGet, "/listings/42", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		if got := c.Param("id"); got != "42" {
			t.Errorf("expected 42, got %s", got)
		}
		c.Success(nil)
	})(rec, req)
}

func TestQueryHelpers(t *testing.T) {
	target := "/listings?q=matooke&max_price=5000&lat=0.3476&available=true&page=3"
	serve(t, http.MethodGet, target, "", func(c *appctx.Context) {
		if got := c.Query("q"); got != "matooke" {
			t.Errorf("expected matooke, got %s", got)
		}
		if got := c.DefaultQuery("sort", "newest"); got != "newest" {
			t.Errorf("expected fallback newest, got %s", got)
		}
		if v, ok := c.QueryFloat("max_price"); !ok || v != 5000 {
			t.Errorf("expected 5000, got %v (ok=%v)", v, ok)
		}
		if v, ok := c.QueryFloat("lat"); !ok || v != 0.3476 {
			t.Errorf("expected 0.3476, got %v (ok=%v)", v, ok)
		}
		if _, ok := c.QueryFloat("lng"); ok {
			t.Error("expected missing lng to report !ok")
		}
		if got := c.QueryInt("page", 1); got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
		if got := c.QueryInt("per_page", 20); got != 20 {
			t.Errorf("expected fallback 20, got %d", got)
		}
		if v, ok := c.QueryBool("available"); !ok || !v {
			t.Errorf("expected available=true, got %v (ok=%v)", v, ok)
		}
		if _, ok := c.QueryBool("verified"); ok {
			t.Error("expected missing verified to report !ok")
		}
		c.Success(nil)
	})
}

func TestFormFloat(t *testing.T) {
	form := "quantity=120.5&price=abc"
	req := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		if v, ok := c.FormFloat("quantity"); !ok || v != 120.5 {
			t.Errorf("expected 120.5, got %v (ok=%v)", v, ok)
		}
		if _, ok := c.FormFloat("price"); ok {
			t.Error("expected non-numeric price to report !ok")
		}
		c.Success(nil)
	})(rec, req)
}

func TestBindJSONValid(t *testing.T) {
	body := `{"crop":"Coffee","email":"amina@example.com"}`
	rec := serve(t, http.MethodPost, "/", body, func(c *appctx.Context) {
		var input struct {
			Crop  string `json:"crop"  validate:"required"`
			Email string `json:"email" validate:"required,email"`
		}
		if !c.BindJSON(&input) {
			t.Error("expected BindJSON to succeed")
			return
		}
		if input.Crop != "Coffee" {
			t.Errorf("expected Coffee, got %s", input.Crop)
		}
		c.Success(nil)
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestBindJSONValidationFailure(t *testing.T) {
	rec := serve(t, http.MethodPost, "/", `{"crop":""}`, func(c *appctx.Context) {
		var input struct {
			Crop string `json:"crop" validate:"required"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail")
		}
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "The crop field is required.") {
		t.Errorf("expected field message, got %s", rec.Body.String())
	}
}

func TestBindJSONMalformedBody(t *testing.T) {
	rec := serve(t, http.MethodPost, "/", `{"crop":`, func(c *appctx.Context) {
		var input struct {
			Crop string `json:"crop"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail on malformed body")
		}
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded_for", map[string]string{"X-Forwarded-For": "41.210.1.9, 10.0.0.1"}, "10.0.0.2:9000", "41.210.1.9"},
		{"real_ip", map[string]string{"X-Real-IP": "41.210.1.9"}, "10.0.0.2:9000", "41.210.1.9"},
		{"remote_addr", nil, "41.210.1.9:51000", "41.210.1.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			appctx.Wrap(func(c *appctx.Context) {
				if got := c.ClientIP(); got != tc.want {
					t.Errorf("expected %s, got %s", tc.want, got)
				}
				c.Success(nil)
			})(rec, req)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	rec := serve(t, http.MethodGet, "/", "", func(c *appctx.Context) {
		c.NotFound()
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = serve(t, http.MethodGet, "/", "", func(c *appctx.Context) {
		c.Error(http.StatusConflict, "An account with this email already exists.")
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Errorf("expected conflict message, got %s", rec.Body.String())
	}
}
