package kernel_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/listeners"
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/app/routes"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/internal/kernel"
	"github.com/agriconnect-ug/agriconnect/pkg/database"
	"github.com/agriconnect-ug/agriconnect/pkg/event"
	"github.com/agriconnect-ug/agriconnect/pkg/notify"
	"github.com/agriconnect-ug/agriconnect/pkg/realtime"
	"github.com/agriconnect-ug/agriconnect/pkg/testkit"
)

// newHandler assembles the full HTTP stack against a fresh in-memory
// database, the way the server boots it minus Redis, SMTP and the
// background workers. Sessions, throttles and cached reads all degrade to
// pass-through without Redis, so the handler behaves like a cold
// production instance.
func newHandler(t *testing.T) http.Handler {
	t.Helper()

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	t.Setenv("JWT_SECRET", "kernel-test-secret")
	t.Setenv("MAIL_DRIVER", "log")

	if err := database.Connect(); err != nil {
		t.Fatalf("connect database: %v", err)
	}
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Listing{},
		&models.Demand{},
		&models.Offer{},
		&models.Order{},
		&models.Favorite{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	notify.UseDB(database.DB)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := realtime.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	feed := services.NewLiveFeed(hub, repositories.NewListingRepository())
	if err := feed.Start(ctx); err != nil {
		t.Fatalf("start live feed: %v", err)
	}

	listeners.Register(hub)
	t.Cleanup(event.Flush)

	return kernel.New(routes.Deps{Hub: hub, Feed: feed})
}

// doJSON performs one request against the handler and decodes the
// response envelope.
func doJSON(t *testing.T, h http.Handler, method, path, body, token string) (int, map[string]any) {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec.Code, envelope
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// TestAPIScenarios walks the signup → signin → authorised-call flow the
// clients perform, plus the guard rails around it. Scenarios run in
// filename order and share captured values, so the tokens issued by the
// signin steps are the ones spent by the requests that follow.
func TestAPIScenarios(t *testing.T) {
	handler := newHandler(t)
	testkit.RunDir(t, handler, "testdata/api")
}

// TestNotificationsFlow covers the loop the scenario files cannot pin
// down: the welcome notice lands off the request path, so its arrival
// has to be polled for.
func TestNotificationsFlow(t *testing.T) {
	h := newHandler(t)

	status, _ := doJSON(t, h, "POST", "/api/auth/signup",
		`{"first_name":"Grace","last_name":"Atim","email":"grace@example.com","password":"cassava123","password_confirmation":"cassava123","role":"farmer","district":"Lira"}`, "")
	if status != http.StatusCreated {
		t.Fatalf("signup returned %d", status)
	}

	status, body := doJSON(t, h, "POST", "/api/auth/signin",
		`{"email":"grace@example.com","password":"cassava123"}`, "")
	if status != http.StatusOK {
		t.Fatalf("signin returned %d", status)
	}
	token, _ := dig(body, "data", "token").(string)
	if token == "" {
		t.Fatal("signin returned no token")
	}

	waitFor(t, 2*time.Second, func() bool {
		_, feed := doJSON(t, h, "GET", "/api/notifications", "", token)
		return dig(feed, "data", "unread") == float64(1)
	})

	status, body = doJSON(t, h, "POST", "/api/notifications/read", "", token)
	if status != http.StatusOK {
		t.Fatalf("mark read returned %d", status)
	}
	if got := dig(body, "data", "read"); got != float64(1) {
		t.Errorf("expected 1 row marked read, got %v", got)
	}

	_, body = doJSON(t, h, "GET", "/api/notifications", "", token)
	if got := dig(body, "data", "unread"); got != float64(0) {
		t.Errorf("expected no unread rows after mark read, got %v", got)
	}
	rows, _ := dig(body, "data", "notifications").([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(rows))
	}
	row, _ := rows[0].(map[string]any)
	if row["type"] != "user.welcome" {
		t.Errorf("expected a user.welcome row, got %v", row["type"])
	}
	if row["read_at"] == nil {
		t.Error("expected read_at to be stamped")
	}
}

// dig walks nested JSON objects and returns nil when any hop is missing.
func dig(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}
