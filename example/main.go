// Package main walks the marketplace API end to end: a farmer signs up
// and lists a crop, then a guest browses the market, pulls the contact
// links and shortlists the listing.
//
// To run this walkthrough:
//
//	go run ./cmd/agriconnect serve
//	# Then, in another terminal:
//	go run ./example
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
)

var base = "http://localhost:8080"

// envelope mirrors the API's response wrapper.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	if v := os.Getenv("AGRICONNECT_URL"); v != "" {
		base = strings.TrimRight(v, "/")
	}
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	// A fresh signup answers 201; on re-runs the account already exists
	// and only the signin below matters.
	signup := map[string]any{
		"first_name":            "Amina",
		"last_name":             "Nakato",
		"email":                 "amina@coop.ug",
		"phone":                 "+256700000009",
		"password":              "arabica-2026",
		"password_confirmation": "arabica-2026",
		"role":                  "farmer",
		"district":              "Mbale",
	}
	if env, err := postJSON(client, "/api/auth/signup", "", signup); err == nil {
		fmt.Println("signup:", env.Message)
	}

	env, err := postJSON(client, "/api/auth/signin", "", map[string]any{
		"email":    "amina@coop.ug",
		"password": "arabica-2026",
	})
	if err != nil {
		log.Fatalf("signin: %v", err)
	}
	var signin struct {
		Token string `json:"token"`
		Next  string `json:"next"`
	}
	if err := json.Unmarshal(env.Data, &signin); err != nil {
		log.Fatalf("signin: decode: %v", err)
	}
	fmt.Println("signed in, landing on", signin.Next)

	listingID, err := createListing(client, signin.Token)
	if err != nil {
		log.Fatalf("create listing: %v", err)
	}
	fmt.Println("listed arabica coffee as listing", listingID)

	// Everything below is the buyer side and needs no account at all.
	env, err = getJSON(client, "/api/market/listings?q=coffee&sort=price_asc")
	if err != nil {
		log.Fatalf("browse market: %v", err)
	}
	var market struct {
		Count    int `json:"count"`
		Listings []struct {
			ID       uint    `json:"ID"`
			Crop     string  `json:"crop"`
			Price    float64 `json:"price"`
			Unit     string  `json:"unit"`
			District string  `json:"district"`
		} `json:"listings"`
	}
	if err := json.Unmarshal(env.Data, &market); err != nil {
		log.Fatalf("browse market: decode: %v", err)
	}
	fmt.Printf("market has %d coffee listing(s)\n", market.Count)
	for _, l := range market.Listings {
		fmt.Printf("  #%d %s at %.0f UGX/%s in %s\n", l.ID, l.Crop, l.Price, l.Unit, l.District)
	}

	env, err = getJSON(client, fmt.Sprintf("/api/listings/%d/contact", listingID))
	if err != nil {
		log.Fatalf("contact links: %v", err)
	}
	var contact struct {
		Tel      string `json:"tel"`
		WhatsApp string `json:"whatsapp"`
	}
	if err := json.Unmarshal(env.Data, &contact); err != nil {
		log.Fatalf("contact links: decode: %v", err)
	}
	fmt.Println("call the farmer:", contact.Tel)
	fmt.Println("or message them:", contact.WhatsApp)

	// The shortlist rides the session cookie the jar picked up above, so
	// the guest gets their favorites back without ever signing in.
	if _, err := postJSON(client, "/api/favorites", "", map[string]any{"listing_id": listingID}); err != nil {
		log.Fatalf("favorite: %v", err)
	}
	env, err = getJSON(client, "/api/favorites")
	if err != nil {
		log.Fatalf("favorites: %v", err)
	}
	var favorites struct {
		ListingIDs []uint `json:"listing_ids"`
	}
	if err := json.Unmarshal(env.Data, &favorites); err != nil {
		log.Fatalf("favorites: decode: %v", err)
	}
	fmt.Println("shortlisted listings:", favorites.ListingIDs)
}

// ─── HTTP helpers ──────────────────────────────────────────────────────────

func postJSON(client *http.Client, path, token string, body any) (envelope, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return envelope{}, err
	}
	req, err := http.NewRequest(http.MethodPost, base+path, bytes.NewReader(raw))
	if err != nil {
		return envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(client, req, token)
}

func getJSON(client *http.Client, path string) (envelope, error) {
	req, err := http.NewRequest(http.MethodGet, base+path, nil)
	if err != nil {
		return envelope{}, err
	}
	return do(client, req, "")
}

// createListing posts the multipart form the listing endpoint expects.
// The photo part is optional and the walkthrough skips it.
func createListing(client *http.Client, token string) (uint, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := map[string]string{
		"crop":        "Coffee",
		"category":    "cash crops",
		"variety":     "Arabica",
		"quality":     "grade a",
		"quantity":    "120",
		"unit":        "kg",
		"price":       "9500",
		"district":    "Mbale",
		"description": "Sun-dried, hand sorted, ready for pickup at the Mbale store.",
	}
	for k, v := range fields {
		form.WriteField(k, v) //nolint:errcheck
	}
	if err := form.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, base+"/api/listings", &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	env, err := do(client, req, token)
	if err != nil {
		return 0, err
	}

	var listing struct {
		ID uint `json:"ID"`
	}
	if err := json.Unmarshal(env.Data, &listing); err != nil {
		return 0, err
	}
	return listing.ID, nil
}

// do sends the request and decodes the response wrapper, turning any
// non-2xx answer into an error carrying the server's message.
func do(client *http.Client, req *http.Request, token string) (envelope, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return envelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, raw)
	}
	if resp.StatusCode >= 300 {
		return env, fmt.Errorf("HTTP %d: %s", resp.StatusCode, env.Message)
	}
	return env, nil
}
