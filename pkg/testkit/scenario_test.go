package testkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubsetIgnoresExtraKeys(t *testing.T) {
	want := []byte(`{"data": {"next": "/listings"}}`)
	got := []byte(`{"status": 200, "data": {"next": "/listings", "token": "abc"}}`)

	require.NoError(t, matchSubset(want, got))
}

func TestSubsetReportsMismatchPath(t *testing.T) {
	cases := []struct {
		name string
		want string
		got  string
		at   string
	}{
		{
			name: "wrong value",
			want: `{"data": {"next": "/listings"}}`,
			got:  `{"data": {"next": "/check-email"}}`,
			at:   "$.data.next",
		},
		{
			name: "missing key",
			want: `{"data": {"token": "abc"}}`,
			got:  `{"data": {}}`,
			at:   "$.data",
		},
		{
			name: "array length",
			want: `{"items": [1, 2]}`,
			got:  `{"items": [1]}`,
			at:   "$.items",
		},
		{
			name: "array element",
			want: `{"items": [{"crop": "maize"}]}`,
			got:  `{"items": [{"crop": "beans"}]}`,
			at:   "$.items[0].crop",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := matchSubset([]byte(tc.want), []byte(tc.got))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.at)
		})
	}
}

func TestSubsetNullAndNumber(t *testing.T) {
	got := []byte(`{"count": 3, "deleted_at": null}`)

	require.NoError(t, matchSubset([]byte(`{"count": 3, "deleted_at": null}`), got))
	require.Error(t, matchSubset([]byte(`{"count": 4}`), got))
}

func TestExtractWalksObjectsAndArrays(t *testing.T) {
	body := []byte(`{"data": {"user": {"id": 7, "verified": false}, "items": [{"crop": "maize"}]}}`)

	cases := []struct {
		path string
		want string
	}{
		{"data.user.id", "7"},
		{"data.user.verified", "false"},
		{"data.items.0.crop", "maize"},
	}
	for _, tc := range cases {
		got, err := extract(body, tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}

	_, err := extract(body, "data.user.email")
	assert.Error(t, err)
	_, err = extract(body, "data.items.3.crop")
	assert.Error(t, err)
	_, err = extract(body, "data.user")
	assert.Error(t, err, "objects are not capturable")
}

func TestExpandPlaceholders(t *testing.T) {
	vars := map[string]string{"token": "tok-123", "id": "7"}

	assert.Equal(t, "Bearer tok-123", expand("Bearer {{token}}", vars))
	assert.Equal(t, "/api/listings/7", expand("/api/listings/{{id}}", vars))
	assert.Equal(t, "no placeholders", expand("no placeholders", vars))

	// Unknown names stay verbatim so the typo shows up in the request.
	assert.Equal(t, "Bearer {{tkoen}}", expand("Bearer {{tkoen}}", vars))
}

// TestRunDirSequence drives a two-step flow against a toy API: the login
// scenario captures the issued token, the profile scenario spends it.
func TestRunDirSequence(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email != "ann@example.com" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message": "Invalid email or password."}`)
			return
		}
		fmt.Fprint(w, `{"status": 200, "data": {"token": "tok-123", "user": {"id": 7}}}`)
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message": "Unauthorized"}`)
			return
		}
		fmt.Fprint(w, `{"status": 200, "data": {"id": 7, "email": "ann@example.com"}}`)
	})

	dir := t.TempDir()
	writeScenario(t, dir, "01_login.json", `{
		"name": "login issues a token",
		"method": "POST",
		"path": "/login",
		"body": {"email": "ann@example.com"},
		"status": 200,
		"want": {"data": {"user": {"id": 7}}},
		"capture": {"token": "data.token"}
	}`)
	writeScenario(t, dir, "02_me.json", `{
		"name": "profile accepts the captured token",
		"path": "/me",
		"headers": {"Authorization": "Bearer {{token}}"},
		"status": 200,
		"want": {"data": {"id": 7}},
		"want_contains": ["ann@example.com"]
	}`)
	writeScenario(t, dir, "03_no_token.json", `{
		"name": "profile rejects a missing token",
		"path": "/me",
		"status": 401,
		"want": {"message": "Unauthorized"}
	}`)

	RunDir(t, mux, dir)
}

func TestLoadRejectsIncompleteScenarios(t *testing.T) {
	dir := t.TempDir()

	writeScenario(t, dir, "no_status.json", `{"path": "/ping"}`)
	_, err := Load(filepath.Join(dir, "no_status.json"))
	require.ErrorContains(t, err, "status is required")

	writeScenario(t, dir, "no_path.json", `{"status": 200}`)
	_, err = Load(filepath.Join(dir, "no_path.json"))
	require.ErrorContains(t, err, "path is required")
}

func TestLoadDefaultsNameAndMethod(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "20_list_categories.json", `{"path": "/api/categories", "status": 200}`)

	s, err := Load(filepath.Join(dir, "20_list_categories.json"))
	require.NoError(t, err)
	assert.Equal(t, "20_list_categories", s.Name)
	assert.Equal(t, "GET", s.Method)
}

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario %s: %v", name, err)
	}
}
