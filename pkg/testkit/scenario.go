// Package testkit runs JSON-described request/response scenarios against an
// http.Handler. Each scenario file holds one request, the status it must
// answer with, and the parts of the response body that matter:
//
//	{
//	  "name": "signup routes the farmer to the check-email page",
//	  "method": "POST",
//	  "path": "/api/auth/signup",
//	  "body": {"first_name": "Ann", ...},
//	  "status": 201,
//	  "want": {"data": {"next": "/check-email"}}
//	}
//
// want is matched as a subset: keys it names must match, keys it omits are
// ignored, so scenarios stay readable and do not break when a response
// grows a field. RunDir executes every *.json file in a directory in
// filename order, which makes multi-step flows a matter of numbering:
//
//	testdata/
//	  01_signup.json
//	  02_signin.json
//	  03_session.json
//
// Values captured from one response ("capture": {"token": "data.token"})
// fill {{token}} placeholders in the path, headers and body of the
// scenarios that follow.
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scenario is one request/response test case.
type Scenario struct {
	// Name labels the subtest. Defaults to the scenario's filename.
	Name string `json:"name"`

	// Method defaults to GET.
	Method string `json:"method"`

	// Path is the request target, including any query string.
	Path string `json:"path"`

	// Headers are set on the request after the JSON defaults. Values may
	// hold {{placeholders}} filled from earlier captures.
	Headers map[string]string `json:"headers"`

	// Body is sent verbatim as the request body.
	Body json.RawMessage `json:"body"`

	// Status is the response code the handler must answer with.
	Status int `json:"status"`

	// Want is matched against the response body as a JSON subset: every
	// key Want names must be present and equal, extra response keys are
	// ignored, arrays must match element for element.
	Want json.RawMessage `json:"want"`

	// WantContains are raw substrings the response body must carry.
	WantContains []string `json:"want_contains"`

	// Capture pulls values out of the response for later scenarios in the
	// same directory: variable name → dot path ("data.token",
	// "data.user.id"). Captured values replace {{name}} placeholders.
	Capture map[string]string `json:"capture"`
}

// Load reads one scenario file. A missing name falls back to the filename
// without its extension.
func Load(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("testkit: read %s: %w", path, err)
	}

	var s Scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return Scenario{}, fmt.Errorf("testkit: parse %s: %w", path, err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if s.Method == "" {
		s.Method = "GET"
	}
	s.Method = strings.ToUpper(s.Method)

	if s.Path == "" {
		return Scenario{}, fmt.Errorf("testkit: %s: path is required", path)
	}
	if s.Status == 0 {
		return Scenario{}, fmt.Errorf("testkit: %s: status is required", path)
	}
	if len(s.Want) > 0 && !json.Valid(s.Want) {
		return Scenario{}, fmt.Errorf("testkit: %s: want is not valid JSON", path)
	}

	return s, nil
}

// LoadDir reads every *.json file in dir, sorted by filename so numbered
// scenarios run as a sequence.
func LoadDir(dir string) ([]Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("testkit: glob %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := Load(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
