package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

// Run executes the scenario file at path against handler as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	t.Run(s.Name, func(t *testing.T) {
		execute(t, handler, s, map[string]string{})
	})
}

// RunDir executes every *.json scenario in dir, in filename order, as
// subtests. Captures flow forward: a value captured by 01_signin.json is
// available as a {{placeholder}} to every scenario after it.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	vars := map[string]string{}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			execute(t, handler, s, vars)
		})
	}
}

func execute(t *testing.T, handler http.Handler, s Scenario, vars map[string]string) {
	t.Helper()

	var body io.Reader
	if len(s.Body) > 0 {
		body = strings.NewReader(expand(string(s.Body), vars))
	}

	req := httptest.NewRequest(s.Method, expand(s.Path, vars), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, expand(v, vars))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != s.Status {
		t.Fatalf("%s %s: expected status %d, got %d\nresponse: %s",
			s.Method, s.Path, s.Status, rec.Code, rec.Body.String())
	}

	got := rec.Body.Bytes()

	if len(s.Want) > 0 {
		if err := matchSubset(s.Want, got); err != nil {
			t.Errorf("%s %s: %v\nresponse: %s", s.Method, s.Path, err, got)
		}
	}

	for _, substr := range s.WantContains {
		if !strings.Contains(string(got), substr) {
			t.Errorf("%s %s: response does not contain %q\nresponse: %s",
				s.Method, s.Path, substr, got)
		}
	}

	for name, path := range s.Capture {
		value, err := extract(got, path)
		if err != nil {
			t.Errorf("capture %q: %v", name, err)
			continue
		}
		vars[name] = value
	}
}

// matchSubset checks that every value want names is present and equal in
// got. Extra keys in got are fine; arrays must match element for element.
func matchSubset(want, got []byte) error {
	var w, g any
	if err := json.Unmarshal(want, &w); err != nil {
		return fmt.Errorf("decode want: %w", err)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return subset(w, g, "$")
}

func subset(want, got any, at string) error {
	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			return fmt.Errorf("at %s: expected object, got %s", at, kind(got))
		}
		for key, wv := range w {
			gv, ok := g[key]
			if !ok {
				return fmt.Errorf("at %s: missing key %q", at, key)
			}
			if err := subset(wv, gv, at+"."+key); err != nil {
				return err
			}
		}
		return nil

	case []any:
		g, ok := got.([]any)
		if !ok {
			return fmt.Errorf("at %s: expected array, got %s", at, kind(got))
		}
		if len(g) != len(w) {
			return fmt.Errorf("at %s: expected %d elements, got %d", at, len(w), len(g))
		}
		for i, wv := range w {
			if err := subset(wv, g[i], fmt.Sprintf("%s[%d]", at, i)); err != nil {
				return err
			}
		}
		return nil

	default:
		if !reflect.DeepEqual(want, got) {
			return fmt.Errorf("at %s: expected %v, got %v", at, jsonic(want), jsonic(got))
		}
		return nil
	}
}

func kind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// jsonic renders a decoded JSON value the way it looked on the wire, so
// mismatch messages quote strings and print nulls.
func jsonic(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

// extract walks a dot path ("data.user.id", "data.items.0.crop") through a
// JSON body and renders the value it lands on as a string.
func extract(body []byte, path string) (string, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, seg := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return "", fmt.Errorf("path %q: no key %q", path, seg)
			}
			v = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return "", fmt.Errorf("path %q: bad index %q", path, seg)
			}
			v = node[i]
		default:
			return "", fmt.Errorf("path %q: %q is not an object or array", path, seg)
		}
	}

	switch value := v.(type) {
	case string:
		return value, nil
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(value), nil
	default:
		return "", fmt.Errorf("path %q: value is %s, not a scalar", path, kind(v))
	}
}

// expand fills {{name}} placeholders from vars. Unknown placeholders stay
// as written, so a typo fails loudly in the request instead of silently
// sending an empty string.
func expand(s string, vars map[string]string) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	var out bytes.Buffer
	for {
		start := strings.Index(s, "{{")
		if start < 0 {
			out.WriteString(s)
			return out.String()
		}
		end := strings.Index(s[start:], "}}")
		if end < 0 {
			out.WriteString(s)
			return out.String()
		}
		end += start

		out.WriteString(s[:start])
		name := strings.TrimSpace(s[start+2 : end])
		if value, ok := vars[name]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(s[start : end+2])
		}
		s = s[end+2:]
	}
}
