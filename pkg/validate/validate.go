// Package validate checks request structs against rules declared in their
// `validate` tags and reports failures as Laravel-style field messages.
//
//	type ListingInput struct {
//	    Crop     string  `json:"crop"     validate:"required,max=100"`
//	    Price    float64 `json:"price"    validate:"required,gt=0"`
//	    RadiusKM float64 `json:"radius_km" validate:"nullable,between=1,200"`
//	    Role     string  `json:"role"     validate:"nullable,in=farmer,buyer"`
//	}
//
// Rules are comma-separated and run left to right; the first failure per
// field wins. `nullable` short-circuits every later rule when the field is
// empty.
//
//	required      non-zero value
//	nullable      skip the rest when empty
//	email         well-formed email address
//	url           http/https URL
//	uuid          canonical UUID
//	boolean       bool, or "true"/"false"/"1"/"0"
//	date          parseable date
//	alpha         letters only
//	numeric       parseable number
//	integer       whole number
//	digits=N      exactly N decimal digits (phone numbers)
//	min=N max=N   numeric value, or string rune length
//	gt gte lt lte numeric comparisons
//	between=a,b   numeric value or string length within [a,b]
//	in=a,b,c      allowed values
//	not_in=a,b,c  rejected values
//	confirmed     sibling <field>_confirmation must match
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Struct runs the validate tags on every exported field of v (struct or
// pointer to struct) and returns field name → message. An empty map means
// the input passed.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("validate")
		if tag == "" {
			continue
		}

		f := fieldRef{
			name:  jsonName(rt.Field(i)),
			value: rv.Field(i),
			owner: rv,
		}

		rules := splitRules(tag)
		if contains(rules, "nullable") && isZero(f.value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			name, param, _ := strings.Cut(rule, "=")
			check, ok := checks[name]
			if !ok {
				continue
			}
			if msg := check(f, param); msg != "" {
				errs[f.name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors reports whether Struct found anything.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// fieldRef is one field under validation plus the struct that owns it
// (needed by cross-field rules like confirmed).
type fieldRef struct {
	name  string
	value reflect.Value
	owner reflect.Value
}

// text renders the field's value the way a form would submit it.
func (f fieldRef) text() string { return fmt.Sprintf("%v", f.value.Interface()) }

type checkFunc func(f fieldRef, param string) string

var checks = map[string]checkFunc{
	"required": func(f fieldRef, _ string) string {
		if isZero(f.value) {
			return fmt.Sprintf("The %s field is required.", f.name)
		}
		return ""
	},

	"email": func(f fieldRef, _ string) string {
		if !emailRE.MatchString(f.text()) {
			return fmt.Sprintf("The %s must be a valid email address.", f.name)
		}
		return ""
	},

	"url": func(f fieldRef, _ string) string {
		u, err := url.ParseRequestURI(f.text())
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", f.name)
		}
		return ""
	},

	"uuid": func(f fieldRef, _ string) string {
		if !uuidRE.MatchString(f.text()) {
			return fmt.Sprintf("The %s must be a valid UUID.", f.name)
		}
		return ""
	},

	"boolean": func(f fieldRef, _ string) string {
		if f.value.Kind() == reflect.Bool {
			return ""
		}
		switch strings.ToLower(f.text()) {
		case "true", "false", "1", "0":
			return ""
		}
		return fmt.Sprintf("The %s field must be true or false.", f.name)
	},

	"date": func(f fieldRef, _ string) string {
		if _, err := parseDate(f.text()); err != nil {
			return fmt.Sprintf("The %s is not a valid date.", f.name)
		}
		return ""
	},

	"alpha": func(f fieldRef, _ string) string {
		for _, c := range f.text() {
			if !unicode.IsLetter(c) {
				return fmt.Sprintf("The %s field must contain only letters.", f.name)
			}
		}
		return ""
	},

	"numeric": func(f fieldRef, _ string) string {
		if _, err := strconv.ParseFloat(f.text(), 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", f.name)
		}
		return ""
	},

	"integer": func(f fieldRef, _ string) string {
		if _, err := strconv.ParseInt(f.text(), 10, 64); err != nil {
			return fmt.Sprintf("The %s field must be an integer.", f.name)
		}
		return ""
	},

	"digits": func(f fieldRef, param string) string {
		raw := f.text()
		if len(raw) != int(num(param)) || !digitsRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be %s digits.", f.name, param)
		}
		return ""
	},

	"min": func(f fieldRef, param string) string {
		if isNumeric(f.value) {
			if asFloat(f.value) < num(param) {
				return fmt.Sprintf("The %s must be at least %s.", f.name, param)
			}
			return ""
		}
		if runeLen(f.text()) < num(param) {
			return fmt.Sprintf("The %s must be at least %s characters.", f.name, param)
		}
		return ""
	},

	"max": func(f fieldRef, param string) string {
		if isNumeric(f.value) {
			if asFloat(f.value) > num(param) {
				return fmt.Sprintf("The %s must not be greater than %s.", f.name, param)
			}
			return ""
		}
		if runeLen(f.text()) > num(param) {
			return fmt.Sprintf("The %s must not exceed %s characters.", f.name, param)
		}
		return ""
	},

	"gt": func(f fieldRef, param string) string {
		if asFloat(f.value) <= num(param) {
			return fmt.Sprintf("The %s must be greater than %s.", f.name, param)
		}
		return ""
	},

	"gte": func(f fieldRef, param string) string {
		if asFloat(f.value) < num(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", f.name, param)
		}
		return ""
	},

	"lt": func(f fieldRef, param string) string {
		if asFloat(f.value) >= num(param) {
			return fmt.Sprintf("The %s must be less than %s.", f.name, param)
		}
		return ""
	},

	"lte": func(f fieldRef, param string) string {
		if asFloat(f.value) > num(param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", f.name, param)
		}
		return ""
	},

	"between": func(f fieldRef, param string) string {
		bounds := strings.SplitN(param, ",", 2)
		if len(bounds) != 2 {
			return ""
		}
		lo, hi := num(bounds[0]), num(bounds[1])
		if isNumeric(f.value) {
			if v := asFloat(f.value); v < lo || v > hi {
				return fmt.Sprintf("The %s must be between %s and %s.", f.name, bounds[0], bounds[1])
			}
			return ""
		}
		if l := runeLen(f.text()); l < lo || l > hi {
			return fmt.Sprintf("The %s must be between %s and %s characters.", f.name, bounds[0], bounds[1])
		}
		return ""
	},

	"in": func(f fieldRef, param string) string {
		raw := f.text()
		for _, allowed := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(allowed) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", f.name)
	},

	"not_in": func(f fieldRef, param string) string {
		raw := f.text()
		for _, banned := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(banned) {
				return fmt.Sprintf("The selected %s is invalid.", f.name)
			}
		}
		return ""
	},

	// confirmed compares against the sibling whose json name is
	// <field>_confirmation — the classic password / password_confirmation
	// pair on the signup form.
	"confirmed": func(f fieldRef, _ string) string {
		want := f.name + "_confirmation"
		rt := f.owner.Type()
		for i := 0; i < rt.NumField(); i++ {
			if jsonName(rt.Field(i)) != want {
				continue
			}
			if fmt.Sprintf("%v", f.owner.Field(i).Interface()) == f.text() {
				return ""
			}
			break
		}
		return fmt.Sprintf("The %s confirmation does not match.", f.name)
	},
}

var (
	emailRE  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRE   = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	digitsRE = regexp.MustCompile(`^[0-9]+$`)
)

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006-01-02 15:04:05", "02/01/2006",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("validate: %q is not a date", s)
}

// splitRules splits the tag on commas, gluing back the comma-separated
// parameter lists of in/not_in/between: a segment that is neither a known
// bare rule nor a key=value pair belongs to the rule before it.
func splitRules(tag string) []string {
	var rules []string
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(rules) > 0 && !startsNewRule(part) {
			rules[len(rules)-1] += "," + part
			continue
		}
		rules = append(rules, part)
	}
	return rules
}

func startsNewRule(s string) bool {
	if strings.Contains(s, "=") {
		return true
	}
	switch s {
	case "required", "nullable", "email", "url", "uuid", "boolean",
		"date", "alpha", "numeric", "integer", "confirmed":
		return true
	}
	return false
}

func contains(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}

func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		// false is a legitimate submitted value.
		return false
	default:
		return isNumeric(v) && asFloat(v) == 0
	}
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func asFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func num(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func runeLen(s string) float64 { return float64(len([]rune(s))) }

func jsonName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	name, _, _ = strings.Cut(name, ",")
	return name
}
