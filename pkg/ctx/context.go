// Package ctx gives handlers a single *Context instead of the raw
// (http.ResponseWriter, *http.Request) pair, with helpers for the things
// every endpoint here does: read query/form input, bind-and-validate JSON,
// and answer in the standard envelope.
//
//	func Show(c *ctx.Context) {
//	    id := c.Param("id")
//	    c.Success(listing)
//	}
//
//	api.Get("/listings/{id}", "listings.show", ctx.Wrap(Show))
package ctx

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agriconnect-ug/agriconnect/pkg/bind"
	"github.com/agriconnect-ug/agriconnect/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc for the router.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(&Context{W: w, R: r})
	}
}

// Context is the request/response pair a handler works with. W and R stay
// exported for the cases the helpers don't cover (multipart parsing,
// WebSocket upgrades, SSE).
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

// Context returns the request's context, for loggers and cancellation.
func (c *Context) Context() context.Context { return c.R.Context() }

// ── Request input ──

// Param returns the {name} path parameter.
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// Query returns a query-string value, "" when absent.
func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

// DefaultQuery returns the query value or def when it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// QueryFloat parses a query value as float64; ok is false when the
// parameter is absent or not a number.
func (c *Context) QueryFloat(key string) (f float64, ok bool) {
	v := c.Query(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// QueryInt parses a query value as int, falling back to def.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

// QueryBool reads a query flag; "true" and "1" are true, "false" and "0"
// false, anything else reports ok=false.
func (c *Context) QueryBool(key string) (val, ok bool) {
	switch c.Query(key) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// PostForm returns a field from a urlencoded or multipart body.
func (c *Context) PostForm(key string) string { return c.R.FormValue(key) }

// FormFloat parses a form field as float64; ok is false when the field is
// missing or not numeric.
func (c *Context) FormFloat(key string) (f float64, ok bool) {
	raw := c.PostForm(key)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	return f, err == nil
}

// FormFile returns the uploaded file under the given multipart field.
func (c *Context) FormFile(key string) (multipart.File, *multipart.FileHeader, error) {
	return c.R.FormFile(key)
}

// Header reads a request header.
func (c *Context) Header(key string) string { return c.R.Header.Get(key) }

// ClientIP returns the caller's address, trusting X-Forwarded-For and
// X-Real-Ip when a proxy set them.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := c.R.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	addr := c.R.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i != -1 {
		addr = addr[:i]
	}
	return addr
}

// ── Binding ──

// BindJSON decodes and validates the JSON body into dest. It answers 400
// for unusable bodies and 422 for validation failures, returning false so
// the handler can bail with a bare return.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ── Responses (the pkg/response envelope) ──

// Success answers 200 with data.
func (c *Context) Success(data any) { response.Success(c.W, data) }

// Created answers 201 with data.
func (c *Context) Created(data any) { response.Created(c.W, data) }

// Error answers with status and a user-facing message.
func (c *Context) Error(status int, message string) { response.Error(c.W, status, message) }

// ValidationError answers 422 with the field → message map.
func (c *Context) ValidationError(errs map[string]string) { response.ValidationError(c.W, errs) }

// Unauthorized answers 401.
func (c *Context) Unauthorized() { response.Unauthorized(c.W) }

// Forbidden answers 403.
func (c *Context) Forbidden() { response.Forbidden(c.W) }

// NotFound answers 404.
func (c *Context) NotFound() { response.NotFound(c.W) }

// Redirect answers an HTTP redirect.
func (c *Context) Redirect(status int, url string) { http.Redirect(c.W, c.R, url, status) }
