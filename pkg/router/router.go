// Package router wraps chi with named routes. Endpoints register under a
// dotted name ("listings.show") so the CLI can print the route table and
// mails can build links back into the API without hard-coding paths.
package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Middleware is the standard net/http wrapping shape. pkg/middleware and
// pkg/rbac both produce these.
type Middleware func(http.Handler) http.Handler

// Route is one mounted endpoint, as reported by Routes.
type Route struct {
	Method string
	Path   string
	Name   string
}

// Router is a chi mux plus a name-to-path registry.
type Router struct {
	chi   chi.Router
	mu    sync.RWMutex
	names map[string]string // route name → path, for URL building
	tags  map[string]string // "METHOD path" → route name, for Routes
}

func New() *Router {
	return &Router{
		chi:   chi.NewRouter(),
		names: make(map[string]string),
		tags:  make(map[string]string),
	}
}

// Handler exposes the mux for http.Server.
func (r *Router) Handler() http.Handler { return r.chi }

// Use appends global middleware. Call before mounting any route; chi
// panics otherwise.
func (r *Router) Use(mws ...Middleware) {
	for _, mw := range mws {
		r.chi.Use(mw)
	}
}

// Handle mounts a raw http.Handler for every method on a chi pattern.
// Used for the /metrics endpoint and the /storage/* file server.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.chi.Handle(clean(pattern), h)
}

func (r *Router) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.mount(http.MethodGet, clean(path), name, h, mws)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.mount(http.MethodPost, clean(path), name, h, mws)
}

func (r *Router) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.mount(http.MethodPut, clean(path), name, h, mws)
}

func (r *Router) Patch(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.mount(http.MethodPatch, clean(path), name, h, mws)
}

func (r *Router) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.mount(http.MethodDelete, clean(path), name, h, mws)
}

// Path looks up the registered pattern for a route name.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.names[name]
	return path, ok
}

// URL renders a named route's path, substituting each {param} segment
// from params. Unresolved parameters are an error, not a broken link.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	path, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("router: route %q not registered", name)
	}

	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		key := seg[1 : len(seg)-1]
		if j := strings.IndexByte(key, ':'); j != -1 { // chi regex params: {id:[0-9]+}
			key = key[:j]
		}
		val, ok := params[key]
		if !ok {
			return "", fmt.Errorf("router: route %q missing parameter %q", name, key)
		}
		segs[i] = val
	}
	return strings.Join(segs, "/"), nil
}

// Routes walks the mux and returns every mounted endpoint sorted by path
// then method, with the registered name where one exists. Backs the
// route:list command.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Route
	_ = chi.Walk(r.chi, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, Route{Method: method, Path: route, Name: r.tags[method+" "+route]})
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// mount wraps h in mws (first middleware outermost), registers it on the
// mux and remembers the name.
func (r *Router) mount(method, pattern, name string, h http.Handler, mws []Middleware) {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	r.chi.Method(method, pattern, h)

	if name == "" {
		return
	}
	r.mu.Lock()
	r.names[name] = pattern
	r.tags[method+" "+pattern] = name
	r.mu.Unlock()
}

// Group scopes a shared path prefix and middleware set.
type Group struct {
	r      *Router
	prefix string
	mws    []Middleware
}

func (r *Router) Group(prefix string, mws ...Middleware) *Group {
	return &Group{r: r, prefix: clean(prefix), mws: append([]Middleware(nil), mws...)}
}

// Group nests: the child inherits this group's prefix and middleware.
func (g *Group) Group(prefix string, mws ...Middleware) *Group {
	return &Group{
		r:      g.r,
		prefix: join(g.prefix, prefix),
		mws:    append(append([]Middleware(nil), g.mws...), mws...),
	}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.mount(http.MethodGet, path, name, h, mws)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.mount(http.MethodPost, path, name, h, mws)
}

func (g *Group) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.mount(http.MethodPut, path, name, h, mws)
}

func (g *Group) Patch(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.mount(http.MethodPatch, path, name, h, mws)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.mount(http.MethodDelete, path, name, h, mws)
}

func (g *Group) mount(method, path, name string, h http.Handler, extra []Middleware) {
	mws := make([]Middleware, 0, len(g.mws)+len(extra))
	mws = append(mws, g.mws...)
	mws = append(mws, extra...)
	g.r.mount(method, join(g.prefix, path), name, h, mws)
}

// join glues path parts into a single /-rooted pattern, dropping empty
// segments so Group("/api").Get("/listings") and Group("api").Get("listings")
// mount the same route.
func join(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func clean(path string) string { return join(path) }
