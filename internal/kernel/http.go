// Package kernel assembles the HTTP handler: the global middleware stack,
// the Prometheus endpoint, the /storage file server and the API routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/routes"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
	"github.com/agriconnect-ug/agriconnect/pkg/reqid"
	"github.com/agriconnect-ug/agriconnect/pkg/router"
	"github.com/agriconnect-ug/agriconnect/pkg/session"
	"github.com/agriconnect-ug/agriconnect/pkg/storage"
)

// New builds the full HTTP handler.
func New(d routes.Deps) http.Handler {
	r := router.New()

	// Registration order is outermost first. Metrics wraps everything so
	// the histogram sees whole-request latency, recovery catches panics
	// from every layer below it, and the request id has to exist before
	// the logger tags lines with it. The rate limiter sits innermost so
	// rejected requests are still logged and counted.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(session.DefaultOptions()))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	// Prometheus /metrics endpoint — no auth, no rate limit exemption needed
	// at marketplace traffic levels.
	r.Handle("/metrics", metrics.Handler())

	// Uploaded listing photos on the local disk are served under /storage/*.
	// The S3 disk returns absolute URLs, so no mount is needed for it.
	if root := storage.LocalRoot(); root != "" {
		r.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(root))))
	}

	routes.RegisterAPI(r, d)

	return r.Handler()
}
