// Package metrics is the Prometheus surface of the service: HTTP and
// database latency, queue throughput, cache effectiveness, and the
// marketplace counters the team actually graphs.
//
// Wired once in the HTTP kernel:
//
//	r.Use(metrics.Middleware())
//	r.Handle("/metrics", metrics.Handler())
//
// Other packages register their own collectors with
// promauto.With(metrics.DefaultRegistry).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agriconnect"

// DefaultRegistry holds every collector the service exposes. A private
// registry instead of prometheus.DefaultRegisterer keeps test binaries
// and embedded libraries from polluting /metrics.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

var auto = promauto.With(DefaultRegistry)

// HTTP collectors, fed by Middleware.
var (
	requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	inFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})

	responseSize = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "Response body sizes in bytes.",
		Buckets:   []float64{100, 1_000, 10_000, 100_000, 1_000_000},
	}, []string{"method", "path"})
)

// Database and queue collectors, fed by the helpers below.
var (
	dbQueryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Duration of database queries in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
	}, []string{"operation"})

	queueJobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "queue",
		Name:      "jobs_processed_total",
		Help:      "Total queue jobs processed.",
	}, []string{"status"})

	queueJobDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "queue",
		Name:      "job_duration_seconds",
		Help:      "Duration of queue job processing in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job_type"})
)

// Collectors incremented directly by other packages.
var (
	// CacheHits and CacheMisses track cache effectiveness by driver.
	CacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits.",
	}, []string{"driver"})

	CacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses.",
	}, []string{"driver"})

	// ListingsCreated counts produce listings posted by farmers.
	ListingsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "market",
		Name:      "listings_created_total",
		Help:      "Total produce listings created.",
	})

	// OffersSent counts offers sent against buyer demands.
	OffersSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "market",
		Name:      "offers_sent_total",
		Help:      "Total offers sent against buyer demands.",
	})

	// RealtimeClients gauges connected change-feed subscribers by
	// transport: "ws", "sse" or "internal".
	RealtimeClients = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "clients",
		Help:      "Connected change-feed subscribers.",
	}, []string{"transport"})

	// LiveListings gauges the size of the in-memory market snapshot.
	LiveListings = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "market",
		Name:      "live_listings",
		Help:      "Listings currently held in the live snapshot.",
	})
)

type recorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Middleware records duration, count, in-flight and response size for
// every request. The path label is the chi route pattern, so
// /api/listings/41 and /api/listings/42 share one series.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			inFlight.Inc()
			defer inFlight.Dec()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// The pattern is only known after routing has run.
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					path = p
				}
			}

			status := strconv.Itoa(rec.status)
			requestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			requestTotal.WithLabelValues(r.Method, path, status).Inc()
			responseSize.WithLabelValues(r.Method, path).Observe(float64(rec.size))
		})
	}
}

// Handler serves the scrape endpoint for DefaultRegistry.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

// ObserveDBQuery records one query's latency:
//
//	defer metrics.ObserveDBQuery("select", time.Now())
func ObserveDBQuery(operation string, start time.Time) {
	dbQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordQueueJob records a finished queue job. status is "success" or
// "failed".
func RecordQueueJob(jobType, status string, start time.Time) {
	queueJobs.WithLabelValues(status).Inc()
	queueJobDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())
}
