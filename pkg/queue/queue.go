// Package queue runs background jobs: verification emails, offer
// notifications, anything too slow for the request path.
//
//	type OfferNotificationJob struct{ OfferID uint }
//	func (j *OfferNotificationJob) Handle() error { ... }
//
//	queue.Register("*jobs.OfferNotificationJob", func() queue.Job { return &jobs.OfferNotificationJob{} })
//	queue.Dispatch(&jobs.OfferNotificationJob{OfferID: 1})
//	queue.DispatchAfter(&jobs.OfferNotificationJob{OfferID: 2}, 30*time.Second)
//
// Jobs serialize to JSON envelopes, so every job type must be registered
// by name before workers can decode it.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
)

// Job is anything the workers can run.
type Job interface {
	// Handle executes the job. A non-nil error triggers a retry.
	Handle() error
}

// FailedJob is one job that exhausted its retries, kept in memory for
// FailedJobs and mirrored to the failed_jobs table when UseDB was called.
type FailedJob struct {
	Type     string
	Job      Job
	Err      error
	Attempts int
	FailedAt time.Time
}

// Driver is the queue transport.
type Driver interface {
	Push(payload []byte) error
	// Pop blocks until a payload arrives, ctx is done, or the driver's
	// poll interval lapses (then it returns nil, nil).
	Pop(ctx context.Context) ([]byte, error)
}

// delayedDriver is implemented by drivers with native delayed delivery.
type delayedDriver interface {
	PushDelayed(payload []byte, delay time.Duration) error
}

type manager struct {
	mu       sync.RWMutex
	driver   Driver
	factory  map[string]func() Job
	failed   []FailedJob
	maxRetry int
}

var q = &manager{
	driver:   NewMemoryDriver(),
	factory:  map[string]func() Job{},
	maxRetry: 3,
}

// SetDriver swaps the transport; the boot wiring installs the Redis
// driver when QUEUE_DRIVER=redis and Redis is reachable.
func SetDriver(d Driver) {
	q.mu.Lock()
	q.driver = d
	q.mu.Unlock()
}

// SetMaxRetry caps how many times a failing job runs before it is parked
// as failed.
func SetMaxRetry(n int) {
	q.mu.Lock()
	q.maxRetry = n
	q.mu.Unlock()
}

// Register binds a job type name to its constructor, so workers can
// rebuild the job from its envelope. Once per job type, at boot.
func Register(name string, fn func() Job) {
	q.mu.Lock()
	q.factory[name] = fn
	q.mu.Unlock()
}

// envelope is the wire form of a queued job.
type envelope struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Enqueued time.Time       `json:"enqueued_at"`
}

func encode(job Job) ([]byte, error) {
	name := fmt.Sprintf("%T", job)

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", name, err)
	}
	raw, err := json.Marshal(envelope{Type: name, Payload: payload, Enqueued: time.Now()})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return raw, nil
}

// Dispatch pushes job for immediate processing.
func Dispatch(job Job) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	return q.transport().Push(raw)
}

// DispatchAfter pushes job after delay. Drivers with native delayed
// delivery (the Redis sorted set) hold the payload themselves; for the
// rest a goroutine sleeps out the delay, which does not survive restarts.
func DispatchAfter(job Job, delay time.Duration) {
	if dd, ok := q.transport().(delayedDriver); ok {
		raw, err := encode(job)
		if err != nil {
			logger.Error("queue: delayed dispatch", "error", err)
			return
		}
		if err := dd.PushDelayed(raw, delay); err != nil {
			logger.Error("queue: delayed dispatch", "error", err)
		}
		return
	}

	go func() {
		time.Sleep(delay)
		if err := Dispatch(job); err != nil {
			logger.Error("queue: delayed dispatch", "error", err)
		}
	}()
}

func (m *manager) transport() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

func (m *manager) retries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxRetry
}

// StartWorkers launches n workers that drain the queue until ctx ends.
func StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go q.work(ctx)
	}
	logger.Info("queue: workers online", "count", n)
}

func (m *manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		raw, err := m.transport().Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		m.run(raw)
	}
}

// run decodes one envelope and executes the job with retries.
func (m *manager) run(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: dropping undecodable envelope", "error", err)
		return
	}

	m.mu.RLock()
	fn, ok := m.factory[env.Type]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("queue: no factory registered, dropping job", "type", env.Type)
		return
	}

	job := fn()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: payload does not fit job", "type", env.Type, "error", err)
		return
	}

	start := time.Now()
	max := m.retries()

	var lastErr error
	for attempt := 1; attempt <= max; attempt++ {
		if lastErr = job.Handle(); lastErr == nil {
			logger.Info("queue: job processed",
				"type", env.Type, "waited", start.Sub(env.Enqueued).String())
			metrics.RecordQueueJob(env.Type, "success", start)
			return
		}

		logger.Warn("queue: job failed",
			"type", env.Type, "attempt", attempt, "error", lastErr)
		if attempt < max {
			time.Sleep(time.Duration(attempt) * time.Second) // linear backoff
		}
	}

	m.park(job, env.Type, lastErr, max)
	metrics.RecordQueueJob(env.Type, "failed", start)
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
}

// FailedJobs returns a snapshot of jobs that exhausted their retries.
func FailedJobs() []FailedJob {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]FailedJob, len(q.failed))
	copy(out, q.failed)
	return out
}
