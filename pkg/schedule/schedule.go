// Package schedule runs recurring maintenance tasks inside the server
// process, like the daily sweep that marks stale listings unavailable.
//
//	schedule.Daily().Name("listings:sweep-stale").WithoutOverlapping().Run(sweep)
//	schedule.Every(10).Minutes().Run(refreshRates)
//	schedule.Start(ctx)
//
// Tasks fire once immediately on the first tick after Start, then on
// their interval. There is no persistence; a restart resets the clock.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

// Task is a scheduled function. It takes no arguments; close over what
// you need.
type Task func()

type job struct {
	mu        sync.Mutex
	name      string
	every     time.Duration
	task      Task
	lastRun   time.Time
	running   bool
	exclusive bool
}

var (
	regMu sync.Mutex
	jobs  []*job
)

// Schedule builds one job before Run registers it.
type Schedule struct {
	j *job
}

// Every starts a builder for an every-n-units job.
func Every(n int) Builder { return Builder{n: n} }

// EveryMinute is shorthand for Every(1).Minutes().
func EveryMinute() *Schedule { return Every(1).Minutes() }

// Hourly is shorthand for Every(1).Hours().
func Hourly() *Schedule { return Every(1).Hours() }

// Daily is shorthand for Every(24).Hours().
func Daily() *Schedule { return Every(24).Hours() }

// Builder fixes the count half of "every n units".
type Builder struct{ n int }

func (b Builder) interval(unit time.Duration) *Schedule {
	return &Schedule{j: &job{every: time.Duration(b.n) * unit}}
}

// Seconds sets the unit to seconds.
func (b Builder) Seconds() *Schedule { return b.interval(time.Second) }

// Minutes sets the unit to minutes.
func (b Builder) Minutes() *Schedule { return b.interval(time.Minute) }

// Hours sets the unit to hours.
func (b Builder) Hours() *Schedule { return b.interval(time.Hour) }

// Days sets the unit to days.
func (b Builder) Days() *Schedule { return b.interval(24 * time.Hour) }

// Name labels the job in logs and the CLI listing.
func (s *Schedule) Name(name string) *Schedule {
	s.j.name = name
	return s
}

// WithoutOverlapping skips a tick while the previous run is still going,
// which matters for sweeps that can outlast their interval on big tables.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.j.exclusive = true
	return s
}

// Run registers the job. Start picks it up on its next tick.
func (s *Schedule) Run(fn Task) {
	s.j.task = fn
	regMu.Lock()
	if s.j.name == "" {
		s.j.name = fmt.Sprintf("task-%d", len(jobs)+1)
	}
	jobs = append(jobs, s.j)
	regMu.Unlock()
}

// Start launches the dispatch loop. It returns immediately and stops
// when ctx ends.
func Start(ctx context.Context) {
	go loop(ctx)
	logger.Info("schedule: dispatch loop started")
}

func loop(ctx context.Context) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: dispatch loop stopped")
			return
		case now := <-tick.C:
			regMu.Lock()
			snapshot := append([]*job(nil), jobs...)
			regMu.Unlock()

			for _, j := range snapshot {
				j.maybeRun(now)
			}
		}
	}
}

// maybeRun fires the job in a goroutine when it is due.
func (j *job) maybeRun(now time.Time) {
	j.mu.Lock()
	due := j.lastRun.IsZero() || now.Sub(j.lastRun) >= j.every
	if !due {
		j.mu.Unlock()
		return
	}
	if j.exclusive && j.running {
		j.mu.Unlock()
		logger.Warn("schedule: run still in progress, skipping", "job", j.name)
		return
	}
	j.running = true
	j.lastRun = now
	j.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "job", j.name, "panic", r)
			}
			j.mu.Lock()
			j.running = false
			j.mu.Unlock()
		}()
		logger.Info("schedule: running task", "job", j.name)
		j.task()
	}()
}

// List describes the registered jobs, one "name  [interval]" line each.
func List() []string {
	regMu.Lock()
	defer regMu.Unlock()

	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, fmt.Sprintf("%s  [%s]", j.name, j.every))
	}
	return out
}
