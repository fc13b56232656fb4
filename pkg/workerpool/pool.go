// Package workerpool bounds concurrent fan-out work, like notification
// delivery, so a burst of traffic cannot spawn goroutines without limit.
//
//	pool := workerpool.New(16)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(func() { deliverNotification(offer) }); err != nil {
//	    // ErrPoolFull: deliver inline, queue elsewhere, or drop.
//	}
//
// Submit applies backpressure by failing fast; SubmitWait blocks for a
// slot instead.
package workerpool

import (
	"errors"
	"sync"

	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

// ErrPoolFull means every worker is busy and the backlog is at capacity.
var ErrPoolFull = errors.New("workerpool: backlog full")

// ErrPoolClosed means Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool shut down")

// Pool runs tasks on a fixed set of worker goroutines.
type Pool struct {
	queue   chan func()
	done    chan struct{}
	stop    sync.Once
	workers sync.WaitGroup
}

// New starts a pool with size workers. The backlog holds twice the
// worker count, so short bursts queue instead of failing.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		queue: make(chan func(), size*2),
		done:  make(chan struct{}),
	}
	p.workers.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking. It returns ErrPoolFull when the
// backlog is at capacity and ErrPoolClosed after Shutdown.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case p.queue <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait enqueues task, blocking until a backlog slot frees up or the
// pool shuts down.
func (p *Pool) SubmitWait(task func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	case p.queue <- task:
		return nil
	}
}

// Shutdown stops accepting tasks, runs everything already accepted, and
// waits for the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.stop.Do(func() {
		close(p.done)
		p.workers.Wait()
	})
}

// worker runs tasks until shutdown, then drains the remaining backlog.
// The queue channel is never closed, so a Submit racing Shutdown cannot
// panic; at worst its task is dropped.
func (p *Pool) worker() {
	defer p.workers.Done()
	for {
		select {
		case task := <-p.queue:
			p.run(task)
		case <-p.done:
			for {
				select {
				case task := <-p.queue:
					p.run(task)
				default:
					return
				}
			}
		}
	}
}

// run executes one task, keeping a panicking task from killing the worker.
func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panic", "panic", r)
		}
	}()
	task()
}
