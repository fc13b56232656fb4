package queue

import (
	"context"
	"errors"
)

// memoryBuffer is how many undelivered jobs the in-process queue holds
// before Dispatch starts failing.
const memoryBuffer = 1024

// ErrQueueFull is returned by the memory driver when its buffer is full.
// Request handlers must not block on a slow queue, so Push never waits.
var ErrQueueFull = errors.New("queue: memory buffer full")

// MemoryDriver is the default transport: an in-process buffered channel.
// Jobs do not survive a restart; production runs the Redis driver.
type MemoryDriver struct {
	jobs chan []byte
}

// NewMemoryDriver returns an in-process queue transport.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{jobs: make(chan []byte, memoryBuffer)}
}

// Push enqueues payload, or fails immediately when the buffer is full.
func (d *MemoryDriver) Push(payload []byte) error {
	select {
	case d.jobs <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pop blocks until a payload arrives or ctx ends.
func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-d.jobs:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
