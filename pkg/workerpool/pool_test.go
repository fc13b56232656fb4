package workerpool_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/workerpool"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var ran atomic.Int64

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		err := pool.SubmitWait(func() {
			defer wg.Done()
			ran.Add(1)
		})
		if err != nil {
			t.Fatalf("SubmitWait: %v", err)
		}
	}
	wg.Wait()

	if got := ran.Load(); got != n {
		t.Errorf("ran %d of %d submitted tasks", got, n)
	}
}

func TestPoolFullBackpressure(t *testing.T) {
	// One worker, blocked; backlog holds two more tasks.
	pool := workerpool.New(1)
	defer pool.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})
	defer close(release)

	if err := pool.SubmitWait(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("SubmitWait: %v", err)
	}
	<-started

	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolFull) {
		t.Errorf("expected ErrPoolFull with a saturated backlog, got %v", err)
	}
}

func TestPoolClosedAfterShutdown(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
	if err := pool.SubmitWait(func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed from SubmitWait, got %v", err)
	}
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = pool.SubmitWait(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()

	// The worker must still be alive to run the next task.
	ok := make(chan struct{})
	_ = pool.SubmitWait(func() { close(ok) })

	select {
	case <-ok:
	case <-time.After(2 * time.Second):
		t.Fatal("task after a panic never ran")
	}
}

func TestPoolShutdownDrainsBacklog(t *testing.T) {
	pool := workerpool.New(10)

	const n = 50
	var ran atomic.Int64
	for i := 0; i < n; i++ {
		if err := pool.SubmitWait(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}); err != nil {
			t.Fatalf("SubmitWait: %v", err)
		}
	}

	pool.Shutdown()

	if got := ran.Load(); got != n {
		t.Errorf("expected Shutdown to run all %d accepted tasks, got %d", n, got)
	}
}
