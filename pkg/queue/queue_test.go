package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/queue"
)

// ─── Test jobs ────────────────────────────────────────────────────────────────

var (
	notified  atomic.Int32
	lastOffer atomic.Int64
	failRuns  atomic.Int32
)

type notifyOfferJob struct {
	OfferID uint `json:"offer_id"`
}

func (j *notifyOfferJob) Handle() error {
	notified.Add(1)
	lastOffer.Store(int64(j.OfferID))
	return nil
}

type alwaysFailJob struct{}

func (j *alwaysFailJob) Handle() error {
	failRuns.Add(1)
	return errors.New("smtp unreachable")
}

func init() {
	// Two workers drain every job dispatched from this file.
	queue.StartWorkers(context.Background(), 2)

	queue.Register("*queue_test.notifyOfferJob", func() queue.Job { return &notifyOfferJob{} })
	queue.Register("*queue_test.alwaysFailJob", func() queue.Job { return &alwaysFailJob{} })
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// ─── Cases ────────────────────────────────────────────────────────────────────

func TestDispatchRunsJob(t *testing.T) {
	before := notified.Load()

	if err := queue.Dispatch(&notifyOfferJob{OfferID: 42}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return notified.Load() > before })

	if got := lastOffer.Load(); got != 42 {
		t.Errorf("expected payload offer id 42, got %d", got)
	}
}

func TestDispatchAfter(t *testing.T) {
	before := notified.Load()

	queue.DispatchAfter(&notifyOfferJob{OfferID: 7}, 50*time.Millisecond)

	waitFor(t, 2*time.Second, func() bool { return notified.Load() > before })
}

func TestExhaustedJobIsParked(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	beforeRuns := failRuns.Load()
	beforeFailed := len(queue.FailedJobs())

	if err := queue.Dispatch(&alwaysFailJob{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool { return len(queue.FailedJobs()) > beforeFailed })

	if failRuns.Load() != beforeRuns+1 {
		t.Errorf("expected exactly 1 attempt, got %d", failRuns.Load()-beforeRuns)
	}
}

func TestConcurrentDispatch(t *testing.T) {
	before := notified.Load()

	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			queue.Dispatch(&notifyOfferJob{OfferID: 1}) //nolint:errcheck
		}()
	}
	wg.Wait()

	waitFor(t, 3*time.Second, func() bool { return notified.Load() >= before+20 })
}

func TestMemoryDriverFull(t *testing.T) {
	// A standalone driver with no workers draining it fills up.
	d := queue.NewMemoryDriver()
	payload := []byte(`{"type":"x"}`)

	for i := 0; i < 100000; i++ {
		err := d.Push(payload)
		if err == nil {
			continue
		}
		if !errors.Is(err, queue.ErrQueueFull) {
			t.Fatalf("expected ErrQueueFull, got %v", err)
		}
		if i == 0 {
			t.Fatal("driver rejected the very first payload")
		}
		return
	}
	t.Fatal("driver never reported a full buffer")
}

func TestMemoryDriverPopCancel(t *testing.T) {
	d := queue.NewMemoryDriver()
	cctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := d.Pop(cctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("expected a context error from a cancelled Pop, got nil")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after cancel")
	}
}
