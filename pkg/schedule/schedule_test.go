package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestJobDueOnFirstTickThenOnInterval(t *testing.T) {
	var runs atomic.Int32
	j := &job{name: "sweep", every: time.Hour, task: func() { runs.Add(1) }}

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	j.maybeRun(now)
	waitRuns(t, &runs, 1)

	// Within the interval: nothing.
	j.maybeRun(now.Add(30 * time.Minute))
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != 1 {
		t.Fatalf("expected no run inside the interval, got %d runs", runs.Load())
	}

	j.maybeRun(now.Add(time.Hour))
	waitRuns(t, &runs, 2)
}

func TestWithoutOverlappingSkipsWhileRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32

	j := &job{name: "slow", every: time.Millisecond, exclusive: true, task: func() {
		runs.Add(1)
		close(started)
		<-release
	}}

	now := time.Now()
	j.maybeRun(now)
	<-started

	// Due again, but the first run is still in flight.
	j.maybeRun(now.Add(time.Second))
	time.Sleep(20 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("expected the overlapping run to be skipped, got %d runs", got)
	}
	close(release)
}

func TestPanickingTaskDoesNotStickRunning(t *testing.T) {
	j := &job{name: "bad", every: time.Millisecond, exclusive: true, task: func() { panic("boom") }}

	now := time.Now()
	j.maybeRun(now)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		j.mu.Lock()
		running := j.running
		j.mu.Unlock()
		if !running {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job still marked running after a panic")
}

func waitRuns(t *testing.T, runs *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if runs.Load() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d runs, got %d", want, runs.Load())
}
