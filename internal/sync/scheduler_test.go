package sync

import (
	"context"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner returns queued outcomes (Success once exhausted) and can
// block until released.
type fakeRunner struct {
	mu       gosync.Mutex
	outcomes []Outcome
	calls    atomic.Int32
	started  chan struct{}
	release  chan struct{}
}

func (r *fakeRunner) Run(ctx context.Context) Outcome {
	r.calls.Add(1)
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return Retry
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return Success
	}
	o := r.outcomes[0]
	r.outcomes = r.outcomes[1:]
	return o
}

func TestScheduler_ConcurrentRunsShareOne(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewScheduler(runner, SchedulerConfig{}, discardLogger())

	results := make(chan Outcome, 2)
	go func() { results <- s.RunNow(context.Background()) }()
	<-runner.started
	assert.Equal(t, RunRunning, s.GetStatus().State)

	go func() { results <- s.RunNow(context.Background()) }()
	// Give the second caller time to join the in-flight run.
	time.Sleep(20 * time.Millisecond)
	close(runner.release)

	assert.Equal(t, Success, <-results)
	assert.Equal(t, Success, <-results)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_StatusTracksOutcomes(t *testing.T) {
	runner := &fakeRunner{outcomes: []Outcome{Retry, Retry, Success}}
	s := NewScheduler(runner, SchedulerConfig{}, discardLogger())
	ctx := context.Background()

	assert.Equal(t, Retry, s.RunNow(ctx))
	assert.Equal(t, Retry, s.RunNow(ctx))
	st := s.GetStatus()
	assert.Equal(t, RunBackoff, st.State)
	assert.Equal(t, 2, st.Failures)
	assert.True(t, st.LastSuccess.IsZero())

	assert.Equal(t, Success, s.RunNow(ctx))
	st = s.GetStatus()
	assert.Equal(t, RunIdle, st.State)
	assert.Equal(t, 0, st.Failures)
	assert.False(t, st.LastSuccess.IsZero())

	msg := <-s.Results()
	assert.Equal(t, Retry, msg.Outcome)
}

func TestScheduler_BackoffGrowsAndResets(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, SchedulerConfig{
		Interval:   time.Hour,
		MinBackoff: time.Second,
		MaxBackoff: 4 * time.Second,
	}, discardLogger())

	first := s.next(Retry)
	assert.GreaterOrEqual(t, first, 500*time.Millisecond)
	assert.LessOrEqual(t, first, 1500*time.Millisecond)

	var last time.Duration
	for range 10 {
		last = s.next(Retry)
	}
	assert.LessOrEqual(t, last, 6*time.Second)
	assert.GreaterOrEqual(t, last, 2*time.Second)

	assert.Equal(t, time.Hour, s.next(Success))
}

func TestScheduler_CancelRuns(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewScheduler(runner, SchedulerConfig{}, discardLogger())

	done := make(chan Outcome, 1)
	go func() { done <- s.RunNow(context.Background()) }()
	<-runner.started

	s.CancelRuns()

	select {
	case o := <-done:
		assert.Equal(t, Retry, o)
	case <-time.After(2 * time.Second):
		t.Fatal("run not cancelled")
	}
}

// stubbornRunner ignores cancellation until released.
type stubbornRunner struct {
	started  chan struct{}
	release  chan struct{}
	finished atomic.Bool
}

func (r *stubbornRunner) Run(ctx context.Context) Outcome {
	r.started <- struct{}{}
	<-r.release
	r.finished.Store(true)
	return Success
}

func TestScheduler_CancelRunsWaitsForRunToReturn(t *testing.T) {
	runner := &stubbornRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewScheduler(runner, SchedulerConfig{}, discardLogger())

	go s.RunNow(context.Background())
	<-runner.started

	cancelled := make(chan struct{})
	go func() {
		s.CancelRuns()
		close(cancelled)
	}()

	select {
	case <-cancelled:
		t.Fatal("CancelRuns returned before the run did")
	case <-time.After(50 * time.Millisecond):
	}

	close(runner.release)
	select {
	case <-cancelled:
		assert.True(t, runner.finished.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("CancelRuns never returned")
	}

	// Nothing in flight: returns at once.
	s.CancelRuns()
}

func TestScheduler_StartTriggerStop(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, SchedulerConfig{Interval: time.Hour}, discardLogger())

	s.Start(context.Background())
	s.Start(context.Background())

	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	s.Trigger()
	require.Eventually(t, func() bool { return runner.calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()

	s.Trigger()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestScheduler_WaitForResult(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, SchedulerConfig{}, discardLogger())
	s.RunNow(context.Background())

	msg := s.WaitForResult()()
	res, ok := msg.(RunResultMsg)
	require.True(t, ok)
	assert.Equal(t, Success, res.Outcome)
}
