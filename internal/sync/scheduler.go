package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/singleflight"
)

// TaskName identifies the drain task; at most one run per name is active.
const TaskName = "sync_pending_notes"

// RunState represents the current state of the drain task.
type RunState int

const (
	RunIdle RunState = iota
	RunRunning
	RunBackoff
)

func (s RunState) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunBackoff:
		return "backing off"
	}
	return "idle"
}

// Status holds the scheduling state of the drain task.
type Status struct {
	State       RunState
	LastRun     time.Time
	LastSuccess time.Time
	LastOutcome Outcome
	Failures    int
	NextRun     time.Time
}

// RunResultMsg is a tea.Msg sent when a drain run completes.
type RunResultMsg struct {
	Outcome Outcome
	At      time.Time
}

// Runner is one drain run.
type Runner interface {
	Run(ctx context.Context) Outcome
}

// SchedulerConfig controls run timing.
type SchedulerConfig struct {
	// Interval between periodic runs after a success.
	Interval time.Duration

	// MinBackoff and MaxBackoff bound the exponential delay after a Retry.
	MinBackoff time.Duration
	MaxBackoff time.Duration

	// RunTimeout bounds a single run; zero means no bound.
	RunTimeout time.Duration
}

// Scheduler runs the drain task periodically, on trigger and on demand.
// Concurrent requests for a run share the one in flight.
type Scheduler struct {
	runner Runner
	cfg    SchedulerConfig
	logger *slog.Logger

	group   singleflight.Group
	backoff *backoff.ExponentialBackOff

	mu        gosync.Mutex
	status    Status
	running   bool
	cancelRun context.CancelFunc
	runDone   chan struct{}

	resultCh  chan RunResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	done      chan struct{}
}

// NewScheduler creates a Scheduler for runner.
func NewScheduler(runner Runner, cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 30 * time.Second
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.MinBackoff
	b.MaxInterval = cfg.MaxBackoff
	b.Reset()

	return &Scheduler{
		runner:    runner,
		cfg:       cfg,
		logger:    logger,
		backoff:   b,
		resultCh:  make(chan RunResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// RunNow performs a run, or joins the one already in flight, and returns
// its outcome.
func (s *Scheduler) RunNow(ctx context.Context) Outcome {
	v, _, _ := s.group.Do(TaskName, func() (interface{}, error) {
		return s.run(ctx), nil
	})
	return v.(Outcome)
}

func (s *Scheduler) run(ctx context.Context) Outcome {
	ctx, cancel := context.WithCancel(ctx)
	if s.cfg.RunTimeout > 0 {
		ctx, cancel = withTimeout(ctx, cancel, s.cfg.RunTimeout)
	}
	defer cancel()

	done := make(chan struct{})
	defer close(done)

	s.mu.Lock()
	s.cancelRun = cancel
	s.runDone = done
	s.status.State = RunRunning
	s.mu.Unlock()

	outcome := s.runner.Run(ctx)
	now := time.Now()

	s.mu.Lock()
	s.cancelRun = nil
	s.runDone = nil
	s.status.LastRun = now
	s.status.LastOutcome = outcome
	if outcome == Success {
		s.status.State = RunIdle
		s.status.LastSuccess = now
		s.status.Failures = 0
		s.backoff.Reset()
	} else {
		s.status.State = RunBackoff
		s.status.Failures++
	}
	s.mu.Unlock()

	s.logger.Debug("drain finished", "outcome", outcome)
	s.sendResult(RunResultMsg{Outcome: outcome, At: now})
	return outcome
}

func withTimeout(ctx context.Context, cancel context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancelTimeout := context.WithTimeout(ctx, d)
	return ctx, func() {
		cancelTimeout()
		cancel()
	}
}

// CancelRuns aborts the run in flight, if any, and waits until it has
// returned. Nothing the run writes can land after CancelRuns returns.
func (s *Scheduler) CancelRuns() {
	s.mu.Lock()
	cancel, done := s.cancelRun, s.runDone
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Trigger requests a run as soon as possible, e.g. after a note was
// queued or connectivity came back. Requests made while one is pending
// coalesce.
func (s *Scheduler) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// Start launches the scheduling loop. It runs once immediately, then
// after Interval following a success or after the backoff delay following
// a Retry. Calling Start on a running Scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.loop(ctx)
}

// Stop halts the loop, cancels the run in flight and waits for the loop
// to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.CancelRuns()
	<-s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-s.triggerCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		outcome := s.RunNow(ctx)
		timer.Reset(s.next(outcome))
	}
}

// next returns the delay until the following periodic run.
func (s *Scheduler) next(outcome Outcome) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := s.cfg.Interval
	if outcome == Retry {
		delay = s.backoff.NextBackOff()
	}
	s.status.NextRun = time.Now().Add(delay)
	return delay
}

// GetStatus returns the current scheduling state.
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// sendResult sends a RunResultMsg on the result channel without blocking.
func (s *Scheduler) sendResult(msg RunResultMsg) {
	select {
	case s.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the scheduler
	}
}

// Results returns the channel of completed runs.
func (s *Scheduler) Results() <-chan RunResultMsg {
	return s.resultCh
}

// WaitForResult returns a tea.Cmd that waits for the next run result.
// Call it again after handling a RunResultMsg to keep listening.
func (s *Scheduler) WaitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-s.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
