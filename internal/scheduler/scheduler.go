// Package scheduler drives the reconciliation engine on a periodic cadence.
//
// Cycles run sequentially on one goroutine; a new cycle starts only after the
// previous one has returned. The cadence can change at runtime, stop is
// cooperative with a bounded wait, and a panic escaping a cycle is logged and
// followed by a longer backoff instead of terminating the loop.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"audioguard/internal/logging"
)

// State is the scheduler lifecycle phase.
type State string

const (
	StateStopped  State = "stopped"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Reference timings for shutdown grace and post-panic backoff.
const (
	DefaultStopGrace    = 2 * time.Second
	DefaultErrorBackoff = 5 * time.Second
)

// CycleFunc is one reconciliation pass. It must respect ctx but is never
// cancelled mid-flight by Stop.
type CycleFunc func(ctx context.Context)

// Options configures cadence and shutdown behavior.
type Options struct {
	// Interval is the initial wait between cycles.
	Interval time.Duration
	// StopGrace bounds how long Stop waits for an in-flight cycle.
	StopGrace time.Duration
	// ErrorBackoff is the wait after a cycle panics.
	ErrorBackoff time.Duration
}

// Scheduler owns the polling goroutine.
type Scheduler struct {
	cycle        CycleFunc
	stopGrace    time.Duration
	errorBackoff time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	state    State
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}

	reconfigure chan time.Duration
	wake        chan struct{}
}

// New builds a stopped scheduler around the given cycle function.
func New(cycle CycleFunc, opts Options, logger *slog.Logger) *Scheduler {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	stopGrace := opts.StopGrace
	if stopGrace <= 0 {
		stopGrace = DefaultStopGrace
	}
	errorBackoff := opts.ErrorBackoff
	if errorBackoff <= 0 {
		errorBackoff = DefaultErrorBackoff
	}
	return &Scheduler{
		cycle:        cycle,
		stopGrace:    stopGrace,
		errorBackoff: errorBackoff,
		logger:       logging.NewComponentLogger(logger, "scheduler"),
		state:        StateStopped,
		interval:     interval,
		reconfigure:  make(chan time.Duration, 1),
		wake:         make(chan struct{}, 1),
	}
}

// State returns the current lifecycle phase.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Interval returns the current cadence.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Start launches the polling goroutine. The first cycle runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStopped {
		return errors.New("scheduler already running")
	}
	s.state = StateRunning
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(ctx, s.stopCh, s.done)
	return nil
}

// SetInterval changes the cadence. The pending wakeup is rescheduled; a cycle
// already in flight is not altered.
func (s *Scheduler) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	s.mu.Lock()
	s.interval = interval
	running := s.state == StateRunning
	s.mu.Unlock()
	if running {
		select {
		case s.reconfigure <- interval:
		default:
		}
	}
	return nil
}

// Kick requests an immediate cycle without waiting for the next tick.
func (s *Scheduler) Kick() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Stop requests cooperative shutdown and waits up to the grace period for the
// in-flight cycle to finish. A hung cycle does not block shutdown beyond the
// grace.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateStopping
	stopCh := s.stopCh
	done := s.done
	s.mu.Unlock()

	close(stopCh)
	select {
	case <-done:
	case <-time.After(s.stopGrace):
		s.logger.Warn("cycle still in flight after stop grace, abandoning wait",
			logging.Duration("grace", s.stopGrace))
	}

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
}

func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	s.runOnce(ctx, stopCh)

	timer := time.NewTimer(s.Interval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case interval := <-s.reconfigure:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(interval)
		case <-s.wake:
			s.runOnce(ctx, stopCh)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.Interval())
		case <-timer.C:
			s.runOnce(ctx, stopCh)
			timer.Reset(s.Interval())
		}
	}
}

// runOnce executes one cycle, containing any panic so a single bad pass never
// kills monitoring.
func (s *Scheduler) runOnce(ctx context.Context, stopCh <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("cycle panicked, backing off",
				logging.Any("panic", r),
				logging.Duration("backoff", s.errorBackoff))
			select {
			case <-ctx.Done():
			case <-stopCh:
			case <-time.After(s.errorBackoff):
			}
		}
	}()
	s.cycle(ctx)
}
