package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"audioguard/internal/logging"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestCyclesRunRepeatedly(t *testing.T) {
	var cycles atomic.Int64
	s := New(func(context.Context) { cycles.Add(1) },
		Options{Interval: 5 * time.Millisecond}, logging.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return cycles.Load() >= 3 })
	if got := s.State(); got != StateRunning {
		t.Fatalf("expected running state, got %q", got)
	}
}

func TestStartTwiceFails(t *testing.T) {
	s := New(func(context.Context) {}, Options{Interval: time.Hour}, logging.NewNop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestStopWaitsForInFlightCycle(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var finished atomic.Bool
	s := New(func(context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		finished.Store(true)
	}, Options{Interval: time.Hour, StopGrace: time.Second}, logging.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-started

	stopDone := make(chan struct{})
	go func() {
		s.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.Fatal("Stop returned while a cycle was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopDone:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the cycle finished")
	}
	if !finished.Load() {
		t.Fatal("in-flight cycle was interrupted")
	}
	if got := s.State(); got != StateStopped {
		t.Fatalf("expected stopped state, got %q", got)
	}
}

func TestStopAbandonsHungCycleAfterGrace(t *testing.T) {
	hang := make(chan struct{})
	started := make(chan struct{}, 1)
	s := New(func(context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-hang
	}, Options{Interval: time.Hour, StopGrace: 30 * time.Millisecond}, logging.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-started

	begin := time.Now()
	s.Stop()
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Fatalf("Stop blocked %v, expected return shortly after grace", elapsed)
	}
	if got := s.State(); got != StateStopped {
		t.Fatalf("expected stopped state, got %q", got)
	}
	close(hang)
}

func TestPanicIsRecoveredAndCyclesContinue(t *testing.T) {
	var cycles atomic.Int64
	s := New(func(context.Context) {
		if cycles.Add(1) == 1 {
			panic("first cycle blew up")
		}
	}, Options{
		Interval:     5 * time.Millisecond,
		ErrorBackoff: 5 * time.Millisecond,
	}, logging.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return cycles.Load() >= 3 })
}

func TestKickTriggersImmediateCycle(t *testing.T) {
	var cycles atomic.Int64
	s := New(func(context.Context) { cycles.Add(1) },
		Options{Interval: time.Hour}, logging.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return cycles.Load() == 1 })
	s.Kick()
	waitFor(t, time.Second, func() bool { return cycles.Load() >= 2 })
}

func TestSetIntervalTakesEffect(t *testing.T) {
	var cycles atomic.Int64
	s := New(func(context.Context) { cycles.Add(1) },
		Options{Interval: time.Hour}, logging.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	// The initial cycle fires immediately; the hour-long timer would stall
	// further cycles until the reschedule lands.
	waitFor(t, time.Second, func() bool { return cycles.Load() == 1 })
	if err := s.SetInterval(5 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	waitFor(t, time.Second, func() bool { return cycles.Load() >= 3 })
	if got := s.Interval(); got != 5*time.Millisecond {
		t.Fatalf("expected stored interval 5ms, got %v", got)
	}
}

func TestSetIntervalRejectsNonPositive(t *testing.T) {
	s := New(func(context.Context) {}, Options{}, logging.NewNop())
	if err := s.SetInterval(0); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
