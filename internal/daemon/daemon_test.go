package daemon

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"audioguard/internal/audio"
	"audioguard/internal/guard"
	"audioguard/internal/journal"
	"audioguard/internal/logging"
	"audioguard/internal/policy"
	"audioguard/internal/testsupport"
)

type fakeProvider struct {
	endpoints []audio.Endpoint
}

func (p *fakeProvider) ListEndpoints(context.Context) ([]audio.Endpoint, error) {
	return p.endpoints, nil
}

func (p *fakeProvider) ListSessions(context.Context, string) ([]audio.Session, error) {
	return nil, nil
}

type fakeEngine struct {
	mu          sync.Mutex
	cycles      int
	transitions []guard.Transition
	snapshots   []policy.Snapshot
}

func (e *fakeEngine) RunCycle(_ context.Context, snapshot policy.Snapshot) ([]guard.Transition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cycles++
	e.snapshots = append(e.snapshots, snapshot)
	if e.cycles == 1 {
		return e.transitions, nil
	}
	return nil, nil
}

func (e *fakeEngine) cycleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycles
}

type fakeNotifier struct {
	muted   atomic.Int64
	unmuted atomic.Int64
}

func (n *fakeNotifier) NotifyMuted(context.Context, string, string) error {
	n.muted.Add(1)
	return nil
}

func (n *fakeNotifier) NotifyUnmuted(context.Context, string, string) error {
	n.unmuted.Add(1)
	return nil
}

func (n *fakeNotifier) NotifyError(context.Context, error, string) error { return nil }
func (n *fakeNotifier) Test(context.Context) error                       { return nil }

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func newTestDaemon(t *testing.T, engine *fakeEngine, notifier *fakeNotifier, endpoints []audio.Endpoint) (*Daemon, *policy.Store, *journal.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewPolicyStore(t, cfg)
	if err := store.SetInterval(10); err != nil {
		t.Fatal(err)
	}

	journalStore, err := journal.Open(cfg.Paths.LogDir)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { journalStore.Close() })

	d, err := New(cfg, store, journalStore, notifier, &fakeProvider{endpoints: endpoints}, engine, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d, store, journalStore
}

func TestStartStopLifecycle(t *testing.T) {
	engine := &fakeEngine{}
	d, _, _ := newTestDaemon(t, engine, &fakeNotifier{}, nil)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return engine.cycleCount() >= 2 })

	status := d.Status()
	if !status.Running || status.State != "running" {
		t.Fatalf("unexpected status: %+v", status)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon still reported running after Stop")
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	engine := &fakeEngine{}
	first, store, journalStore := newTestDaemon(t, engine, &fakeNotifier{}, nil)

	if err := first.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer first.Stop()

	second, err := New(first.cfg, store, journalStore, &fakeNotifier{}, &fakeProvider{}, engine, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail to acquire the lock")
	}
}

func TestCycleJournalsAndNotifiesTransitions(t *testing.T) {
	engine := &fakeEngine{transitions: []guard.Transition{{
		EndpointID:   "sink-a",
		EndpointName: "Speakers",
		Kind:         guard.TransitionMuted,
		ProcessName:  "Discord",
		ProcessID:    100,
	}}}
	notifier := &fakeNotifier{}
	d, _, journalStore := newTestDaemon(t, engine, notifier, nil)

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	waitFor(t, time.Second, func() bool { return notifier.muted.Load() >= 1 })

	entries, err := journalStore.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].EndpointID != "sink-a" || entries[0].Kind != "muted" {
		t.Fatalf("unexpected journal entries: %+v", entries)
	}
}

func TestNotificationsSuppressedWhenDisabled(t *testing.T) {
	engine := &fakeEngine{transitions: []guard.Transition{{
		EndpointID: "sink-a",
		Kind:       guard.TransitionMuted,
	}}}
	notifier := &fakeNotifier{}
	d, store, journalStore := newTestDaemon(t, engine, notifier, nil)
	if err := store.SetNotifications(false); err != nil {
		t.Fatal(err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	waitFor(t, time.Second, func() bool {
		entries, err := journalStore.List(context.Background(), 0)
		return err == nil && len(entries) == 1
	})
	if notifier.muted.Load() != 0 {
		t.Fatal("notification sent despite being disabled")
	}
}

func TestCycleAdoptsObservedEndpoints(t *testing.T) {
	engine := &fakeEngine{}
	d, store, _ := newTestDaemon(t, engine, &fakeNotifier{}, []audio.Endpoint{
		{ID: "sink-a", Name: "Speakers"},
	})

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	waitFor(t, time.Second, func() bool {
		endpoint, ok := store.Snapshot().Endpoint("sink-a")
		return ok && endpoint.FriendlyName == "Speakers" && !endpoint.Ignored
	})
}

func TestSetIntervalPropagatesToScheduler(t *testing.T) {
	engine := &fakeEngine{}
	d, store, _ := newTestDaemon(t, engine, &fakeNotifier{}, nil)

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	if err := d.SetInterval(20); err != nil {
		t.Fatalf("SetInterval failed: %v", err)
	}
	if got := store.Snapshot().CheckIntervalMs; got != 20 {
		t.Fatalf("policy interval not updated, got %d", got)
	}
	if got := d.sched.Interval(); got != 20*time.Millisecond {
		t.Fatalf("scheduler interval not updated, got %v", got)
	}
}

func TestTestNotificationWithoutBackend(t *testing.T) {
	engine := &fakeEngine{}
	d, _, _ := newTestDaemon(t, engine, &fakeNotifier{}, nil)

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sent || message != "no notification backend configured" {
		t.Fatalf("unexpected result: sent=%v message=%q", sent, message)
	}
}
