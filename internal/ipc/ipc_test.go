package ipc

import (
	"context"
	"path/filepath"
	"testing"

	"audioguard/internal/audio"
	"audioguard/internal/daemon"
	"audioguard/internal/guard"
	"audioguard/internal/journal"
	"audioguard/internal/logging"
	"audioguard/internal/policy"
	"audioguard/internal/testsupport"
)

type stubProvider struct{}

func (stubProvider) ListEndpoints(context.Context) ([]audio.Endpoint, error) { return nil, nil }
func (stubProvider) ListSessions(context.Context, string) ([]audio.Session, error) {
	return nil, nil
}

type stubEngine struct{}

func (stubEngine) RunCycle(context.Context, policy.Snapshot) ([]guard.Transition, error) {
	return nil, nil
}

type stubNotifier struct{}

func (stubNotifier) NotifyMuted(context.Context, string, string) error   { return nil }
func (stubNotifier) NotifyUnmuted(context.Context, string, string) error { return nil }
func (stubNotifier) NotifyError(context.Context, error, string) error    { return nil }
func (stubNotifier) Test(context.Context) error                          { return nil }

func newTestClient(t *testing.T) (*Client, *policy.Store, *journal.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewPolicyStore(t, cfg)

	journalStore, err := journal.Open(cfg.Paths.LogDir)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { journalStore.Close() })

	d, err := daemon.New(cfg, store, journalStore, stubNotifier{}, stubProvider{}, stubEngine{}, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socketPath := filepath.Join(t.TempDir(), "audioguardd.sock")
	server, err := NewServer(ctx, socketPath, d, logging.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)

	client, err := Dial(socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, store, journalStore
}

func TestStartStatusStop(t *testing.T) {
	client, _, _ := newTestClient(t)

	status, err := client.Status()
	if err != nil {
		t.Fatal(err)
	}
	if status.Running {
		t.Fatal("daemon reported running before start")
	}

	started, err := client.Start()
	if err != nil {
		t.Fatal(err)
	}
	if !started.Started {
		t.Fatalf("start failed: %s", started.Message)
	}

	status, err = client.Status()
	if err != nil {
		t.Fatal(err)
	}
	if !status.Running || status.PID == 0 || status.TargetProcess == "" {
		t.Fatalf("unexpected status: %+v", status)
	}

	stopped, err := client.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if !stopped.Stopped {
		t.Fatal("stop not confirmed")
	}
}

func TestDeviceOperations(t *testing.T) {
	client, store, _ := newTestClient(t)

	if err := store.Update(func(p *policy.Policy) {
		p.Devices = []policy.EndpointPolicy{
			{ID: "sink-a", FriendlyName: "Speakers"},
			{ID: "sink-b", FriendlyName: "Headphones"},
		}
	}); err != nil {
		t.Fatal(err)
	}

	list, err := client.DeviceList()
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(list.Devices))
	}

	updated, err := client.DeviceSetIgnored("sink-b", true)
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Updated {
		t.Fatal("update not confirmed")
	}
	if endpoint, _ := store.Snapshot().Endpoint("sink-b"); !endpoint.Ignored {
		t.Fatal("ignore flag not persisted")
	}

	if _, err := client.DeviceSetIgnored("missing", true); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestIntervalAndNotificationSettings(t *testing.T) {
	client, store, _ := newTestClient(t)

	resp, err := client.SetInterval(500)
	if err != nil {
		t.Fatal(err)
	}
	if resp.IntervalMs != 500 {
		t.Fatalf("unexpected interval response: %+v", resp)
	}
	if got := store.Snapshot().CheckIntervalMs; got != 500 {
		t.Fatalf("interval not persisted, got %d", got)
	}
	if _, err := client.SetInterval(0); err == nil {
		t.Fatal("expected error for zero interval")
	}

	toggled, err := client.SetNotifications(false)
	if err != nil {
		t.Fatal(err)
	}
	if toggled.Enabled {
		t.Fatal("unexpected toggle response")
	}
	if store.Snapshot().ShowNotifications {
		t.Fatal("notification flag not persisted")
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	client, _, journalStore := newTestClient(t)

	err := journalStore.Record(context.Background(), guard.Transition{
		EndpointID:   "sink-a",
		EndpointName: "Speakers",
		Kind:         guard.TransitionMuted,
		ProcessName:  "Discord",
		ProcessID:    100,
	})
	if err != nil {
		t.Fatal(err)
	}

	history, err := client.History(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Entries) != 1 || history.Entries[0].EndpointName != "Speakers" {
		t.Fatalf("unexpected history: %+v", history.Entries)
	}

	cleared, err := client.HistoryClear()
	if err != nil {
		t.Fatal(err)
	}
	if !cleared.Cleared {
		t.Fatal("clear not confirmed")
	}
	history, err = client.History(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Entries) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history.Entries))
	}
}

func TestTestNotificationWithoutBackend(t *testing.T) {
	client, _, _ := newTestClient(t)

	resp, err := client.TestNotification()
	if err != nil {
		t.Fatal(err)
	}
	if resp.Sent {
		t.Fatalf("expected no send without a backend, got %+v", resp)
	}
}
