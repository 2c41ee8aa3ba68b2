package pulse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"audioguard/internal/audio"
)

const sinksJSON = `[
  {"index": 0, "name": "alsa_output.pci-0000_00_1f.3.analog-stereo", "description": "Built-in Audio"},
  {"index": 7, "name": "bluez_output.AA_BB.1", "description": "WH-1000XM4"}
]`

const sinkInputsJSON = `[
  {"index": 12, "sink": 0, "mute": false,
   "properties": {"application.process.id": "4242", "application.process.binary": "Discord"}},
  {"index": 13, "sink": 7, "mute": true,
   "properties": {"application.process.id": "4242", "application.process.binary": "Discord"}},
  {"index": 14, "sink": 0, "mute": false,
   "properties": {"application.process.binary": "mpv"}}
]`

type fakeRunner struct {
	calls [][]string
	fail  map[string]error
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	joined := strings.Join(args, " ")
	if err, ok := f.fail[joined]; ok {
		return nil, err
	}
	switch joined {
	case "--format=json list sinks":
		return []byte(sinksJSON), nil
	case "--format=json list sink-inputs":
		return []byte(sinkInputsJSON), nil
	}
	if strings.HasPrefix(joined, "set-sink-input-") {
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected command: pactl %s", joined)
}

type fakeNamer struct {
	names map[uint32]string
}

func (f fakeNamer) Name(_ context.Context, pid uint32) (string, error) {
	name, ok := f.names[pid]
	if !ok {
		return "", errors.New("no such process")
	}
	return name, nil
}

func testProvider(runner *fakeRunner, namer processNamer) *Provider {
	p := New(Options{Binary: "pactl", CommandTimeout: time.Second}, nil)
	p.runner = runner
	if namer != nil {
		p.namer = namer
	}
	return p
}

func TestListEndpoints(t *testing.T) {
	p := testProvider(&fakeRunner{}, fakeNamer{})
	endpoints, err := p.ListEndpoints(context.Background())
	if err != nil {
		t.Fatalf("ListEndpoints failed: %v", err)
	}
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(endpoints))
	}
	if endpoints[0].ID != "alsa_output.pci-0000_00_1f.3.analog-stereo" || endpoints[0].Name != "Built-in Audio" {
		t.Fatalf("unexpected first endpoint: %+v", endpoints[0])
	}
	if endpoints[1].Name != "WH-1000XM4" {
		t.Fatalf("unexpected second endpoint: %+v", endpoints[1])
	}
}

func TestListEndpointsFailureIsProviderUnavailable(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{
		"--format=json list sinks": errors.New("connection refused"),
	}}
	p := testProvider(runner, fakeNamer{})
	if _, err := p.ListEndpoints(context.Background()); !errors.Is(err, audio.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestListSessionsFiltersBySink(t *testing.T) {
	namer := fakeNamer{names: map[uint32]string{4242: "Discord"}}
	p := testProvider(&fakeRunner{}, namer)

	sessions, err := p.ListSessions(context.Background(), "alsa_output.pci-0000_00_1f.3.analog-stereo")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions on sink 0, got %d", len(sessions))
	}
	if sessions[0].ProcessID != 4242 || sessions[0].ProcessName != "Discord" {
		t.Fatalf("unexpected first session: %+v", sessions[0])
	}
	muted, err := sessions[0].Control.Muted(context.Background())
	if err != nil || muted {
		t.Fatalf("expected unmuted session, got muted=%v err=%v", muted, err)
	}
}

func TestListSessionsFallsBackToBinaryProperty(t *testing.T) {
	p := testProvider(&fakeRunner{}, fakeNamer{})
	sessions, err := p.ListSessions(context.Background(), "alsa_output.pci-0000_00_1f.3.analog-stereo")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	// Sink-input 14 has no pid; name resolution falls back to the pactl
	// binary property. Sink-input 12's pid is unknown to the namer and also
	// falls back.
	for _, session := range sessions {
		if session.ProcessName == "" {
			t.Fatalf("expected binary fallback name, got empty for %+v", session)
		}
	}
}

func TestListSessionsUnknownSink(t *testing.T) {
	p := testProvider(&fakeRunner{}, fakeNamer{})
	if _, err := p.ListSessions(context.Background(), "missing"); !errors.Is(err, audio.ErrEndpointUnavailable) {
		t.Fatalf("expected ErrEndpointUnavailable, got %v", err)
	}
}

func TestSetMutedIssuesPactlCommand(t *testing.T) {
	runner := &fakeRunner{}
	p := testProvider(runner, fakeNamer{names: map[uint32]string{4242: "Discord"}})
	sessions, err := p.ListSessions(context.Background(), "bluez_output.AA_BB.1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}

	if err := sessions[0].Control.SetMuted(context.Background(), false); err != nil {
		t.Fatalf("SetMuted failed: %v", err)
	}
	if err := sessions[0].Control.SetVolume(context.Background(), 1.0); err != nil {
		t.Fatalf("SetVolume failed: %v", err)
	}

	var sawMute, sawVolume bool
	for _, call := range runner.calls {
		joined := strings.Join(call[1:], " ")
		if joined == "set-sink-input-mute 13 0" {
			sawMute = true
		}
		if joined == "set-sink-input-volume 13 100%" {
			sawVolume = true
		}
	}
	if !sawMute || !sawVolume {
		t.Fatalf("missing pactl mutations, calls: %v", runner.calls)
	}
}

func TestSetMutedFailureIsSessionGone(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{
		"set-sink-input-mute 12 1": errors.New("no such entity"),
	}}
	p := testProvider(runner, fakeNamer{})
	sessions, err := p.ListSessions(context.Background(), "alsa_output.pci-0000_00_1f.3.analog-stereo")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if err := sessions[0].Control.SetMuted(context.Background(), true); !errors.Is(err, audio.ErrSessionGone) {
		t.Fatalf("expected ErrSessionGone, got %v", err)
	}
}

func TestClosedControlRejectsCalls(t *testing.T) {
	p := testProvider(&fakeRunner{}, fakeNamer{})
	sessions, err := p.ListSessions(context.Background(), "bluez_output.AA_BB.1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	control := sessions[0].Control
	if err := control.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := control.SetMuted(context.Background(), true); !errors.Is(err, audio.ErrSessionGone) {
		t.Fatalf("expected ErrSessionGone after close, got %v", err)
	}
}
