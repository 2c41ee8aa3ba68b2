package pulse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"audioguard/internal/audio"
	"audioguard/internal/logging"
)

// Options configures the provider.
type Options struct {
	// Binary is the pactl executable name or path.
	Binary string
	// CommandTimeout bounds each pactl invocation.
	CommandTimeout time.Duration
}

// Provider enumerates sinks and sink-inputs through pactl.
type Provider struct {
	binary  string
	timeout time.Duration
	runner  commandRunner
	namer   processNamer
	logger  *slog.Logger
}

// New constructs a pactl-backed provider.
func New(opts Options, logger *slog.Logger) *Provider {
	binary := opts.Binary
	if binary == "" {
		binary = "pactl"
	}
	timeout := opts.CommandTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Provider{
		binary:  binary,
		timeout: timeout,
		runner:  execCommandRunner{},
		namer:   psutilNamer{},
		logger:  logging.NewComponentLogger(logger, "pulse-provider"),
	}
}

type pactlSink struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type pactlSinkInput struct {
	Index      int               `json:"index"`
	Sink       int               `json:"sink"`
	Mute       bool              `json:"mute"`
	Properties map[string]string `json:"properties"`
}

// ListEndpoints returns the active sinks.
func (p *Provider) ListEndpoints(ctx context.Context) ([]audio.Endpoint, error) {
	sinks, err := p.listSinks(ctx)
	if err != nil {
		return nil, audio.Wrap(audio.ErrProviderUnavailable, "list sinks", err)
	}
	endpoints := make([]audio.Endpoint, 0, len(sinks))
	for _, sink := range sinks {
		if sink.Name == "" {
			continue
		}
		name := sink.Description
		if name == "" {
			name = sink.Name
		}
		endpoints = append(endpoints, audio.Endpoint{ID: sink.Name, Name: name})
	}
	return endpoints, nil
}

// ListSessions returns the sink-inputs routed to the named sink.
func (p *Provider) ListSessions(ctx context.Context, endpointID string) ([]audio.Session, error) {
	sinks, err := p.listSinks(ctx)
	if err != nil {
		return nil, audio.Wrap(audio.ErrEndpointUnavailable, "list sinks", err)
	}
	sinkIndex := -1
	for _, sink := range sinks {
		if sink.Name == endpointID {
			sinkIndex = sink.Index
			break
		}
	}
	if sinkIndex < 0 {
		return nil, audio.Wrap(audio.ErrEndpointUnavailable, fmt.Sprintf("sink %q not found", endpointID), nil)
	}

	inputs, err := p.listSinkInputs(ctx)
	if err != nil {
		return nil, audio.Wrap(audio.ErrEndpointUnavailable, "list sink-inputs", err)
	}

	sessions := make([]audio.Session, 0, len(inputs))
	for _, input := range inputs {
		if input.Sink != sinkIndex {
			continue
		}
		pid := parsePID(input.Properties["application.process.id"])
		sessions = append(sessions, audio.Session{
			ProcessID:   pid,
			ProcessName: p.resolveProcessName(ctx, pid, input.Properties["application.process.binary"]),
			Control: &sinkInputControl{
				provider: p,
				index:    input.Index,
				muted:    input.Mute,
			},
		})
	}
	return sessions, nil
}

func (p *Provider) listSinks(ctx context.Context) ([]pactlSink, error) {
	output, err := p.run(ctx, "--format=json", "list", "sinks")
	if err != nil {
		return nil, err
	}
	var sinks []pactlSink
	if err := json.Unmarshal(output, &sinks); err != nil {
		return nil, fmt.Errorf("parse sink list: %w", err)
	}
	return sinks, nil
}

func (p *Provider) listSinkInputs(ctx context.Context) ([]pactlSinkInput, error) {
	output, err := p.run(ctx, "--format=json", "list", "sink-inputs")
	if err != nil {
		return nil, err
	}
	var inputs []pactlSinkInput
	if err := json.Unmarshal(output, &inputs); err != nil {
		return nil, fmt.Errorf("parse sink-input list: %w", err)
	}
	return inputs, nil
}

func (p *Provider) run(ctx context.Context, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.runner.Output(runCtx, p.binary, args...)
}

func (p *Provider) resolveProcessName(ctx context.Context, pid uint32, binary string) string {
	if pid != 0 {
		if name, err := p.namer.Name(ctx, pid); err == nil && name != "" {
			return name
		}
	}
	// The process table misses owners that exit between enumeration and
	// lookup; the pactl property still identifies them.
	return binary
}

func parsePID(value string) uint32 {
	pid, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(pid)
}

// sinkInputControl mutates one sink-input. The mute state is the value read
// at enumeration time; the engine rebuilds observations every cycle.
type sinkInputControl struct {
	provider *Provider
	index    int
	muted    bool
	closed   bool
}

func (c *sinkInputControl) Muted(ctx context.Context) (bool, error) {
	if c.closed {
		return false, audio.Wrap(audio.ErrSessionGone, "control closed", nil)
	}
	return c.muted, nil
}

func (c *sinkInputControl) SetMuted(ctx context.Context, muted bool) error {
	if c.closed {
		return audio.Wrap(audio.ErrSessionGone, "control closed", nil)
	}
	flag := "0"
	if muted {
		flag = "1"
	}
	if _, err := c.provider.run(ctx, "set-sink-input-mute", strconv.Itoa(c.index), flag); err != nil {
		return audio.Wrap(audio.ErrSessionGone, fmt.Sprintf("set mute on sink-input %d", c.index), err)
	}
	c.muted = muted
	return nil
}

func (c *sinkInputControl) SetVolume(ctx context.Context, volume float64) error {
	if c.closed {
		return audio.Wrap(audio.ErrSessionGone, "control closed", nil)
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	percent := fmt.Sprintf("%d%%", int(volume*100+0.5))
	if _, err := c.provider.run(ctx, "set-sink-input-volume", strconv.Itoa(c.index), percent); err != nil {
		return audio.Wrap(audio.ErrSessionGone, fmt.Sprintf("set volume on sink-input %d", c.index), err)
	}
	return nil
}

func (c *sinkInputControl) Close() error {
	c.closed = true
	return nil
}
