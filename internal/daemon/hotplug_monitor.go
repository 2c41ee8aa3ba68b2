package daemon

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"audioguard/internal/logging"
)

// soundMonitor listens for udev netlink events on the sound subsystem and
// wakes the scheduler when a playback device appears or disappears, so a
// hotplugged headset is adopted and reconciled without waiting for the next
// tick.
type soundMonitor struct {
	logger *slog.Logger
	onWake func()

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newSoundMonitor(logger *slog.Logger, onWake func()) *soundMonitor {
	return &soundMonitor{
		logger: logging.NewComponentLogger(logger, "sound-monitor"),
		onWake: onWake,
	}
}

// Start begins listening for udev netlink events. Connection failure is
// non-fatal; the daemon still reconciles on its timer.
func (m *soundMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; hotplug devices are picked up on the next tick",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the daemon has permission to access netlink sockets"))
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("sound hotplug monitor started",
		logging.String(logging.FieldEventType, "sound_monitor_started"))
	return nil
}

// Stop shuts down the monitor.
func (m *soundMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("sound hotplug monitor stopped",
		logging.String(logging.FieldEventType, "sound_monitor_stopped"))
}

// Running reports whether the monitor is active.
func (m *soundMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *soundMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(events, errs, m.buildMatcher())
	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"))
		}
	}
}

// buildMatcher matches add/remove/change events on the sound subsystem.
func (m *soundMonitor) buildMatcher() netlink.Matcher {
	action := "add|remove|change"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
		},
	})
	return rules
}

func (m *soundMonitor) handleEvent(uevent netlink.UEvent) {
	m.logger.Debug("sound device event",
		logging.String("action", string(uevent.Action)),
		logging.String("kobj", uevent.KObj))
	if m.onWake != nil {
		m.onWake()
	}
}
