package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"audioguard/internal/audio"
	"audioguard/internal/config"
	"audioguard/internal/guard"
	"audioguard/internal/journal"
	"audioguard/internal/logging"
	"audioguard/internal/notify"
	"audioguard/internal/policy"
	"audioguard/internal/scheduler"
)

// cycleRunner is the engine surface the daemon drives. Satisfied by
// guard.Reconciler.
type cycleRunner interface {
	RunCycle(ctx context.Context, snapshot policy.Snapshot) ([]guard.Transition, error)
}

// Daemon coordinates monitoring and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *policy.Store
	journal  *journal.Store
	notifier notify.Service
	provider audio.Provider
	runner   cycleRunner

	sched   *scheduler.Scheduler
	hotplug *soundMonitor
	watcher *policyWatcher

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running              bool
	PID                  int
	State                string
	LockPath             string
	PolicyPath           string
	JournalPath          string
	TargetProcess        string
	CheckIntervalMs      int
	NotificationsEnabled bool
	DeviceCount          int
}

// New constructs a daemon with initialized dependencies. The journal store may
// be nil when the journal is disabled.
func New(cfg *config.Config, store *policy.Store, journalStore *journal.Store, notifier notify.Service, provider audio.Provider, runner cycleRunner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || notifier == nil || provider == nil || runner == nil {
		return nil, errors.New("daemon requires config, policy store, notifier, provider, and engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "audioguardd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		journal:  journalStore,
		notifier: notifier,
		provider: provider,
		runner:   runner,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.hotplug = newSoundMonitor(logger, d.RequestCycle)
	d.watcher = newPolicyWatcher(store, logger, d.RequestCycle)
	return d, nil
}

// Start acquires the single-instance lock and launches the scheduler and the
// auxiliary wake sources.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another audioguard daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	snapshot := d.store.Snapshot()
	d.sched = scheduler.New(d.cycle, scheduler.Options{
		Interval:     time.Duration(snapshot.CheckIntervalMs) * time.Millisecond,
		StopGrace:    time.Duration(d.cfg.Guard.StopGraceMs) * time.Millisecond,
		ErrorBackoff: time.Duration(d.cfg.Guard.ErrorBackoffMs) * time.Millisecond,
	}, d.logger)

	if err := d.hotplug.Start(runCtx); err != nil {
		d.logger.Warn("sound hotplug monitor unavailable", logging.Error(err))
	}
	if err := d.watcher.Start(runCtx); err != nil {
		d.logger.Warn("policy file watcher unavailable", logging.Error(err))
	}

	if err := d.sched.Start(runCtx); err != nil {
		d.hotplug.Stop()
		d.watcher.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start scheduler: %w", err)
	}

	if d.journal != nil && d.cfg.Journal.RetentionDays > 0 {
		retention := time.Duration(d.cfg.Journal.RetentionDays) * 24 * time.Hour
		if pruned, err := d.journal.Prune(runCtx, retention); err != nil {
			d.logger.Warn("journal prune failed", logging.Error(err))
		} else if pruned > 0 {
			d.logger.Info("journal pruned", logging.Int64("entries", pruned))
		}
	}

	d.running.Store(true)
	d.logger.Info("audioguard daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldProcess, d.cfg.Guard.ProcessName))
	return nil
}

// Stop stops background monitoring and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.hotplug.Stop()
	d.watcher.Stop()
	if d.sched != nil {
		d.sched.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("audioguard daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// RequestCycle asks the scheduler for an immediate pass.
func (d *Daemon) RequestCycle() {
	if d.sched != nil {
		d.sched.Kick()
	}
}

// cycle is one scheduler pass: adopt the current device set into the policy,
// reconcile against a fresh snapshot, then journal and announce what changed.
func (d *Daemon) cycle(ctx context.Context) {
	endpoints, err := d.provider.ListEndpoints(ctx)
	if err != nil {
		d.logger.Warn("endpoint enumeration failed, retrying next tick", logging.Error(err))
		return
	}
	if _, err := d.store.Adopt(endpoints); err != nil {
		d.logger.Warn("device adoption failed", logging.Error(err))
	}

	snapshot := d.store.Snapshot()
	d.syncInterval(snapshot)

	transitions, err := d.runner.RunCycle(ctx, snapshot)
	if err != nil {
		d.logger.Warn("cycle aborted", logging.Error(err))
		return
	}

	for _, transition := range transitions {
		if d.journal != nil {
			if err := d.journal.Record(ctx, transition); err != nil {
				d.logger.Warn("journal write failed", logging.Error(err))
			}
		}
		if !snapshot.ShowNotifications {
			continue
		}
		var notifyErr error
		switch transition.Kind {
		case guard.TransitionMuted:
			notifyErr = d.notifier.NotifyMuted(ctx, transition.EndpointName, transition.ProcessName)
		case guard.TransitionUnmuted:
			notifyErr = d.notifier.NotifyUnmuted(ctx, transition.EndpointName, transition.ProcessName)
		}
		if notifyErr != nil {
			d.logger.Warn("notification failed",
				logging.String(logging.FieldDevice, transition.EndpointName),
				logging.Error(notifyErr))
		}
	}
}

// syncInterval keeps the scheduler cadence aligned with the policy, which can
// change through IPC or a policy file edit.
func (d *Daemon) syncInterval(snapshot policy.Snapshot) {
	if d.sched == nil || snapshot.CheckIntervalMs < 1 {
		return
	}
	want := time.Duration(snapshot.CheckIntervalMs) * time.Millisecond
	if d.sched.Interval() != want {
		if err := d.sched.SetInterval(want); err != nil {
			d.logger.Warn("interval update failed", logging.Error(err))
		}
	}
}

// Devices returns the known endpoints with their ignore flags.
func (d *Daemon) Devices() []policy.EndpointPolicy {
	return d.store.Snapshot().Endpoints
}

// SetIgnored updates one endpoint's ignore flag and schedules an immediate
// pass so the change applies without waiting for the next tick.
func (d *Daemon) SetIgnored(endpointID string, ignored bool) error {
	if err := d.store.SetIgnored(endpointID, ignored); err != nil {
		return err
	}
	d.RequestCycle()
	return nil
}

// SetInterval changes the polling cadence.
func (d *Daemon) SetInterval(ms int) error {
	if err := d.store.SetInterval(ms); err != nil {
		return err
	}
	if d.sched != nil {
		return d.sched.SetInterval(time.Duration(ms) * time.Millisecond)
	}
	return nil
}

// SetNotifications toggles transition notifications.
func (d *Daemon) SetNotifications(enabled bool) error {
	return d.store.SetNotifications(enabled)
}

// History returns recent journal entries, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]journal.Entry, error) {
	if d.journal == nil {
		return nil, errors.New("journal disabled")
	}
	return d.journal.List(ctx, limit)
}

// ClearHistory removes all journal entries.
func (d *Daemon) ClearHistory(ctx context.Context) error {
	if d.journal == nil {
		return errors.New("journal disabled")
	}
	return d.journal.Clear(ctx)
}

// TestNotification sends a test message through the configured backends.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg.Notifications.NtfyTopic == "" && !d.cfg.Notifications.DesktopEnabled {
		return false, "no notification backend configured", nil
	}
	if err := d.notifier.Test(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	snapshot := d.store.Snapshot()
	state := string(scheduler.StateStopped)
	if d.sched != nil {
		state = string(d.sched.State())
	}
	journalPath := ""
	if d.journal != nil {
		journalPath = d.journal.Path()
	}
	return Status{
		Running:              d.running.Load(),
		PID:                  os.Getpid(),
		State:                state,
		LockPath:             d.lockPath,
		PolicyPath:           d.store.Path(),
		JournalPath:          journalPath,
		TargetProcess:        d.cfg.Guard.ProcessName,
		CheckIntervalMs:      snapshot.CheckIntervalMs,
		NotificationsEnabled: snapshot.ShowNotifications,
		DeviceCount:          len(snapshot.Endpoints),
	}
}
