package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"audioguard/internal/logging"
	"audioguard/internal/policy"
)

// policyWatcherDebounce coalesces the burst of filesystem events an editor or
// atomic rename produces into one reload.
const policyWatcherDebounce = 250 * time.Millisecond

// policyWatcher reloads the policy store when the policy file changes on disk,
// so external edits take effect on the next cycle. The parent directory is
// watched because atomic saves replace the file inode.
type policyWatcher struct {
	store  *policy.Store
	logger *slog.Logger
	onWake func()

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	quit    chan struct{}
	running bool
}

func newPolicyWatcher(store *policy.Store, logger *slog.Logger, onWake func()) *policyWatcher {
	return &policyWatcher{
		store:  store,
		logger: logging.NewComponentLogger(logger, "policy-watcher"),
		onWake: onWake,
	}
}

// Start begins watching the policy file. Failure is non-fatal; edits are then
// only picked up through IPC or restart.
func (w *policyWatcher) Start(ctx context.Context) error {
	if w == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	w.watcher = watcher
	w.quit = make(chan struct{})
	w.running = true

	quit := w.quit
	go w.watchLoop(ctx, watcher, quit)

	w.logger.Info("policy file watcher started",
		logging.String("path", w.store.Path()))
	return nil
}

// Stop shuts down the watcher.
func (w *policyWatcher) Stop() {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}

	if w.quit != nil {
		close(w.quit)
		w.quit = nil
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
		w.watcher = nil
	}
	w.running = false
}

func (w *policyWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, quit <-chan struct{}) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	target := w.store.Path()
	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(policyWatcherDebounce, w.reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("policy watcher error", logging.Error(err))
		}
	}
}

func (w *policyWatcher) reload() {
	if err := w.store.Reload(); err != nil {
		w.logger.Warn("policy reload failed", logging.Error(err))
		return
	}
	w.logger.Debug("policy reloaded from disk")
	if w.onWake != nil {
		w.onWake()
	}
}
