// Package daemonrun assembles and runs the daemon process: logging, pid file,
// stores, IPC server, and signal handling.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"audioguard/internal/audio/pulse"
	"audioguard/internal/config"
	"audioguard/internal/daemon"
	"audioguard/internal/guard"
	"audioguard/internal/ipc"
	"audioguard/internal/journal"
	"audioguard/internal/logging"
	"audioguard/internal/notify"
	"audioguard/internal/policy"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// SocketPath returns the IPC socket location for the given configuration.
func SocketPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "audioguardd.sock")
}

// Run starts the audioguard daemon runtime loop and blocks until SIGINT or
// SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("audioguard-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update audioguard.log link: %v\n", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "audioguardd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := policy.Load(cfg.Paths.PolicyFile, logger)
	if err != nil {
		logger.Error("load policy store", logging.Error(err))
		return err
	}

	var journalStore *journal.Store
	if cfg.Journal.Enabled {
		journalStore, err = journal.Open(cfg.Paths.LogDir)
		if err != nil {
			logger.Error("open journal", logging.Error(err))
			return err
		}
		defer journalStore.Close()
	}

	provider := pulse.New(pulse.Options{
		Binary:         cfg.Provider.PactlBinary,
		CommandTimeout: time.Duration(cfg.Provider.CommandTimeout) * time.Second,
	}, logger)
	notifier := notify.NewService(cfg)
	reconciler := guard.New(provider, cfg.Guard.ProcessName, logger)

	d, err := daemon.New(cfg, store, journalStore, notifier, provider, reconciler, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, SocketPath(cfg), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check that no other audioguard daemon is running"))
	}

	<-signalCtx.Done()
	logger.Info("audioguard daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "audioguard.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
