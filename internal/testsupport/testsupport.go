// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"audioguard/internal/config"
	"audioguard/internal/logging"
	"audioguard/internal/policy"
)

// NewConfig returns a validated configuration rooted in temporary
// directories.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.PolicyFile = filepath.Join(t.TempDir(), "policy.json")
	cfg.Notifications.NtfyTopic = ""
	cfg.Notifications.DesktopEnabled = false
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// NewPolicyStore returns a policy store backed by the config's policy file.
func NewPolicyStore(t *testing.T, cfg *config.Config) *policy.Store {
	t.Helper()
	store, err := policy.Load(cfg.Paths.PolicyFile, logging.NewNop())
	if err != nil {
		t.Fatalf("load policy store: %v", err)
	}
	return store
}
