package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGuard()
	c.normalizeProvider()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PolicyFile) == "" {
		c.Paths.PolicyFile = defaultPolicyFile
	}
	if c.Paths.PolicyFile, err = expandPath(c.Paths.PolicyFile); err != nil {
		return fmt.Errorf("paths.policy_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeGuard() {
	c.Guard.ProcessName = strings.TrimSpace(c.Guard.ProcessName)
	if c.Guard.ProcessName == "" {
		c.Guard.ProcessName = defaultProcessName
	}
	if c.Guard.StopGraceMs <= 0 {
		c.Guard.StopGraceMs = defaultStopGraceMs
	}
	if c.Guard.ErrorBackoffMs <= 0 {
		c.Guard.ErrorBackoffMs = defaultErrorBackoffMs
	}
}

func (c *Config) normalizeProvider() {
	c.Provider.PactlBinary = strings.TrimSpace(c.Provider.PactlBinary)
	if c.Provider.PactlBinary == "" {
		c.Provider.PactlBinary = defaultPactlBinary
	}
	if c.Provider.CommandTimeout <= 0 {
		c.Provider.CommandTimeout = defaultProviderCommandTimeout
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("AUDIOGUARD_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Notifications.DesktopCommand = strings.TrimSpace(c.Notifications.DesktopCommand)
	if c.Notifications.DesktopCommand == "" {
		c.Notifications.DesktopCommand = defaultDesktopCommand
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
