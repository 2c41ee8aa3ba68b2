// Package config loads, normalizes, and validates audioguard configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every static knob the daemon
// and CLI need. Hot-reloadable state (the per-device mute policy, the poll
// interval, the notification toggle) is deliberately not here: it lives in
// the policy store, which owns its own durable record.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
