// Package notify delivers short human-readable messages about applied mute
// transitions. Delivery is fire-and-forget: a failed notification is logged
// by the caller and never affects reconciliation. Backends are ntfy push and
// the desktop notification command, fanned out when both are configured.
package notify
