// Package daemon ties the reconciliation engine, the scheduler, the policy
// store, and the transition journal into a single lifecycle with flock-based
// locking to prevent multiple concurrent instances. Beyond the periodic tick,
// two sources wake the engine early: sound-card hotplug events from udev and
// external edits to the policy file.
package daemon
