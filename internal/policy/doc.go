// Package policy owns the per-endpoint mute policy and its persistence.
//
// A single Store holds the working policy. Readers take immutable snapshots;
// writers go through Update, which commits atomically and saves the policy
// file. The on-disk record keeps the schema of the original settings file so
// existing installations migrate in place, including the legacy shape that
// stored only a flat list of ignored device names.
package policy
