// Package guard implements the reconciliation engine.
//
// Each cycle enumerates the active playback endpoints, finds the audio
// sessions owned by the target process, and forces every matching session to
// the mute state the policy prescribes for its endpoint. Changes are applied
// only when the observed state differs from the desired one, so a quiet
// system produces no work and no events. Failures degrade the cycle rather
// than abort it: an unreadable endpoint is skipped, a vanished session is
// skipped, and only a failed endpoint enumeration abandons the whole pass.
package guard
