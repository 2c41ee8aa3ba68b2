// Package audio defines the endpoint/session provider capability consumed by
// the reconciliation engine.
//
// A Provider enumerates active playback endpoints and the audio sessions
// routed to them, and hands out per-session controls for mute state and
// volume. Implementations live in subpackages (pulse shells out to pactl);
// tests use in-memory fakes. The error sentinels here classify provider
// failures so the engine can decide between aborting a cycle, skipping an
// endpoint, and skipping a session.
package audio
