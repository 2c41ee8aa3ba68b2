package audio

import "context"

// Endpoint identifies an active playback device. ID is the stable identifier
// used for policy lookups; Name is the human-readable label and may change
// without affecting identity.
type Endpoint struct {
	ID   string
	Name string
}

// Session is one per-process audio stream on an endpoint. ProcessID is zero
// when the owner could not be determined; ProcessName is empty when the owner
// exited before it could be resolved. The Control is a borrowed capability
// valid for the current cycle only and must be closed by the caller.
type Session struct {
	ProcessID   uint32
	ProcessName string
	Control     Control
}

// Control mutates the mute state and volume of a single session. All methods
// may fail with ErrSessionGone when the session was torn down concurrently.
type Control interface {
	Muted(ctx context.Context) (bool, error)
	SetMuted(ctx context.Context, muted bool) error
	// SetVolume sets the session volume as a fraction in [0, 1].
	SetVolume(ctx context.Context, volume float64) error
	Close() error
}

// Provider enumerates playback endpoints and their sessions.
type Provider interface {
	// ListEndpoints returns the active playback endpoints. Failure is
	// classified as ErrProviderUnavailable.
	ListEndpoints(ctx context.Context) ([]Endpoint, error)
	// ListSessions returns the active sessions on one endpoint. Failure is
	// classified as ErrEndpointUnavailable and affects only that endpoint.
	ListSessions(ctx context.Context, endpointID string) ([]Session, error)
}
