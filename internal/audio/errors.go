package audio

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderUnavailable means endpoints cannot be enumerated at all.
	// The whole cycle is abandoned and retried on the next tick.
	ErrProviderUnavailable = errors.New("audio provider unavailable")
	// ErrEndpointUnavailable means one endpoint's sessions are unreadable.
	// The endpoint is skipped; the cycle continues.
	ErrEndpointUnavailable = errors.New("audio endpoint unavailable")
	// ErrSessionGone means the session was torn down mid-read, usually
	// because the owning process exited. The session is skipped silently.
	ErrSessionGone = errors.New("audio session gone")
)

// Wrap tags err with the provided sentinel and an operation detail so callers
// can classify it with errors.Is. The marker should be one of the exported
// sentinels above.
func Wrap(marker error, operation string, err error) error {
	if marker == nil {
		marker = ErrProviderUnavailable
	}
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "provider call"
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, operation, err)
	}
	return fmt.Errorf("%w: %s", marker, operation)
}
