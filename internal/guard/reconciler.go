package guard

import (
	"context"
	"log/slog"
	"strings"

	"audioguard/internal/audio"
	"audioguard/internal/logging"
	"audioguard/internal/policy"
)

// TransitionKind distinguishes the two session state changes the engine
// applies.
type TransitionKind string

const (
	TransitionMuted   TransitionKind = "muted"
	TransitionUnmuted TransitionKind = "unmuted"
)

// Transition describes one applied mute state change. Unchanged sessions
// produce no Transition.
type Transition struct {
	EndpointID   string
	EndpointName string
	Kind         TransitionKind
	ProcessName  string
	ProcessID    uint32
}

// Reconciler drives one enumerate-and-reconcile pass at a time. It holds no
// state between cycles; every cycle rebuilds its view from the provider and
// the policy snapshot it is handed.
type Reconciler struct {
	provider audio.Provider
	target   string
	logger   *slog.Logger
}

// New returns a reconciler that matches sessions against targetProcess
// case-insensitively.
func New(provider audio.Provider, targetProcess string, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		provider: provider,
		target:   targetProcess,
		logger:   logging.NewComponentLogger(logger, "reconciler"),
	}
}

// RunCycle reconciles every matching session against the snapshot. It returns
// an error only when endpoint enumeration itself fails; per-endpoint and
// per-session failures are logged and skipped. Endpoints absent from the
// snapshot default to not ignored, which means matching sessions are muted.
func (r *Reconciler) RunCycle(ctx context.Context, snapshot policy.Snapshot) ([]Transition, error) {
	endpoints, err := r.provider.ListEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	var transitions []Transition
	for _, endpoint := range endpoints {
		ignored := false
		displayName := endpoint.Name
		if entry, ok := snapshot.Endpoint(endpoint.ID); ok {
			ignored = entry.Ignored
			if entry.FriendlyName != "" {
				displayName = entry.FriendlyName
			}
		}

		sessions, err := r.provider.ListSessions(ctx, endpoint.ID)
		if err != nil {
			r.logger.Warn("skipping endpoint, session enumeration failed",
				logging.String(logging.FieldEndpoint, endpoint.ID),
				logging.Error(err))
			continue
		}

		for _, session := range sessions {
			transition, applied := r.reconcileSession(ctx, endpoint.ID, displayName, session, ignored)
			if applied {
				transitions = append(transitions, transition)
			}
		}
	}
	return transitions, nil
}

// reconcileSession applies the desired state to one session and always closes
// its control, whatever path it exits on.
func (r *Reconciler) reconcileSession(ctx context.Context, endpointID, displayName string, session audio.Session, ignored bool) (transition Transition, applied bool) {
	defer session.Control.Close()

	// A zero pid means the owner could not be resolved, usually because the
	// process exited between enumeration and lookup. Not an error.
	if session.ProcessID == 0 && session.ProcessName == "" {
		return Transition{}, false
	}
	if !strings.EqualFold(session.ProcessName, r.target) {
		return Transition{}, false
	}

	muted, err := session.Control.Muted(ctx)
	if err != nil {
		r.logger.Debug("skipping session, mute state unreadable",
			logging.String(logging.FieldEndpoint, endpointID),
			logging.Uint32(logging.FieldPID, session.ProcessID),
			logging.Error(err))
		return Transition{}, false
	}

	desiredMuted := !ignored
	if muted == desiredMuted {
		return Transition{}, false
	}

	if err := session.Control.SetMuted(ctx, desiredMuted); err != nil {
		r.logger.Debug("skipping session, mute change failed",
			logging.String(logging.FieldEndpoint, endpointID),
			logging.Uint32(logging.FieldPID, session.ProcessID),
			logging.Error(err))
		return Transition{}, false
	}
	kind := TransitionMuted
	if !desiredMuted {
		kind = TransitionUnmuted
		// Restoring audibility also restores unity volume; the original
		// level is not preserved across a mute.
		if err := session.Control.SetVolume(ctx, 1.0); err != nil {
			r.logger.Debug("volume reset failed",
				logging.String(logging.FieldEndpoint, endpointID),
				logging.Uint32(logging.FieldPID, session.ProcessID),
				logging.Error(err))
		}
	}

	r.logger.Info("session state changed",
		logging.String(logging.FieldEndpoint, endpointID),
		logging.String(logging.FieldDevice, displayName),
		logging.String(logging.FieldProcess, session.ProcessName),
		logging.Uint32(logging.FieldPID, session.ProcessID),
		logging.String("kind", string(kind)))

	return Transition{
		EndpointID:   endpointID,
		EndpointName: displayName,
		Kind:         kind,
		ProcessName:  session.ProcessName,
		ProcessID:    session.ProcessID,
	}, true
}
