package policy

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"audioguard/internal/audio"
	"audioguard/internal/logging"
)

// Store is the single owner of the working policy. Snapshot is safe to call
// concurrently with Update; readers observe either the old or the new policy
// in full, never an interleaving.
type Store struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger

	working Policy
	// pendingLegacy holds ignored-device names from the legacy file format
	// until the first adoption pass can match them against real endpoints.
	pendingLegacy []string
}

// Load reads the policy file at path, falling back to the default policy when
// the file is missing or unreadable. A corrupt file is logged and replaced by
// defaults; it never prevents startup.
func Load(path string, logger *slog.Logger) (*Store, error) {
	store := &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "policy-store"),
	}
	if err := store.loadLocked(); err != nil {
		return nil, err
	}
	return store, nil
}

// Path returns the policy file location.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns an immutable copy of the committed policy.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		CheckIntervalMs:   s.working.CheckIntervalMs,
		ShowNotifications: s.working.ShowNotifications,
		Endpoints:         append([]EndpointPolicy(nil), s.working.Devices...),
	}
}

// Update applies the mutator to a copy of the working policy, commits the
// result, and saves it. The mutator must not retain the policy it receives.
func (s *Store) Update(mutate func(*Policy)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.working.clone()
	mutate(&next)
	next.normalize()
	s.working = next
	return s.saveLocked()
}

// SetIgnored flips the ignore flag for one endpoint.
func (s *Store) SetIgnored(endpointID string, ignored bool) error {
	found := false
	err := s.Update(func(p *Policy) {
		for i := range p.Devices {
			if p.Devices[i].ID == endpointID {
				p.Devices[i].Ignored = ignored
				found = true
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("unknown endpoint %q", endpointID)
	}
	return nil
}

// SetInterval changes the polling cadence in milliseconds.
func (s *Store) SetInterval(ms int) error {
	if ms < 1 {
		return fmt.Errorf("interval must be at least 1ms, got %d", ms)
	}
	return s.Update(func(p *Policy) {
		p.CheckIntervalMs = ms
	})
}

// SetNotifications toggles transition notifications.
func (s *Store) SetNotifications(enabled bool) error {
	return s.Update(func(p *Policy) {
		p.ShowNotifications = enabled
	})
}

// Adopt reconciles the device list against the endpoints the provider
// currently reports: unknown endpoints are added as not ignored, renamed
// endpoints get their friendly name refreshed, and vanished endpoints are
// pruned. Pending legacy ignore names are resolved here, on the first pass
// that sees real endpoints. Returns true when the policy changed.
func (s *Store) Adopt(observed []audio.Endpoint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.working.clone()
	changed := false

	known := make(map[string]int, len(next.Devices))
	for i, device := range next.Devices {
		known[device.ID] = i
	}

	seen := make(map[string]bool, len(observed))
	for _, endpoint := range observed {
		seen[endpoint.ID] = true
		if i, ok := known[endpoint.ID]; ok {
			if endpoint.Name != "" && next.Devices[i].FriendlyName != endpoint.Name {
				next.Devices[i].FriendlyName = endpoint.Name
				changed = true
			}
			continue
		}
		next.Devices = append(next.Devices, EndpointPolicy{
			ID:           endpoint.ID,
			FriendlyName: endpoint.Name,
		})
		changed = true
	}

	kept := next.Devices[:0]
	for _, device := range next.Devices {
		if !seen[device.ID] {
			changed = true
			continue
		}
		kept = append(kept, device)
	}
	next.Devices = kept

	if len(s.pendingLegacy) > 0 && len(observed) > 0 {
		if s.applyLegacy(&next) {
			changed = true
		}
		s.pendingLegacy = nil
		changed = true
	}

	if !changed {
		return false, nil
	}
	next.normalize()
	s.working = next
	return true, s.saveLocked()
}

// Reload re-reads the policy file, replacing the working policy. Used when the
// file changes on disk behind the daemon's back.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) applyLegacy(next *Policy) bool {
	applied := false
	for _, name := range s.pendingLegacy {
		matches := 0
		for i := range next.Devices {
			if !foldEqual(next.Devices[i].FriendlyName, name) {
				continue
			}
			next.Devices[i].Ignored = true
			matches++
			applied = true
		}
		switch matches {
		case 0:
			s.logger.Warn("legacy ignored device not present, dropping",
				logging.String(logging.FieldDevice, name))
		case 1:
		default:
			s.logger.Warn("legacy ignored device name is ambiguous, marking all matches",
				logging.String(logging.FieldDevice, name),
				logging.Int("matches", matches))
		}
	}
	return applied
}

func (s *Store) loadLocked() error {
	record, legacy, err := readFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.working = Default()
		return nil
	case err != nil:
		s.logger.Warn("policy file unreadable, using defaults",
			logging.String("path", s.path),
			logging.Error(err))
		s.working = Default()
		return nil
	}
	record.normalize()
	s.working = record
	if len(legacy) > 0 {
		s.pendingLegacy = legacy
		s.logger.Info("legacy policy format detected, migration deferred until devices are known",
			logging.Int("ignored_names", len(legacy)))
	}
	return nil
}
