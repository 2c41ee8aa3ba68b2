package policy

import "strings"

// Default cadence and notification settings for a fresh policy.
const (
	DefaultCheckIntervalMs = 1000
	DefaultNotifications   = true
)

// EndpointPolicy is the mute intent for one playback endpoint. Endpoints are
// identified by ID; the friendly name is display-only and may change without
// affecting identity.
type EndpointPolicy struct {
	ID           string
	FriendlyName string
	Ignored      bool
}

// Policy is the mutable working state held by the Store.
type Policy struct {
	CheckIntervalMs   int
	ShowNotifications bool
	Devices           []EndpointPolicy
}

// Default returns a policy with no known devices.
func Default() Policy {
	return Policy{
		CheckIntervalMs:   DefaultCheckIntervalMs,
		ShowNotifications: DefaultNotifications,
	}
}

// Device returns the entry for the given endpoint ID.
func (p Policy) Device(id string) (EndpointPolicy, bool) {
	for _, device := range p.Devices {
		if device.ID == id {
			return device, true
		}
	}
	return EndpointPolicy{}, false
}

func (p Policy) clone() Policy {
	out := p
	out.Devices = append([]EndpointPolicy(nil), p.Devices...)
	return out
}

func (p *Policy) normalize() {
	if p.CheckIntervalMs < 1 {
		p.CheckIntervalMs = DefaultCheckIntervalMs
	}
	seen := make(map[string]bool, len(p.Devices))
	devices := p.Devices[:0]
	for _, device := range p.Devices {
		device.ID = strings.TrimSpace(device.ID)
		if device.ID == "" || seen[device.ID] {
			continue
		}
		seen[device.ID] = true
		devices = append(devices, device)
	}
	p.Devices = devices
}

// Snapshot is the immutable per-cycle view of the policy. The engine resolves
// endpoints absent from the snapshot as not ignored.
type Snapshot struct {
	CheckIntervalMs   int
	ShowNotifications bool
	Endpoints         []EndpointPolicy
}

// Endpoint returns the policy entry for the given endpoint ID.
func (s Snapshot) Endpoint(id string) (EndpointPolicy, bool) {
	for _, endpoint := range s.Endpoints {
		if endpoint.ID == id {
			return endpoint, true
		}
	}
	return EndpointPolicy{}, false
}
