package ipc

import "time"

// StartRequest triggers daemon monitoring startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon monitoring.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running              bool   `json:"running"`
	PID                  int    `json:"pid"`
	State                string `json:"state"`
	LockPath             string `json:"lock_path"`
	PolicyPath           string `json:"policy_path"`
	JournalPath          string `json:"journal_path"`
	TargetProcess        string `json:"target_process"`
	CheckIntervalMs      int    `json:"check_interval_ms"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	DeviceCount          int    `json:"device_count"`
}

// Device is one playback endpoint with its ignore flag.
type Device struct {
	ID           string `json:"id"`
	FriendlyName string `json:"friendly_name"`
	Ignored      bool   `json:"ignored"`
}

// DeviceListRequest fetches the known endpoints.
type DeviceListRequest struct{}

// DeviceListResponse contains the known endpoints.
type DeviceListResponse struct {
	Devices []Device `json:"devices"`
}

// DeviceSetIgnoredRequest updates one endpoint's ignore flag.
type DeviceSetIgnoredRequest struct {
	ID      string `json:"id"`
	Ignored bool   `json:"ignored"`
}

// DeviceSetIgnoredResponse confirms the update.
type DeviceSetIgnoredResponse struct {
	Updated bool `json:"updated"`
}

// SetIntervalRequest changes the polling cadence.
type SetIntervalRequest struct {
	IntervalMs int `json:"interval_ms"`
}

// SetIntervalResponse confirms the cadence change.
type SetIntervalResponse struct {
	IntervalMs int `json:"interval_ms"`
}

// SetNotificationsRequest toggles transition notifications.
type SetNotificationsRequest struct {
	Enabled bool `json:"enabled"`
}

// SetNotificationsResponse confirms the toggle.
type SetNotificationsResponse struct {
	Enabled bool `json:"enabled"`
}

// HistoryEntry is one journaled transition.
type HistoryEntry struct {
	ID           string    `json:"id"`
	EndpointID   string    `json:"endpoint_id"`
	EndpointName string    `json:"endpoint_name"`
	Kind         string    `json:"kind"`
	ProcessName  string    `json:"process_name"`
	ProcessID    uint32    `json:"process_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// HistoryRequest fetches recent transitions, newest first. A non-positive
// limit returns everything.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse contains journaled transitions.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// HistoryClearRequest removes all journal entries.
type HistoryClearRequest struct{}

// HistoryClearResponse confirms the journal was cleared.
type HistoryClearResponse struct {
	Cleared bool `json:"cleared"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
