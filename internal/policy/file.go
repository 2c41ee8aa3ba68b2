package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileRecord is the on-disk schema, kept compatible with the original
// settings file so existing installations load without conversion.
type fileRecord struct {
	AppConfig fileAppConfig `json:"AppConfig"`
}

type fileAppConfig struct {
	CheckIntervalMs   int          `json:"checkIntervalMs"`
	ShowNotifications *bool        `json:"showNotifications"`
	Devices           []fileDevice `json:"devices"`
	// IgnoredDevices is the legacy shape: a flat list of device names that
	// were ignored. Present only in files written before per-device entries.
	IgnoredDevices []string `json:"IgnoredDevices"`
}

type fileDevice struct {
	FriendlyName string `json:"friendlyName"`
	ID           string `json:"id"`
	Ignored      bool   `json:"ignored"`
}

func readFile(path string) (Policy, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, nil, err
	}
	var record fileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return Policy{}, nil, fmt.Errorf("parse policy file: %w", err)
	}

	policy := Default()
	if record.AppConfig.CheckIntervalMs > 0 {
		policy.CheckIntervalMs = record.AppConfig.CheckIntervalMs
	}
	if record.AppConfig.ShowNotifications != nil {
		policy.ShowNotifications = *record.AppConfig.ShowNotifications
	}
	for _, device := range record.AppConfig.Devices {
		policy.Devices = append(policy.Devices, EndpointPolicy{
			ID:           device.ID,
			FriendlyName: device.FriendlyName,
			Ignored:      device.Ignored,
		})
	}

	var legacy []string
	if len(record.AppConfig.Devices) == 0 && len(record.AppConfig.IgnoredDevices) > 0 {
		legacy = record.AppConfig.IgnoredDevices
	}
	return policy, legacy, nil
}

// saveLocked writes the working policy atomically. Callers hold s.mu.
func (s *Store) saveLocked() error {
	enabled := s.working.ShowNotifications
	record := fileRecord{AppConfig: fileAppConfig{
		CheckIntervalMs:   s.working.CheckIntervalMs,
		ShowNotifications: &enabled,
		Devices:           make([]fileDevice, 0, len(s.working.Devices)),
	}}
	for _, device := range s.working.Devices {
		record.AppConfig.Devices = append(record.AppConfig.Devices, fileDevice{
			FriendlyName: device.FriendlyName,
			ID:           device.ID,
			Ignored:      device.Ignored,
		})
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode policy file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create policy directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".policy-*.json")
	if err != nil {
		return fmt.Errorf("create temp policy file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write policy file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close policy file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace policy file: %w", err)
	}
	return nil
}

// foldEqual compares device names ignoring case and Unicode composition
// differences, since legacy files carry names typed or copied by users.
func foldEqual(a, b string) bool {
	return strings.EqualFold(norm.NFC.String(a), norm.NFC.String(b))
}
