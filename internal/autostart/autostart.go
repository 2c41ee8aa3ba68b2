// Package autostart manages the XDG autostart desktop entry that launches the
// daemon on login.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

const entryName = "audioguard.desktop"

const entryTemplate = `[Desktop Entry]
Type=Application
Name=Audioguard
Comment=Keep the target application muted on non-whitelisted playback devices
Exec=%s run
Terminal=false
X-GNOME-Autostart-enabled=true
`

// EntryPath returns the autostart desktop entry location.
func EntryPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(configDir, "autostart", entryName), nil
}

// Install writes the autostart entry pointing at the given executable.
// An empty executable resolves to the current binary.
func Install(executable string) (string, error) {
	if executable == "" {
		path, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("resolve executable: %w", err)
		}
		executable = path
	}

	entryPath, err := EntryPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(entryPath), 0o755); err != nil {
		return "", fmt.Errorf("create autostart directory: %w", err)
	}
	content := fmt.Sprintf(entryTemplate, executable)
	if err := os.WriteFile(entryPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write autostart entry: %w", err)
	}
	return entryPath, nil
}

// Remove deletes the autostart entry. Removing an absent entry is not an
// error.
func Remove() (string, error) {
	entryPath, err := EntryPath()
	if err != nil {
		return "", err
	}
	if err := os.Remove(entryPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove autostart entry: %w", err)
	}
	return entryPath, nil
}

// Enabled reports whether the autostart entry exists.
func Enabled() (bool, string, error) {
	entryPath, err := EntryPath()
	if err != nil {
		return false, "", err
	}
	info, err := os.Stat(entryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, entryPath, nil
		}
		return false, entryPath, fmt.Errorf("stat autostart entry: %w", err)
	}
	return !info.IsDir(), entryPath, nil
}
