package autostart

import (
	"os"
	"strings"
	"testing"
)

func TestInstallRemoveLifecycle(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	enabled, _, err := Enabled()
	if err != nil {
		t.Fatal(err)
	}
	if enabled {
		t.Fatal("entry reported enabled before install")
	}

	entryPath, err := Install("/usr/local/bin/audioguard")
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	content, err := os.ReadFile(entryPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "Exec=/usr/local/bin/audioguard run") {
		t.Fatalf("unexpected entry content:\n%s", content)
	}

	enabled, _, err = Enabled()
	if err != nil {
		t.Fatal(err)
	}
	if !enabled {
		t.Fatal("entry not reported enabled after install")
	}

	if _, err := Remove(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	enabled, _, err = Enabled()
	if err != nil {
		t.Fatal(err)
	}
	if enabled {
		t.Fatal("entry still enabled after remove")
	}

	// Removing again is a no-op.
	if _, err := Remove(); err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
}
