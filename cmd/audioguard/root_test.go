package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	expected := []string{
		"start", "stop", "restart", "status", "run",
		"devices", "interval", "notify", "history", "test-notify",
		"config", "autostart",
	}
	registered := make(map[string]bool)
	for _, cmd := range root.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range expected {
		if !registered[name] {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Count"},
		[][]string{{"speakers", "3"}, {"headphones", "1"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	for _, want := range []string{"Name", "Count", "speakers", "headphones"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B", "C"},
		[][]string{{"only"}},
		nil,
	)
	if !strings.Contains(out, "only") {
		t.Errorf("table output missing row value:\n%s", out)
	}
}

func TestYesNo(t *testing.T) {
	if got := yesNo(true); got != "yes" {
		t.Errorf("yesNo(true) = %q", got)
	}
	if got := yesNo(false); got != "no" {
		t.Errorf("yesNo(false) = %q", got)
	}
}

func TestRunningLabel(t *testing.T) {
	if got := runningLabel(true, false); got != "yes" {
		t.Errorf("plain label = %q", got)
	}
	if got := runningLabel(true, true); !strings.Contains(got, "yes") || !strings.Contains(got, ansiGreen) {
		t.Errorf("colorized running label = %q", got)
	}
	if got := runningLabel(false, true); !strings.Contains(got, ansiRed) {
		t.Errorf("colorized stopped label = %q", got)
	}
}

func TestShouldColorizeNonFileWriter(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Error("buffer writer should not colorize")
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", "--path", target})

	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[guard]") {
		t.Errorf("sample config missing guard section:\n%s", data)
	}
	if !strings.Contains(out.String(), target) {
		t.Errorf("output should mention the written path, got %q", out.String())
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "init", "--path", target})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error when config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAutostartLifecycle(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	root.SetArgs([]string{"autostart", "status"})
	if err := root.Execute(); err != nil {
		t.Fatalf("autostart status failed: %v", err)
	}
	if !strings.Contains(out.String(), "Autostart enabled: no") {
		t.Errorf("expected disabled status, got %q", out.String())
	}

	out.Reset()
	root.SetArgs([]string{"autostart", "enable"})
	if err := root.Execute(); err != nil {
		t.Fatalf("autostart enable failed: %v", err)
	}

	out.Reset()
	root.SetArgs([]string{"autostart", "status"})
	if err := root.Execute(); err != nil {
		t.Fatalf("autostart status failed: %v", err)
	}
	if !strings.Contains(out.String(), "Autostart enabled: yes") {
		t.Errorf("expected enabled status, got %q", out.String())
	}

	out.Reset()
	root.SetArgs([]string{"autostart", "disable"})
	if err := root.Execute(); err != nil {
		t.Fatalf("autostart disable failed: %v", err)
	}
}

func TestNotifyCommandRejectsInvalidArgument(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"notify", "maybe"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for invalid notify argument")
	}
	if !strings.Contains(err.Error(), "expected on or off") {
		t.Errorf("unexpected error: %v", err)
	}
}
