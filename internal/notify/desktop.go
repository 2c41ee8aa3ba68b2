package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandRunner abstracts the notification command so tests can capture
// invocations.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execCommandRunner struct{}

func (execCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run() //nolint:gosec
}

// desktopService shells out to notify-send (or a configured equivalent) for
// transient on-screen notifications.
type desktopService struct {
	command string
	runner  commandRunner
}

func newDesktopService(command string) *desktopService {
	command = strings.TrimSpace(command)
	if command == "" {
		command = "notify-send"
	}
	return &desktopService{command: command, runner: execCommandRunner{}}
}

func (d *desktopService) NotifyMuted(ctx context.Context, deviceName, processName string) error {
	return d.send(ctx, "Audioguard", fmt.Sprintf("Muted %s on %s", processName, deviceName))
}

func (d *desktopService) NotifyUnmuted(ctx context.Context, deviceName, processName string) error {
	return d.send(ctx, "Audioguard", fmt.Sprintf("Unmuted %s on %s", processName, deviceName))
}

func (d *desktopService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	message := "Error"
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		message += " with " + contextLabel
	}
	if err != nil {
		message += ": " + strings.TrimSpace(err.Error())
	}
	return d.send(ctx, "Audioguard", message)
}

func (d *desktopService) Test(ctx context.Context) error {
	return d.send(ctx, "Audioguard", "Notification system test")
}

func (d *desktopService) send(ctx context.Context, title, message string) error {
	if err := d.runner.Run(ctx, d.command, "--app-name=audioguard", title, message); err != nil {
		return fmt.Errorf("run %s: %w", d.command, err)
	}
	return nil
}
