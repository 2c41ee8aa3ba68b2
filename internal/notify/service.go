package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"audioguard/internal/config"
)

// Service defines the notification surface exposed to the daemon.
type Service interface {
	NotifyMuted(ctx context.Context, deviceName, processName string) error
	NotifyUnmuted(ctx context.Context, deviceName, processName string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	Test(ctx context.Context) error
}

// NewService builds the notification service from configuration. With no
// backend configured a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	var services []Service

	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		services = append(services, &ntfyService{
			endpoint: topic,
			client:   &http.Client{Timeout: timeout},
		})
	}

	if cfg.Notifications.DesktopEnabled {
		services = append(services, newDesktopService(cfg.Notifications.DesktopCommand))
	}

	switch len(services) {
	case 0:
		return noopService{}
	case 1:
		return services[0]
	default:
		return fanoutService(services)
	}
}

// fanoutService delivers to every backend and reports the combined failures.
type fanoutService []Service

func (f fanoutService) NotifyMuted(ctx context.Context, deviceName, processName string) error {
	var errs []error
	for _, service := range f {
		errs = append(errs, service.NotifyMuted(ctx, deviceName, processName))
	}
	return errors.Join(errs...)
}

func (f fanoutService) NotifyUnmuted(ctx context.Context, deviceName, processName string) error {
	var errs []error
	for _, service := range f {
		errs = append(errs, service.NotifyUnmuted(ctx, deviceName, processName))
	}
	return errors.Join(errs...)
}

func (f fanoutService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var errs []error
	for _, service := range f {
		errs = append(errs, service.NotifyError(ctx, err, contextLabel))
	}
	return errors.Join(errs...)
}

func (f fanoutService) Test(ctx context.Context) error {
	var errs []error
	for _, service := range f {
		errs = append(errs, service.Test(ctx))
	}
	return errors.Join(errs...)
}

type noopService struct{}

func (noopService) NotifyMuted(context.Context, string, string) error   { return nil }
func (noopService) NotifyUnmuted(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error    { return nil }
func (noopService) Test(context.Context) error                          { return nil }
