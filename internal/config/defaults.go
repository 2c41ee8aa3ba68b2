package config

const (
	defaultLogDir                 = "~/.local/share/audioguard/logs"
	defaultPolicyFile             = "~/.config/audioguard/policy.json"
	defaultProcessName            = "Discord"
	defaultStopGraceMs            = 2000
	defaultErrorBackoffMs         = 5000
	defaultPactlBinary            = "pactl"
	defaultProviderCommandTimeout = 5
	defaultNotifyRequestTimeout   = 10
	defaultDesktopCommand         = "notify-send"
	defaultJournalRetentionDays   = 30
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:     defaultLogDir,
			PolicyFile: defaultPolicyFile,
		},
		Guard: Guard{
			ProcessName:    defaultProcessName,
			StopGraceMs:    defaultStopGraceMs,
			ErrorBackoffMs: defaultErrorBackoffMs,
		},
		Provider: Provider{
			PactlBinary:    defaultPactlBinary,
			CommandTimeout: defaultProviderCommandTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			DesktopEnabled: true,
			DesktopCommand: defaultDesktopCommand,
		},
		Journal: Journal{
			Enabled:       true,
			RetentionDays: defaultJournalRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
