package config

const (
	defaultCLIPath             = "aegisum-cli"
	defaultInvokeTimeout       = 10
	defaultMiningInterval      = 2
	defaultMiningBackoff       = 5
	defaultPollInterval        = 1
	defaultDataDir             = "~/.local/share/aegminer"
	defaultLogDir              = "~/.local/share/aegminer/logs"
	defaultSocketPath          = "~/.local/share/aegminer/aegminerd.sock"
	defaultNotifyTimeout       = 10
	defaultNotifyBlockInterval = 10
	defaultEventBuffer         = 1024
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Daemon: Daemon{
			CLIPath:       defaultCLIPath,
			InvokeTimeout: defaultInvokeTimeout,
		},
		Mining: Mining{
			IntervalSeconds: defaultMiningInterval,
			BackoffSeconds:  defaultMiningBackoff,
		},
		Poller: Poller{
			IntervalSeconds: defaultPollInterval,
		},
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			SocketPath: defaultSocketPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			BlockInterval:  defaultNotifyBlockInterval,
		},
		Events: Events{
			Buffer: defaultEventBuffer,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
