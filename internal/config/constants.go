package config

// Config file names, searched in this order.
const (
	FileName    = "proxykit.yaml"
	AltFileName = "proxykit.yml"
)

// Defaults for omitted settings.
const (
	DefaultStrategy = "compiled"
	DefaultLogLevel = "info"
	DefaultFormat   = "text"
)

// Report formats understood by the CLI.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// LogLevels are the accepted log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Environment variables that override the config file.
const (
	EnvConfig   = "PROXYKIT_CONFIG"
	EnvLogLevel = "PROXYKIT_LOG_LEVEL"
)
