package config

import "strings"

// Option customizes Load.
type Option func(*options) error

type options struct {
	configPath string
	envPrefix  string
	args       []string
}

// WithConfigFile reads the given file instead of searching the default
// locations. The --config flag still wins.
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix replaces the TELEMY environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) Option {
	return func(o *options) error {
		o.args = args
		return nil
	}
}

type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// levelAliases maps accepted spellings onto the canonical level.
var levelAliases = map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarning,
	"warning": LogLevelWarning,
	"error":   LogLevelError,
}

// ParseLogLevel normalizes a level name. ok is false for unknown names.
func ParseLogLevel(s string) (level LogLevel, ok bool) {
	level, ok = levelAliases[strings.ToLower(strings.TrimSpace(s))]
	return level, ok
}
