package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/pid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = LogLevelInfo
	DefaultEnvPrefix = "TELEMY"
	configName       = "telemy"
	configType       = "toml"
)

type Config struct {
	Interval  time.Duration   `mapstructure:"interval"`
	LogLevel  string          `mapstructure:"log_level"`
	PIDFile   string          `mapstructure:"pid_file"`
	OBS       OBSConfig       `mapstructure:"obs"`
	Latency   LatencyConfig   `mapstructure:"latency"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Exporter  ExporterConfig  `mapstructure:"exporter"`
	History   HistoryConfig   `mapstructure:"history"`
}

type OBSConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Password       string        `mapstructure:"password"`
	AutoDetect     bool          `mapstructure:"auto_detect"`
	ProcessName    string        `mapstructure:"process_name"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryCooldown  time.Duration `mapstructure:"retry_cooldown"`
}

type LatencyConfig struct {
	Target  string        `mapstructure:"target"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DashboardConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	Token          string        `mapstructure:"token"`
	PushInterval   time.Duration `mapstructure:"push_interval"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type ExporterConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	PushURL  string        `mapstructure:"push_url"`
	Job      string        `mapstructure:"job"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
}

type HistoryConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Capacity int  `mapstructure:"capacity"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", time.Second)
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("pid_file", pid.DefaultPath())

	v.SetDefault("obs.host", "127.0.0.1")
	v.SetDefault("obs.port", 4455)
	v.SetDefault("obs.password", "")
	v.SetDefault("obs.auto_detect", true)
	v.SetDefault("obs.process_name", "obs")
	v.SetDefault("obs.request_timeout", 2*time.Second)
	v.SetDefault("obs.retry_cooldown", 2*time.Second)

	v.SetDefault("latency.target", "1.1.1.1:443")
	v.SetDefault("latency.timeout", 250*time.Millisecond)

	v.SetDefault("dashboard.enabled", true)
	v.SetDefault("dashboard.addr", "127.0.0.1:7070")
	v.SetDefault("dashboard.token", "")
	v.SetDefault("dashboard.push_interval", 500*time.Millisecond)
	v.SetDefault("dashboard.allowed_origins", []string{"*"})

	v.SetDefault("exporter.enabled", false)
	v.SetDefault("exporter.interval", 10*time.Second)
	v.SetDefault("exporter.push_url", "")
	v.SetDefault("exporter.job", "telemy")
	v.SetDefault("exporter.username", "")
	v.SetDefault("exporter.password", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.capacity", 120)
}

// flag name -> config key
var flagKeys = map[string]string{
	"interval":       "interval",
	"log-level":      "log_level",
	"pid-file":       "pid_file",
	"obs-host":       "obs.host",
	"obs-port":       "obs.port",
	"obs-password":   "obs.password",
	"obs-process":    "obs.process_name",
	"latency-target": "latency.target",
	"dashboard-addr": "dashboard.addr",
	"exporter-push":  "exporter.push_url",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.String("config", "", "Path to the configuration file")
	fs.Duration("interval", time.Second, "Interval between samples")
	fs.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	fs.String("pid-file", "", "Path to the PID file")
	fs.String("obs-host", "", "OBS websocket host")
	fs.Int("obs-port", 0, "OBS websocket port")
	fs.String("obs-password", "", "OBS websocket password")
	fs.String("obs-process", "", "OBS process name used for auto-detection")
	fs.String("latency-target", "", "ip:port used for the latency probe")
	fs.String("dashboard-addr", "", "Dashboard listen address")
	fs.String("exporter-push", "", "Pushgateway URL for the remote exporter")

	return fs
}

// Load reads configuration from defaults, the config file, the environment and
// command line flags, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		envPrefix: DefaultEnvPrefix,
		args:      os.Args[1:],
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	fs := newFlagSet()
	if err := fs.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	configPath := o.configPath
	if f := fs.Lookup("config"); f != nil && f.Changed {
		configPath = f.Value.String()
	}
	if configPath == "" {
		configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, configName))
	}
	v.AddConfigPath("/etc/" + configName)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
		}
	}

	return nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval.String())
	}

	level, ok := ParseLogLevel(c.LogLevel)
	if !ok {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	c.LogLevel = string(level)

	if c.OBS.Port <= 0 || c.OBS.Port > 65535 {
		return errFactory.WithData(errors.ErrInvalidConfig, "obs.port out of range")
	}

	if c.OBS.AutoDetect && c.OBS.ProcessName == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "obs.process_name is required when obs.auto_detect is enabled")
	}

	if c.OBS.RequestTimeout <= 0 || c.OBS.RetryCooldown < 0 || c.Latency.Timeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "timeouts must be positive")
	}

	if c.Dashboard.Enabled && c.Dashboard.PushInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "dashboard.push_interval must be positive")
	}

	if c.Exporter.Enabled && c.Exporter.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "exporter.interval must be positive")
	}

	if c.History.Enabled && c.History.Capacity <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "history.capacity must be positive")
	}

	return nil
}
