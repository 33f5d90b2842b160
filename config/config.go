package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/procfs"
	"github.com/spf13/viper"

	"github.com/jonwraymond/healthgate/health"
	"github.com/jonwraymond/healthgate/observe"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// EnvPrefix prefixes every environment override, e.g.
// HEALTHGATE_POLICY_STARTUP_WINDOW_SECONDS.
const EnvPrefix = "HEALTHGATE"

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	FallbackAddress string        `mapstructure:"fallback_address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DependencyConfig struct {
	ListenName    string        `mapstructure:"listen_name"`
	HTTPName      string        `mapstructure:"http_name"`
	Port          int           `mapstructure:"port"`
	URL           string        `mapstructure:"url"`
	ListenTimeout time.Duration `mapstructure:"listen_timeout"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
}

type PresenceConfig struct {
	Name    string        `mapstructure:"name"`
	Pattern string        `mapstructure:"pattern"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PolicyConfig struct {
	StartupWindowSeconds      int   `mapstructure:"startup_window_seconds"`
	ReadinessOverridesStartup bool  `mapstructure:"readiness_overrides_startup"`
	DegradedPortOpenPasses    bool  `mapstructure:"degraded_port_open_passes"`
	AcceptableHTTPCodes       []int `mapstructure:"acceptable_http_codes"`
}

type HostConfig struct {
	ProcRoot string `mapstructure:"proc_root"`
	PID      int    `mapstructure:"pid"`
}

type ProbesConfig struct {
	Parallel bool `mapstructure:"parallel"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type TracingConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Exporter  string  `mapstructure:"exporter"`
	SamplePct float64 `mapstructure:"sample_pct"`
}

type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"`
	Address  string `mapstructure:"address"`
}

type TelemetryConfig struct {
	ServiceName string        `mapstructure:"service_name"`
	Version     string        `mapstructure:"version"`
	Tracing     TracingConfig `mapstructure:"tracing"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Dependency DependencyConfig `mapstructure:"dependency"`
	Presence   []PresenceConfig `mapstructure:"presence"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	Host       HostConfig       `mapstructure:"host"`
	Probes     ProbesConfig     `mapstructure:"probes"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.fallback_address", ":5601")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("dependency.listen_name", "dashboard_listening")
	v.SetDefault("dependency.http_name", "dashboard_http")
	v.SetDefault("dependency.port", 5601)
	v.SetDefault("dependency.url", "http://localhost:5601/")
	v.SetDefault("dependency.listen_timeout", health.DefaultListenTimeout.String())
	v.SetDefault("dependency.http_timeout", health.DefaultHTTPTimeout.String())

	v.SetDefault("presence", []map[string]any{})

	v.SetDefault("policy.startup_window_seconds", health.DefaultStartupWindowSeconds)
	v.SetDefault("policy.readiness_overrides_startup", true)
	v.SetDefault("policy.degraded_port_open_passes", true)
	v.SetDefault("policy.acceptable_http_codes", health.DefaultAcceptableCodes)

	v.SetDefault("host.proc_root", procfs.DefaultMountPoint)
	v.SetDefault("host.pid", 1)

	v.SetDefault("probes.parallel", true)

	v.SetDefault("logging.level", LogLevelInfo)

	v.SetDefault("telemetry.service_name", "healthgate")
	v.SetDefault("telemetry.version", "")
	v.SetDefault("telemetry.tracing.enabled", false)
	v.SetDefault("telemetry.tracing.exporter", "none")
	v.SetDefault("telemetry.tracing.sample_pct", 1.0)
	v.SetDefault("telemetry.metrics.enabled", false)
	v.SetDefault("telemetry.metrics.exporter", "prometheus")
	v.SetDefault("telemetry.metrics.address", "")
}

// Load reads configuration. With an empty path it looks for healthgate.yaml
// in ./config and the working directory, and falls back to defaults when no
// file exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("healthgate")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyPresenceDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) expand() error {
	url, err := ExpandEnvStrict(c.Dependency.URL)
	if err != nil {
		return fmt.Errorf("dependency.url: %w", err)
	}
	c.Dependency.URL = url

	for i := range c.Presence {
		pattern, err := ExpandEnvStrict(c.Presence[i].Pattern)
		if err != nil {
			return fmt.Errorf("presence[%d].pattern: %w", i, err)
		}
		c.Presence[i].Pattern = pattern
	}
	return nil
}

func (c *Config) applyPresenceDefaults() {
	for i := range c.Presence {
		if c.Presence[i].Timeout == 0 {
			c.Presence[i].Timeout = health.DefaultPresenceTimeout
		}
	}
}

// ResolutionPolicy returns the policy for the status resolver.
func (c *Config) ResolutionPolicy() health.ResolutionPolicy {
	return health.ResolutionPolicy{
		StartupWindowSeconds:      c.Policy.StartupWindowSeconds,
		ReadinessOverridesStartup: c.Policy.ReadinessOverridesStartup,
		DegradedPortOpenPasses:    c.Policy.DegradedPortOpenPasses,
		AcceptableHTTPCodes:       c.Policy.AcceptableHTTPCodes,
	}
}

// Observe returns the telemetry configuration.
func (c *Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.Telemetry.ServiceName,
		Version:     c.Telemetry.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Telemetry.Tracing.Enabled,
			Exporter:  c.Telemetry.Tracing.Exporter,
			SamplePct: c.Telemetry.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Telemetry.Metrics.Enabled,
			Exporter: c.Telemetry.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Logging.Level,
		},
	}
}

// ServesPrometheus reports whether a Prometheus scrape listener is configured.
func (c *Config) ServesPrometheus() bool {
	m := c.Telemetry.Metrics
	return m.Enabled && m.Exporter == "prometheus" && m.Address != ""
}
