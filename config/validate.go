package config

import (
	"fmt"
	"net"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jonwraymond/healthgate/observe"
)

func init() {
	// Report fields by their configuration keys.
	validation.ErrorTag = "mapstructure"
}

// Validate checks the whole configuration, including that probe names are
// unique across the listen, HTTP and presence probes.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Dependency),
		validation.Field(&c.Presence),
		validation.Field(&c.Policy),
		validation.Field(&c.Host),
		validation.Field(&c.Logging),
		validation.Field(&c.Telemetry),
	)
	if err != nil {
		return err
	}
	return c.validateProbeNames()
}

func (c *Config) validateProbeNames() error {
	seen := map[string]string{}
	check := func(name, key string) error {
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("probe name %q used by both %s and %s", name, prev, key)
		}
		seen[name] = key
		return nil
	}

	if err := check(c.Dependency.ListenName, "dependency.listen_name"); err != nil {
		return err
	}
	if err := check(c.Dependency.HTTPName, "dependency.http_name"); err != nil {
		return err
	}
	for i, p := range c.Presence {
		if err := check(p.Name, fmt.Sprintf("presence[%d].name", i)); err != nil {
			return err
		}
	}
	return nil
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, validation.By(validateHostPort)),
		validation.Field(&s.FallbackAddress, validation.By(validateHostPort)),
		validation.Field(&s.ShutdownTimeout, validation.By(validatePositiveDuration)),
	)
}

func (d DependencyConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ListenName, validation.Required),
		validation.Field(&d.HTTPName, validation.Required),
		validation.Field(&d.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&d.URL, validation.Required, is.URL),
		validation.Field(&d.ListenTimeout, validation.By(validatePositiveDuration)),
		validation.Field(&d.HTTPTimeout, validation.By(validatePositiveDuration)),
	)
}

func (p PresenceConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Pattern, validation.Required, validation.By(validateRegexp)),
		validation.Field(&p.Timeout, validation.By(validatePositiveDuration)),
	)
}

func (p PolicyConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.StartupWindowSeconds, validation.Required, validation.Min(1)),
		validation.Field(&p.AcceptableHTTPCodes,
			validation.Required,
			validation.Each(validation.Min(100), validation.Max(599)),
		),
	)
}

func (h HostConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.ProcRoot, validation.Required),
		validation.Field(&h.PID, validation.Required, validation.Min(1)),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
	)
}

func (t TelemetryConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ServiceName, validation.Required),
		validation.Field(&t.Tracing),
		validation.Field(&t.Metrics),
	)
}

func (t TracingConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Exporter, validation.In(toAny(observe.ValidTracingExporters)...)),
		validation.Field(&t.SamplePct, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (m MetricsConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Exporter, validation.In(toAny(observe.ValidMetricsExporters)...)),
		validation.Field(&m.Address, validation.By(validateHostPort)),
	)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// validateHostPort accepts an empty value; pair it with validation.Required
// where the address is mandatory.
func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if addr == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if err := is.Port.Validate(port); err != nil || port == "" {
		return validation.NewError("validation_invalid_port", "must be a valid port")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validatePositiveDuration(value interface{}) error {
	d, ok := value.(time.Duration)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a duration")
	}
	if d <= 0 {
		return validation.NewError("validation_invalid_duration", "must be a positive duration")
	}
	return nil
}

func validateRegexp(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if _, err := regexp.Compile(s); err != nil {
		return validation.NewError("validation_invalid_pattern", "must be a valid regular expression")
	}
	return nil
}
