// Package config loads healthgate's configuration from a YAML file and
// HEALTHGATE_* environment variables, validates it, and turns it into the
// probe set, resolution policy and telemetry settings used at runtime.
package config
