// Package config loads, normalizes, and validates the TOML configuration,
// with environment overrides for secrets.
package config
