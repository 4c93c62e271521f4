// Package config loads, normalizes, and validates scenebatch's TOML
// configuration.
package config
