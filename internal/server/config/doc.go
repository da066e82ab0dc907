// Package config provides the microcache-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation of limits, addresses and log settings
//
// Configuration is loaded via internal/infra/confloader from a YAML file and
// MICROCACHE_ environment variables.
package config
