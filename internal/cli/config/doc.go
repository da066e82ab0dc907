// Package config defines the microcache-cli configuration file
// (~/.microcache/cli.yaml). Flags and environment variables take
// precedence over it.
package config
