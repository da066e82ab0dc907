package config

import "time"

// CLIConfig is the configuration for microcache-cli.
type CLIConfig struct {
	// Server is the cache protocol address.
	Server string `yaml:"server"`
	// Admin is the admin HTTP address.
	Admin string `yaml:"admin"`
	// Output is the default output format: table, json or yaml.
	Output string `yaml:"output"`
	// Timeout bounds every request.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "127.0.0.1:5000",
		Admin:   "127.0.0.1:5080",
		Output:  "table",
		Timeout: 5 * time.Second,
	}
}
