package config

import "time"

// ServerConfig is the root configuration for microcache-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Admin  AdminSection  `koanf:"admin"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures the cache protocol listener.
type ServerSection struct {
	// Addr is the TCP address of the cache protocol.
	Addr string `koanf:"addr"`

	// MaxConnections caps concurrently open client connections. Accepts
	// beyond the cap wait for a connection to close.
	MaxConnections int `koanf:"max_connections"`

	// MaxCommandSize is the frame length at which a client is disconnected.
	MaxCommandSize int `koanf:"max_command_size"`

	// BufferSize is the per-connection accumulation buffer.
	// Must be larger than MaxCommandSize.
	BufferSize int `koanf:"buffer_size"`

	// ReceiveBufferSize is the size of a single socket read.
	ReceiveBufferSize int `koanf:"receive_buffer_size"`

	// Workers is the number of store workers. 0 selects the CPU count.
	Workers int `koanf:"workers"`

	// PurgeInterval is how often closed connection records are dropped.
	PurgeInterval time.Duration `koanf:"purge_interval"`

	// IdleTimeout closes connections that send nothing for this long.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// WriteTimeout bounds writing a single response.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// RateLimit is the maximum number of commands per second per client IP.
	// 0 disables rate limiting.
	RateLimit int `koanf:"rate_limit"`
}

// AdminSection configures the HTTP admin endpoint.
type AdminSection struct {
	// Addr of the admin HTTP server. Empty disables it.
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
