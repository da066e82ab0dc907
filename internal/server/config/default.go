package config

import "time"

// Default configuration values.
const (
	DefaultAddr              = "127.0.0.1:5000"
	DefaultMaxConnections    = 1024
	DefaultMaxCommandSize    = 1 << 20
	DefaultBufferSize        = 2 << 20
	DefaultReceiveBufferSize = 4 << 10
	DefaultPurgeInterval     = 10 * time.Second
	DefaultIdleTimeout       = 5 * time.Minute
	DefaultWriteTimeout      = 30 * time.Second

	DefaultAdminAddr = "127.0.0.1:5080"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:              DefaultAddr,
			MaxConnections:    DefaultMaxConnections,
			MaxCommandSize:    DefaultMaxCommandSize,
			BufferSize:        DefaultBufferSize,
			ReceiveBufferSize: DefaultReceiveBufferSize,
			PurgeInterval:     DefaultPurgeInterval,
			IdleTimeout:       DefaultIdleTimeout,
			WriteTimeout:      DefaultWriteTimeout,
		},
		Admin: AdminSection{
			Addr: DefaultAdminAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
