package cacheserver

import (
	"time"

	"github.com/yndnr/microcache-go/internal/server/config"
)

// Config holds the cache server configuration.
type Config struct {
	// Addr is the TCP address ListenAndServe binds.
	Addr string
	// MaxConnections caps concurrently served connections (default: 1024).
	MaxConnections int
	// MaxCommandSize is the frame length at which a client is disconnected.
	MaxCommandSize int
	// BufferSize is the per-connection accumulation buffer.
	BufferSize int
	// ReceiveBufferSize is the size of a single socket read.
	ReceiveBufferSize int
	// PurgeInterval is how often closed connection records are dropped.
	PurgeInterval time.Duration
	// IdleTimeout closes connections that send nothing for this long.
	IdleTimeout time.Duration
	// WriteTimeout bounds writing one response.
	WriteTimeout time.Duration
	// RateLimit is the maximum number of commands per second per IP.
	// Set to 0 to disable rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:              config.DefaultAddr,
		MaxConnections:    config.DefaultMaxConnections,
		MaxCommandSize:    config.DefaultMaxCommandSize,
		BufferSize:        config.DefaultBufferSize,
		ReceiveBufferSize: config.DefaultReceiveBufferSize,
		PurgeInterval:     config.DefaultPurgeInterval,
		IdleTimeout:       config.DefaultIdleTimeout,
		WriteTimeout:      config.DefaultWriteTimeout,
	}
}

// FromSection converts the server section of the process configuration.
func FromSection(s config.ServerSection) *Config {
	return &Config{
		Addr:              s.Addr,
		MaxConnections:    s.MaxConnections,
		MaxCommandSize:    s.MaxCommandSize,
		BufferSize:        s.BufferSize,
		ReceiveBufferSize: s.ReceiveBufferSize,
		PurgeInterval:     s.PurgeInterval,
		IdleTimeout:       s.IdleTimeout,
		WriteTimeout:      s.WriteTimeout,
		RateLimit:         s.RateLimit,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() *Config {
	d := DefaultConfig()
	if c.MaxConnections <= 0 {
		c.MaxConnections = d.MaxConnections
	}
	if c.MaxCommandSize <= 0 {
		c.MaxCommandSize = d.MaxCommandSize
	}
	if c.ReceiveBufferSize <= 0 {
		c.ReceiveBufferSize = d.ReceiveBufferSize
	}
	// A pending frame just under the limit must still fit a full read.
	if c.BufferSize < c.MaxCommandSize+c.ReceiveBufferSize {
		c.BufferSize = max(d.BufferSize, c.MaxCommandSize+c.ReceiveBufferSize)
	}
	if c.PurgeInterval <= 0 {
		c.PurgeInterval = d.PurgeInterval
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	return &c
}
