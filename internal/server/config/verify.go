package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/microcache-go/internal/telemetry/logger"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyAdmin(&cfg.Admin, &cfg.Server); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if err := verifyAddr("server.addr", cfg.Addr); err != nil {
		return err
	}

	positive := []struct {
		name  string
		value int
	}{
		{"server.max_connections", cfg.MaxConnections},
		{"server.max_command_size", cfg.MaxCommandSize},
		{"server.buffer_size", cfg.BufferSize},
		{"server.receive_buffer_size", cfg.ReceiveBufferSize},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, p.name, p.value)
		}
	}

	if cfg.BufferSize < cfg.MaxCommandSize+cfg.ReceiveBufferSize {
		return fmt.Errorf("%w: server.buffer_size (%d) must be at least server.max_command_size (%d) plus server.receive_buffer_size (%d)",
			ErrInvalid, cfg.BufferSize, cfg.MaxCommandSize, cfg.ReceiveBufferSize)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: server.workers must not be negative", ErrInvalid)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalid)
	}
	if cfg.PurgeInterval <= 0 {
		return fmt.Errorf("%w: server.purge_interval must be positive", ErrInvalid)
	}
	if cfg.IdleTimeout < 0 || cfg.WriteTimeout < 0 {
		return fmt.Errorf("%w: server timeouts must not be negative", ErrInvalid)
	}
	return nil
}

func verifyAdmin(cfg *AdminSection, srv *ServerSection) error {
	if cfg.Addr == "" {
		return nil
	}
	if err := verifyAddr("admin.addr", cfg.Addr); err != nil {
		return err
	}
	if cfg.Addr == srv.Addr {
		return fmt.Errorf("%w: admin.addr and server.addr must differ (%s)", ErrInvalid, cfg.Addr)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("%w: log.format %q is not one of json, text", ErrInvalid, cfg.Format)
	}
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}
	return nil
}
