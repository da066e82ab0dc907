// Package main provides the entry point for microcache-server.
//
// microcache-server serves an in-memory key/value cache over a line-based
// TCP protocol, with an optional HTTP admin endpoint exposing health,
// statistics, connection records and Prometheus metrics.
//
// Usage:
//
//	microcache-server -config /etc/microcache/server.yaml
//	microcache-server -addr 0.0.0.0:5000 -admin 127.0.0.1:5080 -log-level debug
//
// Settings are read from the file, then MICROCACHE_* environment
// variables, then command line flags.
package main
