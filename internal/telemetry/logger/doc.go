// Package logger provides structured logging for microcache.
//
// It wraps log/slog:
//
//   - logger.go: logger construction and the runtime-adjustable level
//   - context.go: context propagation of loggers and connection ids
//   - redact.go: truncation of cached payloads in log attributes
package logger
