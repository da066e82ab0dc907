// Package httpserver provides the admin HTTP server of microcache.
//
// It serves Prometheus metrics, a health probe and JSON views of the store
// counters and client connections. Every request passes through the
// RequestID, Recover and Audit middlewares.
package httpserver
