// Package cacheserver serves the line-oriented cache protocol over TCP.
//
// Each accepted connection gets a Handler that accumulates reads, splits
// them into frames and submits parsed commands to a dispatch.Dispatcher.
// Responses are written in request order. The number of open connections
// is bounded by a weighted semaphore acquired before every Accept, and
// records of closed connections are purged periodically.
package cacheserver
