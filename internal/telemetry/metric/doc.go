// Package metric provides Prometheus metrics for microcache.
//
//   - prometheus.go: the Registry with connection and command metrics
//   - collector.go: a collector exporting store counters at scrape time
//
// Metrics are exposed at /metrics on the admin listener.
package metric
