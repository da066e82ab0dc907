package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "microcache"

// Registry holds the process metrics. A nil *Registry is valid and records
// nothing.
type Registry struct {
	reg *prometheus.Registry

	commandsTotal    *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	commandQueueWait prometheus.Histogram

	clientsAccepted     prometheus.Counter
	clientsActive       prometheus.Gauge
	clientsDisconnected prometheus.Counter
	bytesRead           prometheus.Counter
	rateLimited         prometheus.Counter
}

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed by the worker pool, by kind and result",
		}, []string{"kind", "result"}),

		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent executing a command against the store",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
		}, []string{"kind"}),

		commandQueueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_queue_wait_seconds",
			Help:      "Time a command spent in the dispatch queue",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),

		clientsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clients",
			Name:      "accepted_total",
			Help:      "Client connections accepted",
		}),

		clientsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "clients",
			Name:      "active",
			Help:      "Client connections currently open",
		}),

		clientsDisconnected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clients",
			Name:      "disconnected_by_server_total",
			Help:      "Client connections closed by the server for protocol violations",
		}),

		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Bytes read from client connections",
		}),

		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_rate_limited_total",
			Help:      "Commands rejected by the per-client rate limit",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.commandsTotal,
		r.commandDuration,
		r.commandQueueWait,
		r.clientsAccepted,
		r.clientsActive,
		r.clientsDisconnected,
		r.bytesRead,
		r.rateLimited,
	)
	return r
}

// Handler returns the /metrics handler.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// MustRegister adds collectors to the registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.reg.MustRegister(cs...)
}

// ObserveCommand records an executed command.
func (r *Registry) ObserveCommand(kind string, failed bool, queued, exec time.Duration) {
	if r == nil {
		return
	}
	result := "ok"
	if failed {
		result = "error"
	}
	r.commandsTotal.WithLabelValues(kind, result).Inc()
	r.commandDuration.WithLabelValues(kind).Observe(exec.Seconds())
	r.commandQueueWait.Observe(queued.Seconds())
}

// ClientAccepted records a new connection.
func (r *Registry) ClientAccepted() {
	if r == nil {
		return
	}
	r.clientsAccepted.Inc()
	r.clientsActive.Inc()
}

// ClientClosed records a closed connection.
func (r *Registry) ClientClosed(byServer bool) {
	if r == nil {
		return
	}
	r.clientsActive.Dec()
	if byServer {
		r.clientsDisconnected.Inc()
	}
}

// AddBytesRead records bytes read from a client.
func (r *Registry) AddBytesRead(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.bytesRead.Add(float64(n))
}

// CommandRateLimited records a rejected command.
func (r *Registry) CommandRateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}
