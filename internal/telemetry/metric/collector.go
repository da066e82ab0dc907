package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/microcache-go/internal/storage"
)

// StoreSource is what the StoreCollector reads at scrape time.
type StoreSource interface {
	Stats() storage.Stats
	Len() int
}

// StoreCollector exports store counters and the dispatch queue depth.
type StoreCollector struct {
	store    StoreSource
	queueLen func() int

	ops   *prometheus.Desc
	keys  *prometheus.Desc
	queue *prometheus.Desc
}

var _ prometheus.Collector = (*StoreCollector)(nil)

// NewStoreCollector creates a collector. queueLen may be nil.
func NewStoreCollector(store StoreSource, queueLen func() int) *StoreCollector {
	return &StoreCollector{
		store:    store,
		queueLen: queueLen,
		ops: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "operations_total"),
			"Store operations, by operation",
			[]string{"op"}, nil,
		),
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "keys"),
			"Entries held by the store, including expired entries not yet read",
			nil, nil,
		),
		queue: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "dispatch", "queue_depth"),
			"Commands waiting for a worker",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ops
	ch <- c.keys
	if c.queueLen != nil {
		ch <- c.queue
	}
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.store.Stats()
	ch <- prometheus.MustNewConstMetric(c.ops, prometheus.CounterValue, float64(st.Gets), "get")
	ch <- prometheus.MustNewConstMetric(c.ops, prometheus.CounterValue, float64(st.Sets), "set")
	ch <- prometheus.MustNewConstMetric(c.ops, prometheus.CounterValue, float64(st.Deletes), "delete")
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.store.Len()))
	if c.queueLen != nil {
		ch <- prometheus.MustNewConstMetric(c.queue, prometheus.GaugeValue, float64(c.queueLen()))
	}
}
