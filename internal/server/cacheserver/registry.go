package cacheserver

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/yndnr/microcache-go/pkg/cmap"
)

// ConnectionRecord describes one tracked connection.
type ConnectionRecord struct {
	ID             string    `json:"id"`
	Remote         string    `json:"remote"`
	ConnectedAt    time.Time `json:"connected_at"`
	LastActive     time.Time `json:"last_active"`
	Commands       uint64    `json:"commands"`
	Reads          uint64    `json:"reads"`
	BytesRead      uint64    `json:"bytes_read"`
	Alive          bool      `json:"alive"`
	ClosedByServer bool      `json:"closed_by_server"`
}

// Totals aggregates every connection served so far, purged ones included.
type Totals struct {
	Accepted       uint64 `json:"accepted"`
	Active         uint64 `json:"active"`
	Closed         uint64 `json:"closed"`
	ClosedByServer uint64 `json:"closed_by_server"`
	Commands       uint64 `json:"commands"`
	Reads          uint64 `json:"reads"`
	BytesRead      uint64 `json:"bytes_read"`
}

// Registry tracks the handlers of a Server keyed by connection ID.
type Registry struct {
	handlers *cmap.Map[*Handler]
	accepted atomic.Uint64

	// Counters folded in from purged handlers.
	retiredClosed   atomic.Uint64
	retiredByServer atomic.Uint64
	retiredCommands atomic.Uint64
	retiredReads    atomic.Uint64
	retiredBytes    atomic.Uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: cmap.New[*Handler]()}
}

func (r *Registry) add(h *Handler) {
	r.accepted.Add(1)
	r.handlers.Set(h.id, h)
}

// Len returns the number of tracked handlers, dead ones not yet purged
// included.
func (r *Registry) Len() int {
	return r.handlers.Count()
}

// Purge removes handlers whose connection has closed and returns how many
// were removed.
func (r *Registry) Purge() int {
	dead := r.handlers.Sweep(func(_ string, h *Handler) bool {
		return !h.alive.Load()
	})
	for _, h := range dead {
		r.retiredClosed.Add(1)
		if h.byServer.Load() {
			r.retiredByServer.Add(1)
		}
		r.retiredCommands.Add(h.commands.Load())
		r.retiredReads.Add(h.reads.Load())
		r.retiredBytes.Add(h.bytesRead.Load())
	}
	return len(dead)
}

// Snapshot returns a record per tracked handler, oldest first.
func (r *Registry) Snapshot() []ConnectionRecord {
	records := make([]ConnectionRecord, 0, r.handlers.Count())
	r.handlers.Range(func(_ string, h *Handler) bool {
		records = append(records, h.record())
		return true
	})
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
	return records
}

// Totals returns aggregate connection counters.
func (r *Registry) Totals() Totals {
	t := Totals{
		Accepted:       r.accepted.Load(),
		Closed:         r.retiredClosed.Load(),
		ClosedByServer: r.retiredByServer.Load(),
		Commands:       r.retiredCommands.Load(),
		Reads:          r.retiredReads.Load(),
		BytesRead:      r.retiredBytes.Load(),
	}
	r.handlers.Range(func(_ string, h *Handler) bool {
		if h.alive.Load() {
			t.Active++
		} else {
			t.Closed++
			if h.byServer.Load() {
				t.ClosedByServer++
			}
		}
		t.Commands += h.commands.Load()
		t.Reads += h.reads.Load()
		t.BytesRead += h.bytesRead.Load()
		return true
	})
	return t
}
