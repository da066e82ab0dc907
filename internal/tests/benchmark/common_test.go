package benchmark

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"runtime"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/microcache-go/internal/dispatch"
	"github.com/yndnr/microcache-go/internal/server/cacheserver"
	"github.com/yndnr/microcache-go/internal/storage/memory"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

// newKey generates a unique key.
func newKey() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return "K-" + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// prefillStore fills store with count keys holding value.
func prefillStore(store *memory.Store, count int, value []byte) []string {
	keys := make([]string, count)
	for i := range keys {
		keys[i] = newKey()
		store.Set(keys[i], value, time.Hour)
	}
	return keys
}

// reportMemory reports heap usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with every store size.
func runWithKeyCounts(b *testing.B, benchFn func(b *testing.B, count int)) {
	for _, count := range KeyCounts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

// startServer starts a cache server on a loopback port.
func startServer(b *testing.B, workers int) string {
	b.Helper()

	cfg := cacheserver.DefaultConfig()
	cfg.MaxConnections = 256

	disp := dispatch.NewDispatcher()
	pool := dispatch.NewPool(disp, memory.New(), dispatch.WithSize(workers))
	srv := cacheserver.New(cfg, disp, pool)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		b.Fatalf("Listen: %v", err)
	}
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(context.Background(), ln)
		close(done)
	}()
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	})
	return ln.Addr().String()
}
