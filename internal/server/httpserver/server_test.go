package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/microcache-go/internal/server/httpserver/handler"
	"github.com/yndnr/microcache-go/internal/storage/memory"
	"github.com/yndnr/microcache-go/internal/telemetry/metric"
)

func TestNew(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	s := New(":8080", h)
	if s.httpServer == nil || s.handler == nil {
		t.Fatal("New left fields unset")
	}
	if s.Addr() != ":8080" {
		t.Errorf("Addr() = %q", s.Addr())
	}
}

func TestServer_RoutesAndShutdown(t *testing.T) {
	store := memory.New()
	store.Set("k", []byte("v"), time.Minute)

	reg := metric.NewRegistry()
	reg.MustRegister(metric.NewStoreCollector(store, nil))

	router := NewRouter(&RouterConfig{
		Sources: handler.Sources{Store: store},
		Metrics: reg.Handler(),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	s := New(ln.Addr().String(), router)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	base := "http://" + ln.Addr().String()
	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/healthz", http.StatusOK, `"status":"ok"`},
		{"/v1/stats", http.StatusOK, `"sets":1`},
		{"/v1/connections", http.StatusOK, `"count":0`},
		{"/metrics", http.StatusOK, "microcache_store_keys 1"},
		{"/unknown", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(base + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("X-Request-ID missing")
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body = %s, want %q", body, tt.contains)
			}
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Serve() error = %v, want nil after Shutdown", err)
	}
}
