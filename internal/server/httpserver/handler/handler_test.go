package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/microcache-go/internal/dispatch"
	"github.com/yndnr/microcache-go/internal/server/cacheserver"
	"github.com/yndnr/microcache-go/internal/storage"
)

type fakeStore struct{}

func (fakeStore) Stats() storage.Stats { return storage.Stats{Gets: 3, Sets: 2, Deletes: 1} }
func (fakeStore) Len() int             { return 2 }

type fakeQueue int

func (q fakeQueue) Len() int { return int(q) }

type fakeWorkers struct{}

func (fakeWorkers) Stats() dispatch.WorkerStats {
	return dispatch.WorkerStats{Read: 6, Good: 5, Failed: 1}
}

type fakeConns struct {
	records []cacheserver.ConnectionRecord
}

func (f fakeConns) Snapshot() []cacheserver.ConnectionRecord {
	return append([]cacheserver.ConnectionRecord(nil), f.records...)
}

func (f fakeConns) Totals() cacheserver.Totals {
	return cacheserver.Totals{Accepted: uint64(len(f.records)), Active: 1, Closed: 1}
}

func newTestHandler(ready func() bool) *Handler {
	return New(Sources{
		Store:   fakeStore{},
		Queue:   fakeQueue(4),
		Workers: fakeWorkers{},
		Connections: fakeConns{records: []cacheserver.ConnectionRecord{
			{ID: "01A", Remote: "127.0.0.1:1", Alive: true},
			{ID: "01B", Remote: "127.0.0.1:2", Alive: false, ClosedByServer: true},
		}},
		Ready:     ready,
		StartedAt: time.Now().Add(-time.Minute),
	}, nil)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) Response {
	t.Helper()
	var resp Response
	if data != nil {
		resp.Data = data
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		ready      func() bool
		wantStatus int
		wantCode   string
	}{
		{"no probe", nil, http.StatusOK, "OK"},
		{"ready", func() bool { return true }, http.StatusOK, "OK"},
		{"draining", func() bool { return false }, http.StatusServiceUnavailable, "UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.ready)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp := decode(t, rec, nil); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleStats(t *testing.T) {
	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats StatsResponse
	decode(t, rec, &stats)

	if stats.Store != (StoreStats{Gets: 3, Sets: 2, Deletes: 1, Keys: 2}) {
		t.Errorf("store = %+v", stats.Store)
	}
	if stats.QueueDepth != 4 {
		t.Errorf("queue_depth = %d, want 4", stats.QueueDepth)
	}
	if stats.Workers.Failed != 1 {
		t.Errorf("workers = %+v", stats.Workers)
	}
	if stats.Connections.Accepted != 2 {
		t.Errorf("connections = %+v", stats.Connections)
	}
	if stats.Build.GoVersion == "" || stats.Uptime == "" {
		t.Errorf("build/uptime missing: %+v, %q", stats.Build, stats.Uptime)
	}
}

func TestHandleStats_NilSources(t *testing.T) {
	h := New(Sources{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleConnections(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantCount  int
	}{
		{"", http.StatusOK, 2},
		{"?alive=true", http.StatusOK, 1},
		{"?alive=false", http.StatusOK, 1},
		{"?alive=maybe", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run("query"+tt.query, func(t *testing.T) {
			h := newTestHandler(nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/connections"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				if rec.Header().Get("X-Error-Code") == "" {
					t.Error("X-Error-Code header missing")
				}
				return
			}
			var body ConnectionsResponse
			decode(t, rec, &body)
			if body.Count != tt.wantCount || len(body.Connections) != tt.wantCount {
				t.Errorf("count = %d (%d records), want %d", body.Count, len(body.Connections), tt.wantCount)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/stats", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
