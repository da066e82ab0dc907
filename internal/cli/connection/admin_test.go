package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewAdminClient_BaseURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"localhost:5080", "http://localhost:5080"},
		{"http://h:1/", "http://h:1"},
		{"https://h:1", "https://h:1"},
	}
	for _, tt := range tests {
		if got := NewAdminClient(tt.in, 0).BaseURL(); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAdminClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/stats":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code": "OK",
				"data": map[string]any{"queue_depth": 3},
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code":    "INVALID_ARGUMENT",
				"message": "bad",
			})
		}
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL, time.Second)

	var stats struct {
		QueueDepth int `json:"queue_depth"`
	}
	if err := c.Get(context.Background(), "/v1/stats", &stats); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stats.QueueDepth != 3 {
		t.Errorf("queue_depth = %d, want 3", stats.QueueDepth)
	}

	err := c.Get(context.Background(), "/v1/other", nil)
	if err == nil || !strings.Contains(err.Error(), "INVALID_ARGUMENT") {
		t.Errorf("Get() error = %v, want envelope error", err)
	}
}
