package handler

import (
	"time"

	"github.com/yndnr/microcache-go/internal/dispatch"
	"github.com/yndnr/microcache-go/internal/infra/buildinfo"
	"github.com/yndnr/microcache-go/internal/server/cacheserver"
)

// Response is the standard API response envelope.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// StoreStats are the store counters.
type StoreStats struct {
	Gets    uint64 `json:"gets"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Keys    int    `json:"keys"`
}

// StatsResponse is returned by GET /v1/stats.
type StatsResponse struct {
	Store       StoreStats           `json:"store"`
	QueueDepth  int                  `json:"queue_depth"`
	Workers     dispatch.WorkerStats `json:"workers"`
	Connections cacheserver.Totals   `json:"connections"`
	Build       buildinfo.Info       `json:"build"`
	Uptime      string               `json:"uptime"`
}

// ConnectionsResponse is returned by GET /v1/connections.
type ConnectionsResponse struct {
	Count       int                            `json:"count"`
	Connections []cacheserver.ConnectionRecord `json:"connections"`
}
