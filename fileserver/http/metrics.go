// CLASSIFICATION: COMMUNITY
// Filename: metrics.go v0.1
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"pubserve/fileserver/static"
)

type metrics struct {
	requests    atomic.Uint64
	served      atomic.Uint64
	rejected    atomic.Uint64
	notFound    atomic.Uint64
	rateLimited atomic.Uint64
}

// Observe implements static.Observer.
func (m *metrics) Observe(o static.Outcome) {
	switch o {
	case static.OutcomeServed:
		m.served.Add(1)
	case static.OutcomeRejected:
		m.rejected.Add(1)
	case static.OutcomeNotFound:
		m.notFound.Add(1)
	}
}

// MetricsResponse is the body of GET /api/metrics on the admin listener.
type MetricsResponse struct {
	RequestsTotal    uint64 `json:"requests_total"`
	ServedTotal      uint64 `json:"served_total"`
	RejectedTotal    uint64 `json:"rejected_total"`
	NotFoundTotal    uint64 `json:"not_found_total"`
	RateLimitedTotal uint64 `json:"rate_limited_total"`
	StartTimeSeconds int64  `json:"start_time_seconds"`
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	resp := MetricsResponse{
		RequestsTotal:    s.metrics.requests.Load(),
		ServedTotal:      s.metrics.served.Load(),
		RejectedTotal:    s.metrics.rejected.Load(),
		NotFoundTotal:    s.metrics.notFound.Load(),
		RateLimitedTotal: s.metrics.rateLimited.Load(),
		StartTimeSeconds: s.start.Unix(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
