// CLASSIFICATION: COMMUNITY
// Filename: routes.go v0.2
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"pubserve/fileserver/static"
)

// StatusResponse describes the running server.
type StatusResponse struct {
	Status string `json:"status"`
	Root   string `json:"root"`
	Uptime string `json:"uptime"`
}

// The public router has a single catch-all route so that no API path can
// shadow a file under the root.
func (s *Server) initRoutes() {
	r := s.router
	r.Use(recoverMiddleware(s.log))
	r.Use(s.requestCounter)
	if s.accessLog != nil {
		r.Use(accessLogger(s.accessLog))
	}
	if s.limiter != nil {
		r.Use(rateLimitMiddleware(s.limiter, s.metrics))
	}

	files := static.FileHandler(s.responder,
		static.WithLogger(s.log, s.cfg.Dev),
		static.WithObserver(s.metrics),
	)
	r.Handle("/*", files)
	r.NotFound(files.ServeHTTP)
	r.MethodNotAllowed(files.ServeHTTP)
}

func (s *Server) initAdminRoutes() {
	r := s.admin
	r.Use(recoverMiddleware(s.log))
	r.Get("/api/status", s.statusHandler)
	r.Get("/api/metrics", s.metricsHandler)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status: "ok",
		Root:   s.Root(),
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
