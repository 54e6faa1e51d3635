// CLASSIFICATION: COMMUNITY
// Filename: health.go v0.1
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

// Package health exposes the standard gRPC health service for pubserve. The
// service is SERVING while the served root is a readable directory.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported to health clients.
const Service = "pubserve"

// DefaultInterval is how often the root is re-checked.
const DefaultInterval = 5 * time.Second

// Logger abstracts logging for the health server.
type Logger interface {
	Printf(format string, v ...any)
}

// Server couples a gRPC health server with a root directory probe.
type Server struct {
	root     string
	interval time.Duration
	log      Logger
	hs       *health.Server
	grpc     *grpc.Server
}

// New returns a health server probing root. A non-positive interval selects
// DefaultInterval.
func New(root string, interval time.Duration, log Logger) *Server {
	if interval <= 0 {
		interval = DefaultInterval
	}
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	s := &Server{root: root, interval: interval, log: log, hs: hs, grpc: gs}
	s.Probe()
	return s
}

// SetServing records the root's availability for both the named and the
// overall service.
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.hs.SetServingStatus(Service, status)
	s.hs.SetServingStatus("", status)
}

// Probe stats the root and updates the serving status.
func (s *Server) Probe() bool {
	info, err := os.Stat(s.root)
	ok := err == nil && info.IsDir()
	if !ok && s.log != nil {
		s.log.Printf("health: root %s unavailable: %v", s.root, err)
	}
	s.SetServing(ok)
	return ok
}

// Serve listens on addr and serves health checks until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("health listen: %w", err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	go s.probeLoop(ctx)
	go func() {
		<-ctx.Done()
		s.hs.Shutdown()
		s.grpc.Stop()
	}()
	if s.log != nil {
		s.log.Printf("health service listening on %s", ln.Addr())
	}
	if err := s.grpc.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) probeLoop(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Probe()
		}
	}
}
