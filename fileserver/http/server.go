// CLASSIFICATION: COMMUNITY
// Filename: server.go v0.2
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

// Package http wires the static file pipeline into a chi router and runs the
// public listener alongside the optional admin, health and watch services.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"pubserve/fileserver/health"
	"pubserve/fileserver/static"
	"pubserve/fileserver/watch"
)

// Config holds server configuration.
type Config struct {
	Bind       string
	Port       int
	Root       string
	LogFile    string
	Dev        bool
	Rate       rate.Limit // zero disables rate limiting
	Burst      int
	AdminPort  int // zero disables the admin listener
	HealthPort int // zero disables the gRPC health listener
	Watch      bool
	Logger     Logger
}

// Server wraps the HTTP server and router.
type Server struct {
	cfg       Config
	log       Logger
	router    *chi.Mux
	admin     *chi.Mux
	responder *static.Responder
	metrics   *metrics
	limiter   *rate.Limiter
	accessLog io.WriteCloser
	start     time.Time
}

// New returns an initialized server. It fails if the root is not an existing
// directory.
func New(cfg Config) (*Server, error) {
	resp, err := static.NewResponder(cfg.Root)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:       cfg,
		log:       cfg.Logger,
		router:    chi.NewRouter(),
		admin:     chi.NewRouter(),
		responder: resp,
		metrics:   &metrics{},
		start:     time.Now(),
	}
	if s.log == nil {
		s.log = log.Default()
	}
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(cfg.Rate, burst)
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			s.log.Printf("open log: %v", err)
		} else {
			s.accessLog = f
		}
	}
	s.initRoutes()
	s.initAdminRoutes()
	return s, nil
}

// Router returns the public router, useful for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// AdminRouter returns the admin router, useful for tests.
func (s *Server) AdminRouter() http.Handler {
	return s.admin
}

// Root returns the canonical served root.
func (s *Server) Root() string {
	return s.responder.Root()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.Port))
}

// Close releases the root handle and the access log.
func (s *Server) Close() error {
	err := s.responder.Close()
	if s.accessLog != nil {
		if cerr := s.accessLog.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Start begins serving until ctx is done. Like net/http it returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()

	var hs *health.Server
	if s.cfg.HealthPort > 0 {
		hs = health.New(s.Root(), 0, s.log)
		addr := net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.HealthPort))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := hs.Serve(ctx, addr); err != nil {
				s.log.Printf("health server: %v", err)
			}
		}()
	}

	if s.cfg.Watch {
		opts := []watch.Option{}
		if hs != nil {
			opts = append(opts, watch.OnRootChange(hs.SetServing))
		}
		w, err := watch.New(s.Root(), s.log, opts...)
		if err != nil {
			s.log.Printf("watch disabled: %v", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.Run(ctx)
			}()
		}
	}

	if s.cfg.AdminPort > 0 {
		admin := &http.Server{
			Addr:              net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.AdminPort)),
			Handler:           s.admin,
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.log.Printf("admin listening on %s", admin.Addr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Printf("admin server: %v", err)
			}
		}()
		go shutdownOnDone(ctx, admin)
	}

	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	go shutdownOnDone(ctx, srv)
	s.log.Printf("pubserve listening on %s serving %s", ln.Addr(), s.Root())
	err := srv.Serve(ln)
	cancel()
	return err
}

func shutdownOnDone(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	ctxTo, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Shutdown(ctxTo)
}
