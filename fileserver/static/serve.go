// CLASSIFICATION: COMMUNITY
// Filename: serve.go v0.2
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

// Package static validates request paths and serves regular files from a
// single root directory. Rejected paths and missing files produce the same
// 404 response.
package static

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// Logger abstracts logging for the file handler.
type Logger interface {
	Printf(format string, v ...any)
}

// Outcome is the result of one request through the handler.
type Outcome int

const (
	// OutcomeServed means a file was sent with 200.
	OutcomeServed Outcome = iota
	// OutcomeRejected means the path failed validation.
	OutcomeRejected
	// OutcomeNotFound means the path was valid but named no regular file.
	OutcomeNotFound
)

// Observer is notified of every request outcome. It must be safe for
// concurrent use.
type Observer interface {
	Observe(Outcome)
}

// HandlerOption configures FileHandler.
type HandlerOption func(*handler)

// WithLogger logs streaming failures and, when verbose, rejected segments.
func WithLogger(log Logger, verbose bool) HandlerOption {
	return func(h *handler) {
		h.log = log
		h.verbose = verbose
	}
}

// WithObserver reports outcomes to o.
func WithObserver(o Observer) HandlerOption {
	return func(h *handler) { h.obs = o }
}

type handler struct {
	resp    *Responder
	log     Logger
	verbose bool
	obs     Observer
}

// FileHandler returns an HTTP handler that validates the decoded URL path and
// serves the matching file from resp's root.
func FileHandler(resp *Responder, opts ...HandlerOption) http.Handler {
	h := &handler{resp: resp}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel, ok := Validate(r.URL.Path)
	if !ok {
		if h.verbose && h.log != nil {
			idx, seg, _ := FirstRejected(r.URL.Path)
			h.log.Printf("rejected %q: segment %d %q is %s", r.URL.Path, idx, seg, ClassifySegment(seg))
		}
		NotFound(w)
		h.observe(OutcomeRejected)
		return
	}
	served, err := h.resp.Respond(w, r, rel)
	// A client going away mid-body is routine.
	if err != nil && h.log != nil && !errors.Is(err, context.Canceled) {
		h.log.Printf("serve %s: %v", r.URL.Path, err)
	}
	if served {
		h.observe(OutcomeServed)
	} else {
		h.observe(OutcomeNotFound)
	}
}

func (h *handler) observe(o Outcome) {
	if h.obs != nil {
		h.obs.Observe(o)
	}
}

// ctxReader stops a body copy once the client has gone away.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
