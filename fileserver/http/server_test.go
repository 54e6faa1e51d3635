// CLASSIFICATION: COMMUNITY
// Filename: server_test.go v0.3
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	srv "pubserve/fileserver/http"
)

func newRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"hello.txt":      "Hello Bun!",
		".secret":        "shh",
		"a/b.txt":        "nested",
		"index.html":     "<!DOCTYPE html><p>hi</p>",
		".git/config":    "[core]",
		"docs/guide.txt": "guide",
	}
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newServer(t *testing.T, cfg srv.Config) *srv.Server {
	t.Helper()
	if cfg.Root == "" {
		cfg.Root = newRoot(t)
	}
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	s, err := srv.New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestNewFailsWithoutRoot(t *testing.T) {
	_, err := srv.New(srv.Config{Root: filepath.Join(t.TempDir(), "missing"), Logger: quietLogger()})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestStaticFileServed(t *testing.T) {
	ts := httptest.NewServer(newServer(t, srv.Config{}).Router())
	defer ts.Close()
	code, body := fetch(t, ts.URL+"/hello.txt")
	if code != http.StatusOK {
		t.Fatalf("status code: %d", code)
	}
	if body != "Hello Bun!" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestDotfilesNotFound(t *testing.T) {
	ts := httptest.NewServer(newServer(t, srv.Config{}).Router())
	defer ts.Close()
	for _, p := range []string{"/.secret", "/folder/.env", "/.git/config", "/a/./../.secret"} {
		code, body := fetch(t, ts.URL+p)
		if code != http.StatusNotFound || body != "Not Found" {
			t.Fatalf("%s: got %d %q", p, code, body)
		}
	}
}

func TestTraversalNotFound(t *testing.T) {
	ts := httptest.NewServer(newServer(t, srv.Config{}).Router())
	defer ts.Close()
	// Raw request so no client normalises the path.
	conn, err := net.Dial("tcp", ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := io.WriteString(conn, "GET /../../etc/passwd HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("HTTP/1.1 404")) {
		t.Fatalf("unexpected response %q", raw)
	}
	if !bytes.HasSuffix(raw, []byte("Not Found")) {
		t.Fatalf("unexpected body %q", raw)
	}
}

func TestCurrentDirMarkerServed(t *testing.T) {
	router := newServer(t, srv.Config{}).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a/./b.txt", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "nested" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestDirectoryNotFound(t *testing.T) {
	ts := httptest.NewServer(newServer(t, srv.Config{}).Router())
	defer ts.Close()
	for _, p := range []string{"/", "/docs", "/docs/"} {
		if code, _ := fetch(t, ts.URL+p); code != http.StatusNotFound {
			t.Fatalf("%s: status code %d", p, code)
		}
	}
}

func TestAnyMethodReachesPipeline(t *testing.T) {
	router := newServer(t, srv.Config{}).Router()
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(m, "/.secret", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status code %d", m, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/hello.txt", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("head: got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAdminMetrics(t *testing.T) {
	s := newServer(t, srv.Config{})
	for _, p := range []string{"/hello.txt", "/.secret", "/missing.txt"} {
		s.Router().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	admin := httptest.NewServer(s.AdminRouter())
	defer admin.Close()
	resp, err := http.Get(admin.URL + "/api/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	var m srv.MetricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.RequestsTotal != 3 || m.ServedTotal != 1 || m.RejectedTotal != 1 || m.NotFoundTotal != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if m.StartTimeSeconds == 0 {
		t.Fatalf("missing start time")
	}
}

func TestAdminStatus(t *testing.T) {
	s := newServer(t, srv.Config{})
	admin := httptest.NewServer(s.AdminRouter())
	defer admin.Close()
	resp, err := http.Get(admin.URL + "/api/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	var st srv.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != "ok" || st.Root != s.Root() || st.Uptime == "" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestAdminRoutesNotOnPublicRouter(t *testing.T) {
	router := newServer(t, srv.Config{}).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status code: %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s := newServer(t, srv.Config{Rate: rate.Every(time.Minute), Burst: 1})
	router := s.Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello.txt", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello.txt", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestAccessLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "access.log")
	s := newServer(t, srv.Config{LogFile: logPath})
	ts := httptest.NewServer(s.Router())
	resp, err := http.Get(ts.URL + "/hello.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	// Close waits for the handler, and so the log write, to finish.
	ts.Close()
	id := resp.Header.Get("X-Request-Id")
	if id == "" {
		t.Fatalf("missing request id")
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "GET /hello.txt 200 "+id) {
		t.Fatalf("log missing entry: %q", line)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	s := newServer(t, srv.Config{})
	s.Router().(*chi.Mux).Get("/panic", func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	code, _ := fetch(t, ts.URL+"/panic")
	if code != http.StatusInternalServerError {
		t.Fatalf("status code: %d", code)
	}
}

func TestServerStart(t *testing.T) {
	s := newServer(t, srv.Config{Bind: "127.0.0.1", Port: 0, Watch: true})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	if err := s.Start(ctx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("start: %v", err)
	}
}

func TestServeListener(t *testing.T) {
	s := newServer(t, srv.Config{Bind: "127.0.0.1"})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	code, body := fetch(t, "http://"+ln.Addr().String()+"/hello.txt")
	if code != http.StatusOK || body != "Hello Bun!" {
		t.Fatalf("got %d %q", code, body)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil && err != http.ErrServerClosed {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}
