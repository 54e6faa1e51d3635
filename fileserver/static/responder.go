// CLASSIFICATION: COMMUNITY
// Filename: responder.go v0.1
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

package static

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNotFound is returned for any path that does not map to a readable
// regular file inside the root.
var ErrNotFound = errors.New("not found")

// notFoundBody is the only body ever sent with a 404.
const notFoundBody = "Not Found"

// Responder serves regular files from a fixed root directory.
type Responder struct {
	root string
	fs   *os.Root
}

// NewResponder canonicalises dir and opens it as the served root.
func NewResponder(dir string) (*Responder, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", dir, err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", dir, err)
	}
	info, err := os.Stat(canon)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", canon)
	}
	fs, err := os.OpenRoot(canon)
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}
	return &Responder{root: canon, fs: fs}, nil
}

// Root returns the canonical root directory.
func (r *Responder) Root() string {
	return r.root
}

// Close releases the root handle.
func (r *Responder) Close() error {
	if r == nil || r.fs == nil {
		return nil
	}
	return r.fs.Close()
}

// Resolve maps an accepted request path to a path relative to the root,
// following symlinks only while they stay inside it. The resolved path must
// pass Validate too, so a link cannot expose a hidden file.
func (r *Responder) Resolve(rel string) (string, error) {
	if strings.ContainsAny(rel, "\x00\\") {
		return "", ErrNotFound
	}
	candidate := filepath.Join(r.root, filepath.FromSlash(rel))
	canon, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", ErrNotFound
	}
	if canon != r.root && !strings.HasPrefix(canon, r.root+string(filepath.Separator)) {
		return "", ErrNotFound
	}
	local, err := filepath.Rel(r.root, canon)
	if err != nil {
		return "", ErrNotFound
	}
	if _, ok := Validate("/" + filepath.ToSlash(local)); !ok {
		return "", ErrNotFound
	}
	return local, nil
}

// open returns the resolved file if it is a regular file.
func (r *Responder) open(rel string) (*os.File, os.FileInfo, error) {
	local, err := r.Resolve(rel)
	if err != nil {
		return nil, nil, err
	}
	f, err := r.fs.Open(local)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// Respond writes the file at rel, or a 404. It reports whether the file was
// served and any error from streaming the body.
func (r *Responder) Respond(w http.ResponseWriter, req *http.Request, rel string) (bool, error) {
	f, info, err := r.open(rel)
	if err != nil {
		NotFound(w)
		return false, nil
	}
	defer f.Close()

	ctype := mime.TypeByExtension(filepath.Ext(info.Name()))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if req.Method == http.MethodHead {
		return true, nil
	}
	if _, err := io.Copy(w, &ctxReader{ctx: req.Context(), r: f}); err != nil {
		return true, fmt.Errorf("copy %s: %w", rel, err)
	}
	return true, nil
}

// NotFound writes the fixed 404 response.
func NotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(notFoundBody)))
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, notFoundBody)
}
