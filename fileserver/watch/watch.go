// CLASSIFICATION: COMMUNITY
// Filename: watch.go v0.1
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

// Package watch reports filesystem changes under the served root. It keeps
// no copy of file content; requests always read from disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"pubserve/fileserver/static"
)

// Logger abstracts logging for the watcher.
type Logger interface {
	Printf(format string, v ...any)
}

// Event is one change under the root, with Path relative to it.
type Event struct {
	Path string
	Op   string
}

// Watcher follows the root and its non-hidden subdirectories.
type Watcher struct {
	root string
	log  Logger
	fsw  *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]bool

	onEvent func(Event)
	onRoot  func(present bool)
}

// Option configures a Watcher.
type Option func(*Watcher)

// OnEvent is called for every change.
func OnEvent(fn func(Event)) Option {
	return func(w *Watcher) { w.onEvent = fn }
}

// OnRootChange is called when the root disappears or reappears.
func OnRootChange(fn func(present bool)) Option {
	return func(w *Watcher) { w.onRoot = fn }
}

// New starts watching root. Hidden directories are skipped since nothing
// beneath them can be served.
func New(root string, log Logger, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	root = filepath.Clean(root)
	if canon, err := filepath.EvalSymlinks(root); err == nil {
		root = canon
	}
	w := &Watcher{root: root, log: log, fsw: fsw, watched: make(map[string]bool)}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	// The parent tells us when the root itself is removed or recreated.
	if err := fsw.Add(filepath.Dir(w.root)); err != nil && w.log != nil {
		w.log.Printf("watch parent of %s: %v", w.root, err)
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.watched[path] {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		w.watched[path] = true
		return nil
	})
}

// Run dispatches events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if w.log != nil {
				w.log.Printf("watch error: %v", err)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	if name == w.root {
		w.rootEvent(ev)
		return
	}
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// Sibling of the root seen through the parent watch.
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			if err := w.addTree(name); err != nil && w.log != nil {
				w.log.Printf("%v", err)
			}
		}
	}
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.mu.Lock()
		delete(w.watched, name)
		w.mu.Unlock()
	}
	e := Event{Path: filepath.ToSlash(rel), Op: ev.Op.String()}
	if _, ok := static.Validate("/" + e.Path); !ok {
		return
	}
	if w.log != nil {
		w.log.Printf("change %s %s", e.Path, e.Op)
	}
	if w.onEvent != nil {
		w.onEvent(e)
	}
}

func (w *Watcher) rootEvent(ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.mu.Lock()
		w.watched = make(map[string]bool)
		w.mu.Unlock()
		if w.log != nil {
			w.log.Printf("served root %s removed", w.root)
		}
		if w.onRoot != nil {
			w.onRoot(false)
		}
	case ev.Has(fsnotify.Create):
		if err := w.addTree(w.root); err != nil {
			if w.log != nil {
				w.log.Printf("rewatch root: %v", err)
			}
			return
		}
		if w.log != nil {
			w.log.Printf("served root %s restored", w.root)
		}
		if w.onRoot != nil {
			w.onRoot(true)
		}
	}
}
