// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/inkwell-tui/internal/logging"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// DefaultDebounce is how long the watcher waits after the last change
// event before reloading. Editors and atomic renames produce bursts of
// events for one save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads the configuration when the config file changes on disk
// and hands the fresh config to a callback. A running TUI uses it to
// apply appearance changes without a restart.
//
// The data directory is watched rather than the file itself: editors
// save via rename, which would silently detach a watch on the file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(*Config)

	mu      sync.Mutex
	pending time.Time // zero when no reload is queued

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a config watcher. onChange runs on the watcher's
// goroutine after each successful reload; it must hand off to the UI
// thread itself (tea.Program.Send is safe for this).
func NewWatcher(onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		watcher:  fsw,
		debounce: DefaultDebounce,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching the inkwell data directory for config changes.
func (w *Watcher) Watch() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// isConfigFile reports whether an event path is one of the config files.
func isConfigFile(path string) bool {
	switch filepath.Base(path) {
	case "config.toml", "config.json":
		return true
	}
	return false
}

// processEvents queues a debounced reload for config file events.
func (w *Watcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			logging.Component("config").Error().Interface("panic", r).Msg("config watcher crashed")
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isConfigFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Component("config").Warn().Err(err).Msg("config watch error")
		}
	}
}

// processPending fires the reload once the change burst has settled.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			fire := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if fire {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if fire {
				w.reload()
			}
		}
	}
}

// reload re-reads the config from disk. A config that fails to load or
// validate is dropped; the previous config stays active.
func (w *Watcher) reload() {
	cfg, err := Load()
	if err != nil {
		logging.Component("config").Warn().Err(err).Msg("config reload failed, keeping previous config")
		return
	}

	SetGlobal(cfg)
	logging.Component("config").Info().Str("theme", cfg.Appearance.Theme).Msg("config reloaded")

	if w.onChange != nil {
		w.onChange(cfg)
	}
}
