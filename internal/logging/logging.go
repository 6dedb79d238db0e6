// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the application-wide zerolog logger.
//
// The TUI owns stdout and stderr while running, so all diagnostics go to a
// log file under the inkwell data directory instead. One-shot CLI commands
// share the same file so a single `tail -f` follows every code path.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultFileName is the log file created under the inkwell data directory.
const DefaultFileName = "inkwell.log"

// logFile holds the open file so Close can release it on shutdown.
var logFile *os.File

// Init configures the global zerolog logger to write to the given file at
// the given level. An empty path disables file logging and discards all
// output, which keeps library call sites unconditional.
func Init(path, level string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(level))

	if path == "" {
		log.Logger = zerolog.New(io.Discard)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f

	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return nil
}

// Close flushes and closes the log file if one is open.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Component returns a sub-logger tagged with a component name, so log lines
// from the API client, the turn runner, and the cache are distinguishable.
// The pointer keeps the logger addressable for chained level calls.
func Component(name string) *zerolog.Logger {
	logger := log.With().Str("component", name).Logger()
	return &logger
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
