// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for inkwell.
//
// # Key Types
//
//   - Config: the complete configuration tree (backend, chat, appearance,
//     editor, search, log, lock)
//   - ValidationError / ValidateErrors: field-level validation failures
//   - Watcher: fsnotify-based hot reload for a running TUI
//
// # Usage
//
//	cfg := config.Global()
//	client := api.NewClient().WithBaseURL(cfg.Backend.BaseURL)
//
//	// Dot-notation access for the /config command:
//	val, err := cfg.Get("appearance.theme")
//	err = cfg.Set("chat.text_size", "large")
//
// # Precedence
//
// Values are resolved from, in order: built-in defaults, then
// ~/.inkwell/config.toml (or config.json), then .env files, then
// INKWELL_* environment variables.
//
// # Security
//
// Config files are created with 0600 permissions because backend.api_key
// may hold a credential. String() redacts the key; prefer it over raw
// marshaling anywhere output could be logged.
package config
