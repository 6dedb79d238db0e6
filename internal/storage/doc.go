// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the offline entry cache and transcript export.
//
// The cache mirrors journal entries the API has already served into a
// local sqlite database, so the entry browser and search degrade to
// cached data instead of an error screen when the backend is down. The
// backend remains the source of truth: rows are refreshed on every
// successful fetch and evicted once stale.
//
// # Key Types
//
//   - EntryCache: sqlite-backed entry mirror with normalized search
//   - Format: transcript export format (markdown or json)
//
// # Usage
//
// Open the cache and refresh it from an API listing:
//
//	cache, err := storage.OpenCache(path)
//	if err != nil { ... }
//	defer cache.Close()
//	cache.PutAll(page.Entries)
//
// Fall back to it when the backend is unreachable:
//
//	entries, err := cache.Search("camping trip", 20)
//
// Export a session transcript:
//
//	path, err := storage.ExportSession(sess, storage.FormatMarkdown, "")
//
// # Unicode
//
// Cache search compares NFC-normalized, case-folded text on both sides,
// so composed and decomposed accents and any-case input all match.
package storage
