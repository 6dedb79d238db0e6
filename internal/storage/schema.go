// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the cache schema for migrations. A version
	// bump drops and rebuilds the cache; it only holds copies of
	// backend data.
	SchemaVersion = 1
)

// SQLite schema for the offline entry cache.
const schema = `
-- Metadata table for schema version and cache state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Entries table: journal entries mirrored from the backend
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    tags TEXT,                   -- JSON array of tag names
    folder_id TEXT,
    favorite INTEGER NOT NULL DEFAULT 0,
    mood TEXT,
    word_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL, -- Unix timestamp
    updated_at INTEGER NOT NULL, -- Unix timestamp
    cached_at INTEGER NOT NULL,  -- Unix timestamp of the last refresh
    search_text TEXT NOT NULL    -- NFC-normalized, case-folded title + content
);

CREATE INDEX IF NOT EXISTS idx_entries_updated ON entries(updated_at);
CREATE INDEX IF NOT EXISTS idx_entries_cached ON entries(cached_at);
CREATE INDEX IF NOT EXISTS idx_entries_folder ON entries(folder_id);
`

// initMetadata seeds the metadata table with default values.
const initMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
