// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the offline entry cache and transcript export.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotCached     = errors.New("entry not in cache")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// ENTRY CACHE
// =============================================================================

// EntryCache mirrors journal entries fetched from the backend into a
// local sqlite database so browsing and search keep working while the
// backend is unreachable. The backend stays the source of truth; rows
// here are replaceable copies.
type EntryCache struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// CacheFileName is the cache database under the inkwell data directory.
const CacheFileName = "cache.db"

// DefaultCachePath returns ~/.inkwell/cache.db.
func DefaultCachePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CacheFileName), nil
}

// OpenCache opens (creating if needed) the entry cache at path.
func OpenCache(path string) (*EntryCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite supports a single writer; a larger pool just queues on
	// the write lock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-16000", // 16MB cache
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	c := &EntryCache{db: db, path: path}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return c, nil
}

// initSchema creates the cache schema.
func (c *EntryCache) initSchema() error {
	if _, err := c.db.Exec(schema); err != nil {
		return err
	}
	_, err := c.db.Exec(initMetadata)
	return err
}

// Close closes the cache and releases the database handle.
func (c *EntryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// =============================================================================
// UPSERT
// =============================================================================

const upsertEntry = `
INSERT INTO entries (id, title, content, tags, folder_id, favorite, mood,
                     word_count, created_at, updated_at, cached_at, search_text)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title       = excluded.title,
    content     = excluded.content,
    tags        = excluded.tags,
    folder_id   = excluded.folder_id,
    favorite    = excluded.favorite,
    mood        = excluded.mood,
    word_count  = excluded.word_count,
    created_at  = excluded.created_at,
    updated_at  = excluded.updated_at,
    cached_at   = excluded.cached_at,
    search_text = excluded.search_text
`

// Put inserts or refreshes a single entry.
func (c *EntryCache) Put(entry *model.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := putEntry(tx, entry, time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

// PutAll refreshes a batch of entries in one transaction, typically the
// page an online listing just returned.
func (c *EntryCache) PutAll(entries []*model.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, entry := range entries {
		if err := putEntry(tx, entry, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func putEntry(tx *sql.Tx, entry *model.Entry, now time.Time) error {
	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	searchText := normalizeForSearch(entry.Title + "\n" + entry.Content)

	_, err = tx.Exec(upsertEntry,
		entry.ID, entry.Title, entry.Content, string(tags), entry.FolderID,
		boolToInt(entry.Favorite), entry.Mood, entry.WordCount,
		entry.CreatedAt.Unix(), entry.UpdatedAt.Unix(), now.Unix(), searchText)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Delete removes an entry from the cache, mirroring a backend delete.
func (c *EntryCache) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("DELETE FROM entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

const selectColumns = `
    id, title, content, tags, folder_id, favorite, mood,
    word_count, created_at, updated_at
`

// Get returns a cached entry by id.
func (c *EntryCache) Get(id string) (*model.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRow("SELECT"+selectColumns+"FROM entries WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return entry, nil
}

// List returns cached entries, most recently updated first.
func (c *EntryCache) List(limit int) ([]*model.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := "SELECT" + selectColumns + "FROM entries ORDER BY updated_at DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return c.queryEntries(query, args...)
}

// Search finds cached entries whose title or content contains the query.
// Matching is case-insensitive and ignores Unicode composition: both the
// stored text and the query are NFC-normalized and case-folded, so
// "CAFÉ" typed with a combining accent still matches "café".
func (c *EntryCache) Search(query string, limit int) ([]*model.Entry, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return c.List(limit)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	pattern := "%" + escapeLike(normalizeForSearch(q)) + "%"
	sqlQuery := "SELECT" + selectColumns + `FROM entries
        WHERE search_text LIKE ? ESCAPE '\'
        ORDER BY updated_at DESC`
	args := []interface{}{pattern}
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	return c.queryEntries(sqlQuery, args...)
}

func (c *EntryCache) queryEntries(query string, args ...interface{}) ([]*model.Entry, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var entries []*model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			continue // Skip corrupted rows
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*model.Entry, error) {
	var entry model.Entry
	var tags sql.NullString
	var folderID, mood sql.NullString
	var favorite int
	var createdAt, updatedAt int64

	err := row.Scan(&entry.ID, &entry.Title, &entry.Content, &tags,
		&folderID, &favorite, &mood, &entry.WordCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if tags.Valid && tags.String != "" && tags.String != "null" {
		if err := json.Unmarshal([]byte(tags.String), &entry.Tags); err != nil {
			entry.Tags = nil
		}
	}
	entry.FolderID = folderID.String
	entry.Mood = mood.String
	entry.Favorite = favorite != 0
	entry.CreatedAt = time.Unix(createdAt, 0)
	entry.UpdatedAt = time.Unix(updatedAt, 0)

	return &entry, nil
}

// Count returns how many entries the cache holds.
func (c *EntryCache) Count() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// =============================================================================
// EVICTION
// =============================================================================

// EvictStale removes entries not refreshed within maxAge and returns how
// many rows were dropped. Stale rows would otherwise shadow backend
// deletes forever.
func (c *EntryCache) EvictStale(maxAge time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge).Unix()
	result, err := c.db.Exec("DELETE FROM entries WHERE cached_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// UNICODE: NFC so composed and decomposed forms compare equal, then a
// full case fold, which handles more than ASCII lowercasing does.
func normalizeForSearch(s string) string {
	normalized, _, err := transform.String(norm.NFC, s)
	if err != nil {
		normalized = s
	}
	return cases.Fold().String(normalized)
}

// escapeLike escapes LIKE wildcards so user queries match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
