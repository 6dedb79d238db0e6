// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for journal chat and entries.
package model

import (
	"strings"
	"time"
)

// =============================================================================
// JOURNAL ENTRY
// =============================================================================

// Entry is a journal entry as the backend serves it.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"` // markdown
	Tags      []string  `json:"tags,omitempty"`
	FolderID  string    `json:"folder_id,omitempty"`
	Favorite  bool      `json:"favorite"`
	Mood      string    `json:"mood,omitempty"`
	WordCount int       `json:"word_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Images are attachment records; binary data stays on the backend.
	Images []EntryImage `json:"images,omitempty"`
}

// EntryImage is attachment metadata for an image stored by the backend.
type EntryImage struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entry_id,omitempty"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type,omitempty"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Preview returns the first maxLen runes of content with newlines
// flattened, for list rows.
func (e *Entry) Preview(maxLen int) string {
	content := strings.TrimSpace(strings.ReplaceAll(e.Content, "\n", " "))
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// HasTag reports whether the entry carries the given tag (exact match).
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Words recomputes the word count from content when the backend did not
// supply one.
func (e *Entry) Words() int {
	if e.WordCount > 0 {
		return e.WordCount
	}
	return len(strings.Fields(e.Content))
}

// =============================================================================
// TAGS AND FOLDERS
// =============================================================================

// Tag is a label with a usage count, as the backend's tag listing returns.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

// Folder groups entries.
type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	EntryCount int       `json:"entry_count,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
