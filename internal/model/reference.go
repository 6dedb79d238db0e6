// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for journal chat and entries.
package model

// =============================================================================
// ENTRY REFERENCE
// =============================================================================

// EntryReference links an assistant message to the journal entry that
// informed it, with a relevance score for ordering. References are
// immutable once created; the cached display fields avoid a second fetch
// when rendering citations.
type EntryReference struct {
	// MessageID is the message this reference is attached to.
	MessageID string `json:"message_id,omitempty"`

	// EntryID is the referenced journal entry.
	EntryID string `json:"entry_id"`

	// Score is the similarity/relevance score assigned by retrieval.
	Score float64 `json:"score"`

	// ChunkIndex identifies which chunk of the entry matched, when the
	// backend chunks long entries. Zero-valued when not chunked.
	ChunkIndex int `json:"chunk_index,omitempty"`

	// Cached display fields, optional.
	Title   string   `json:"title,omitempty"`
	Snippet string   `json:"snippet,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// =============================================================================
// TOOL USAGE
// =============================================================================

// ToolUsage describes an auxiliary retrieval/search operation the backend
// invoked while producing a response. Attached to assistant messages;
// present only when a tool-routing path executed.
type ToolUsage struct {
	// Tool is the tool name ("journal_search", "web_search", ...).
	Tool string `json:"tool"`

	// Success reports whether the tool completed.
	Success bool `json:"success"`

	// DurationMS is the tool execution time, when reported.
	DurationMS int `json:"duration_ms,omitempty"`

	// ResultCount is the number of results the tool produced.
	ResultCount int `json:"result_count"`

	// Confidence is the backend's confidence in the routing decision.
	Confidence float64 `json:"confidence,omitempty"`

	// Error carries the failure text when Success is false.
	Error string `json:"error,omitempty"`

	// Results are the tool-specific result records.
	Results []ToolResult `json:"results,omitempty"`
}

// ToolResult is one hit from a tool invocation. Journal hits carry an
// entry id; web hits carry a URL. The remaining fields are shared.
type ToolResult struct {
	EntryID string  `json:"entry_id,omitempty"`
	URL     string  `json:"url,omitempty"`
	Title   string  `json:"title,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score,omitempty"`
}
