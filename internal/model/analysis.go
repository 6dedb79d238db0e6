// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for journal chat and entries.
package model

import "time"

// =============================================================================
// BATCH ANALYSIS
// =============================================================================

// BatchAnalysis is the result of analyzing a group of entries with a named
// prompt type ("summary", "themes", "mood", ...).
type BatchAnalysis struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	PromptType string   `json:"prompt_type"`
	EntryIDs   []string `json:"entry_ids"`

	// Result fields; which are populated depends on the prompt type.
	Summary   string         `json:"summary,omitempty"`
	Themes    []string       `json:"themes,omitempty"`
	Insights  []string       `json:"insights,omitempty"`
	MoodTrend map[string]int `json:"mood_trend,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EntryCount returns the number of entries the analysis covered.
func (a *BatchAnalysis) EntryCount() int {
	return len(a.EntryIDs)
}
