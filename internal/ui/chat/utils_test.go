// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// DURATION AND STATS FORMATTING
// =============================================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"milliseconds", 450 * time.Millisecond, "450ms"},
		{"zero", 0, "0ms"},
		{"negative clamps", -5 * time.Second, "0ms"},
		{"seconds with tenth", 4800 * time.Millisecond, "4.8s"},
		{"whole seconds", 2 * time.Second, "2.0s"},
		{"minutes and seconds", 65 * time.Second, "1m5s"},
		{"whole minutes", 2 * time.Minute, "2m"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatDuration(tc.d); got != tc.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
			}
		})
	}
}

func TestFormatTurnStats(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	stats := &model.Statistics{
		StartedAt:     start,
		FirstFragment: start.Add(120 * time.Millisecond),
		FinishedAt:    start.Add(3200 * time.Millisecond),
		FragmentCount: 42,
	}

	got := formatTurnStats(stats)
	want := "120ms to first word, 3.2s total, 42 fragments"
	if got != want {
		t.Errorf("formatTurnStats = %q, want %q", got, want)
	}
}

func TestFormatTurnStatsEmpty(t *testing.T) {
	if got := formatTurnStats(nil); got != "" {
		t.Errorf("formatTurnStats(nil) = %q, want empty", got)
	}

	// Not finalized means no total, which means no footer.
	stats := &model.Statistics{StartedAt: time.Now()}
	if got := formatTurnStats(stats); got != "" {
		t.Errorf("formatTurnStats(unfinalized) = %q, want empty", got)
	}
}

func TestFormatTurnStatsNoFirstFragment(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	stats := &model.Statistics{
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	}

	got := formatTurnStats(stats)
	if strings.Contains(got, "to first word") {
		t.Errorf("formatTurnStats = %q, should omit time-to-first when none arrived", got)
	}
	if !strings.Contains(got, "1.0s total") {
		t.Errorf("formatTurnStats = %q, want the total present", got)
	}
}

func TestFormatScorePercent(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.82, "82%"},
		{1.0, "100%"},
		{0.436, "44%"},
		{0, "0%"},
	}

	for _, tc := range tests {
		if got := formatScorePercent(tc.score); got != tc.want {
			t.Errorf("formatScorePercent(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

func TestFormatTimestampToday(t *testing.T) {
	now := time.Now()
	got := formatTimestamp(now)

	if got != now.Format("15:04") {
		t.Errorf("formatTimestamp(today) = %q, want %q", got, now.Format("15:04"))
	}
}

func TestFormatTimestampThisWeek(t *testing.T) {
	past := time.Now().Add(-3 * 24 * time.Hour)
	got := formatTimestamp(past)

	if got != past.Format("Mon 15:04") {
		t.Errorf("formatTimestamp(3 days ago) = %q, want %q", got, past.Format("Mon 15:04"))
	}
}

func TestFormatTimestampOlder(t *testing.T) {
	past := time.Now().Add(-30 * 24 * time.Hour)
	got := formatTimestamp(past)

	if got != past.Format("Jan 2 15:04") {
		t.Errorf("formatTimestamp(30 days ago) = %q, want %q", got, past.Format("Jan 2 15:04"))
	}
}

// =============================================================================
// REFERENCE AND TOOL FOOTERS
// =============================================================================

func TestReferenceLine(t *testing.T) {
	refs := []model.EntryReference{
		{EntryID: "e1", Title: "Winter hike", Score: 0.82},
		{EntryID: "e2", Title: "Trail notes", Score: 0.64},
	}

	got := referenceLine(refs)
	if !strings.HasPrefix(got, "from your journal: ") {
		t.Errorf("referenceLine = %q, want the journal prefix", got)
	}
	if !strings.Contains(got, "Winter hike (82%)") {
		t.Errorf("referenceLine = %q, want title with score", got)
	}
	if !strings.Contains(got, "Trail notes (64%)") {
		t.Errorf("referenceLine = %q, want second title", got)
	}
}

func TestReferenceLineOverflow(t *testing.T) {
	refs := []model.EntryReference{
		{EntryID: "e1", Title: "One"},
		{EntryID: "e2", Title: "Two"},
		{EntryID: "e3", Title: "Three"},
		{EntryID: "e4", Title: "Four"},
		{EntryID: "e5", Title: "Five"},
	}

	got := referenceLine(refs)
	if !strings.Contains(got, "and 2 more") {
		t.Errorf("referenceLine = %q, want overflow count", got)
	}
	if strings.Contains(got, "Four") {
		t.Errorf("referenceLine = %q, should not list beyond three titles", got)
	}
}

func TestReferenceLineUntitled(t *testing.T) {
	refs := []model.EntryReference{
		{EntryID: "entry-20250310-abcdef", Title: ""},
	}

	got := referenceLine(refs)
	if !strings.Contains(got, "entry entry-20") {
		t.Errorf("referenceLine = %q, want truncated id fallback", got)
	}
}

func TestReferenceLineEmpty(t *testing.T) {
	if got := referenceLine(nil); got != "" {
		t.Errorf("referenceLine(nil) = %q, want empty", got)
	}
}

func TestToolUsageLine(t *testing.T) {
	tools := []model.ToolUsage{
		{Tool: "entry_search", Success: true, ResultCount: 3, DurationMS: 120},
	}

	got := toolUsageLine(tools)
	want := "looked up entry_search: 3 results in 120ms"
	if got != want {
		t.Errorf("toolUsageLine = %q, want %q", got, want)
	}
}

func TestToolUsageLineSingleResult(t *testing.T) {
	tools := []model.ToolUsage{
		{Tool: "entry_search", Success: true, ResultCount: 1},
	}

	got := toolUsageLine(tools)
	if !strings.Contains(got, "1 result") || strings.Contains(got, "1 results") {
		t.Errorf("toolUsageLine = %q, want singular form", got)
	}
}

func TestToolUsageLineFailure(t *testing.T) {
	tools := []model.ToolUsage{
		{Tool: "entry_search", Success: false, Error: "index unavailable"},
		{Tool: "tag_lookup", Success: true, ResultCount: 2},
	}

	got := toolUsageLine(tools)
	if !strings.Contains(got, "entry_search (index unavailable)") {
		t.Errorf("toolUsageLine = %q, want the failure reason", got)
	}
	if !strings.Contains(got, "tag_lookup: 2 results") {
		t.Errorf("toolUsageLine = %q, want the successful tool too", got)
	}
}

func TestToolUsageLineEmpty(t *testing.T) {
	if got := toolUsageLine(nil); got != "" {
		t.Errorf("toolUsageLine(nil) = %q, want empty", got)
	}
}

// =============================================================================
// TEXT WRAPPING
// =============================================================================

func TestWrapText(t *testing.T) {
	got := wrapText("the quick brown fox jumps", 10)

	for i, line := range strings.Split(got, "\n") {
		if n := len([]rune(line)); n > 10 {
			t.Errorf("line %d is %d runes wide, want <= 10: %q", i, n, line)
		}
	}
	joined := strings.ReplaceAll(got, "\n", " ")
	if joined != "the quick brown fox jumps" {
		t.Errorf("wrapping altered the words: %q", got)
	}
}

func TestWrapTextPreservesNewlines(t *testing.T) {
	got := wrapText("first\nsecond", 40)
	if got != "first\nsecond" {
		t.Errorf("wrapText = %q, want existing newlines kept", got)
	}
}

func TestWrapTextUnicode(t *testing.T) {
	// UNICODE: wide text must break between runes, never inside one.
	const text = "日本語のテキストを折り返す"
	got := wrapText(text, 5)

	for i, line := range strings.Split(got, "\n") {
		if n := len([]rune(line)); n > 5 {
			t.Errorf("line %d is %d runes wide, want <= 5: %q", i, n, line)
		}
	}
	if strings.ReplaceAll(got, "\n", "") != text {
		t.Errorf("wrapping corrupted the runes: %q", got)
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	if got := wrapText("untouched", 0); got != "untouched" {
		t.Errorf("wrapText with zero width = %q, want input unchanged", got)
	}
}

// =============================================================================
// TRANSCRIPT SEARCH
// =============================================================================

func TestFindMatches(t *testing.T) {
	messages := []*model.Message{
		model.NewUserMessage("", "I walked the ridge today"),
		model.NewMessage("", model.RoleAssistant, "The ridge walk sounds restorative."),
	}

	matches := findMatches(messages, "ridge")
	if len(matches) != 2 {
		t.Fatalf("found %d matches, want 2", len(matches))
	}
	if matches[0].MessageIndex != 0 || matches[0].Start != 13 {
		t.Errorf("first match = %+v, want message 0 offset 13", matches[0])
	}
	if matches[1].MessageIndex != 1 || matches[1].Start != 4 {
		t.Errorf("second match = %+v, want message 1 offset 4", matches[1])
	}
}

func TestFindMatchesCaseInsensitive(t *testing.T) {
	messages := []*model.Message{
		model.NewUserMessage("", "Ridge RIDGE ridge"),
	}

	matches := findMatches(messages, "ridge")
	if len(matches) != 3 {
		t.Errorf("found %d matches, want 3", len(matches))
	}
}

func TestFindMatchesUnicodeOffsets(t *testing.T) {
	// UNICODE: offsets count runes. The emoji is one rune, four bytes.
	messages := []*model.Message{
		model.NewUserMessage("", "🏔 ridge"),
	}

	matches := findMatches(messages, "ridge")
	if len(matches) != 1 {
		t.Fatalf("found %d matches, want 1", len(matches))
	}
	if matches[0].Start != 2 {
		t.Errorf("match offset = %d, want rune offset 2", matches[0].Start)
	}
}

func TestFindMatchesNoOverlap(t *testing.T) {
	messages := []*model.Message{
		model.NewUserMessage("", "aaaa"),
	}

	matches := findMatches(messages, "aa")
	if len(matches) != 2 {
		t.Errorf("found %d matches, want 2 non-overlapping", len(matches))
	}
}

func TestFindMatchesEmptyQuery(t *testing.T) {
	messages := []*model.Message{
		model.NewUserMessage("", "anything"),
	}

	if matches := findMatches(messages, ""); matches != nil {
		t.Errorf("findMatches with empty query = %v, want nil", matches)
	}
}
