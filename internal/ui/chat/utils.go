// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// FORMATTING
// =============================================================================

// formatTimestamp renders a message timestamp relative to now: time
// only for today, weekday for this week, date for anything older.
func formatTimestamp(t time.Time) string {
	now := time.Now()

	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	}
	return t.Format("Jan 2 15:04")
}

// formatDuration renders a turn duration compactly: milliseconds under
// a second, one decimal of seconds under a minute, m:ss beyond.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return strconv.Itoa(int(d.Milliseconds())) + "ms"
	}
	if d < time.Minute {
		secs := d.Seconds()
		whole := int(secs)
		tenth := int(secs*10) % 10
		return strconv.Itoa(whole) + "." + strconv.Itoa(tenth) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	out := strconv.Itoa(mins) + "m"
	if secs > 0 {
		out += strconv.Itoa(secs) + "s"
	}
	return out
}

// formatTurnStats renders the timing footer for a finalized streamed
// reply, or "" when no stats were recorded.
func formatTurnStats(stats *model.Statistics) string {
	if stats == nil || stats.Total() == 0 {
		return ""
	}

	parts := make([]string, 0, 3)
	if ttf := stats.TimeToFirst(); ttf > 0 {
		parts = append(parts, formatDuration(ttf)+" to first word")
	}
	parts = append(parts, formatDuration(stats.Total())+" total")
	if stats.FragmentCount > 0 {
		parts = append(parts, strconv.Itoa(stats.FragmentCount)+" fragments")
	}
	return strings.Join(parts, ", ")
}

// formatScorePercent renders a relevance score as a whole percent.
func formatScorePercent(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 0, 64) + "%"
}

// referenceLine summarizes the journal entries that informed a reply.
// At most three titles are listed; the remainder collapses to a count.
func referenceLine(refs []model.EntryReference) string {
	if len(refs) == 0 {
		return ""
	}

	const maxShown = 3
	var b strings.Builder
	b.WriteString("from your journal: ")

	shown := len(refs)
	if shown > maxShown {
		shown = maxShown
	}
	for i := 0; i < shown; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		title := refs[i].Title
		if title == "" {
			title = "entry " + util.TruncateRunesNoEllipsis(refs[i].EntryID, 8)
		}
		b.WriteString(util.TruncateRunes(title, 32))
		if refs[i].Score > 0 {
			b.WriteString(" (" + formatScorePercent(refs[i].Score) + ")")
		}
	}
	if rest := len(refs) - shown; rest > 0 {
		b.WriteString(" and " + strconv.Itoa(rest) + " more")
	}
	return b.String()
}

// toolUsageLine summarizes the retrieval operations the backend ran for
// a reply. Failed tools surface their error text.
func toolUsageLine(tools []model.ToolUsage) string {
	if len(tools) == 0 {
		return ""
	}

	parts := make([]string, 0, len(tools))
	for _, t := range tools {
		if !t.Success {
			reason := t.Error
			if reason == "" {
				reason = "failed"
			}
			parts = append(parts, t.Tool+" ("+reason+")")
			continue
		}
		desc := t.Tool + ": " + strconv.Itoa(t.ResultCount) + " " + pluralizeResult(t.ResultCount)
		if t.DurationMS > 0 {
			desc += " in " + strconv.Itoa(t.DurationMS) + "ms"
		}
		parts = append(parts, desc)
	}
	return "looked up " + strings.Join(parts, ", ")
}

func pluralizeResult(n int) string {
	if n == 1 {
		return "result"
	}
	return "results"
}

// =============================================================================
// TEXT WRAPPING
// =============================================================================

// wrapText wraps text to maxWidth columns, breaking at spaces where
// possible. Existing newlines are preserved.
//
// UNICODE: wrapping walks runes, never bytes, so multi-byte characters
// are not split mid-sequence.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		runes := []rune(line)
		for len(runes) > maxWidth {
			breakAt := maxWidth
			for j := maxWidth; j > 0; j-- {
				if runes[j] == ' ' {
					breakAt = j
					break
				}
			}

			result.WriteString(string(runes[:breakAt]))
			result.WriteString("\n")
			runes = []rune(strings.TrimLeft(string(runes[breakAt:]), " "))
		}
		result.WriteString(string(runes))
	}

	return result.String()
}

// =============================================================================
// CLIPBOARD
// =============================================================================

// copyToClipboard places text on the system clipboard.
func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// =============================================================================
// TRANSCRIPT SEARCH
// =============================================================================

// searchMatch locates one occurrence of the search query inside the
// transcript. Start is a rune offset, not a byte offset.
type searchMatch struct {
	MessageIndex int
	Start        int
}

// findMatches locates every case-insensitive occurrence of query in
// the given messages. Positions are rune offsets into each message's
// display content.
func findMatches(messages []*model.Message, query string) []searchMatch {
	queryRunes := []rune(strings.ToLower(query))
	if len(queryRunes) == 0 {
		return nil
	}

	var matches []searchMatch
	for idx, msg := range messages {
		text := []rune(msg.GetDisplayContent())
		lower := make([]rune, len(text))
		for i, r := range text {
			lower[i] = []rune(strings.ToLower(string(r)))[0]
		}

		for i := 0; i+len(queryRunes) <= len(lower); i++ {
			hit := true
			for j := range queryRunes {
				if lower[i+j] != queryRunes[j] {
					hit = false
					break
				}
			}
			if hit {
				matches = append(matches, searchMatch{MessageIndex: idx, Start: i})
				i += len(queryRunes) - 1
			}
		}
	}
	return matches
}
