// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the inkwell TUI.
package components

import (
	"strconv"
	"time"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// fmtNumber formats a number with thousand separators. Grouping works
// on the decimal string so MinInt64 needs no special case.
func fmtNumber(n int) string {
	s := strconv.Itoa(n)

	sign := ""
	if s[0] == '-' {
		sign = "-"
		s = s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	result := ""
	count := 0
	for i := len(s) - 1; i >= 0; i-- {
		if count > 0 && count%3 == 0 {
			result = "," + result
		}
		result = string(s[i]) + result
		count++
	}

	return sign + result
}

// formatElapsed renders a duration for status lines: seconds with one
// decimal under a minute, then m/s.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	if d < time.Minute {
		tenths := d.Round(100 * time.Millisecond)
		return strconv.FormatFloat(tenths.Seconds(), 'f', 1, 64) + "s"
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return strconv.Itoa(minutes) + "m" + strconv.Itoa(seconds) + "s"
}

// relativeTime renders a timestamp relative to now for list rows:
// "just now", "5m ago", "3h ago", "2d ago", then the date.
func relativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	case d < 7*24*time.Hour:
		return strconv.Itoa(int(d.Hours()/24)) + "d ago"
	default:
		return t.Format("2006-01-02")
	}
}
