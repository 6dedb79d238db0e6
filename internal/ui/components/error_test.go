// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/jeranaias/inkwell-tui/internal/api"
)

// =============================================================================
// ERROR CATEGORIZATION TESTS
// =============================================================================

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, CategoryUnknown},
		{"not configured", api.ErrNotConfigured, CategoryConfig},
		{"auth failed", api.ErrAuthFailed, CategoryAuth},
		{"rate limited", api.ErrRateLimited, CategoryRateLimit},
		{"server error", api.ErrServerError, CategoryBackend},
		{"deadline", context.DeadlineExceeded, CategoryNetwork},
		{"url error", &url.Error{Op: "Get", URL: "http://localhost:8000", Err: errors.New("connection refused")}, CategoryNetwork},
		{"stream error", &api.StreamError{Partial: "half a thought", Err: errors.New("connection reset")}, CategoryStream},
		{"wrapped sentinel", errors.New("boring"), CategoryUnknown},
	}

	for _, tc := range tests {
		got, _ := Categorize(tc.err)
		if got != tc.want {
			t.Errorf("Categorize(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCategorizeWrapped(t *testing.T) {
	// Wrapped sentinels still categorize through errors.Is.
	wrapped := errors.New("request failed")
	err := errors.Join(wrapped, api.ErrRateLimited)

	got, suggestions := Categorize(err)
	if got != CategoryRateLimit {
		t.Errorf("Categorize(wrapped rate limit) = %v, want %v", got, CategoryRateLimit)
	}
	if len(suggestions) == 0 {
		t.Error("Categorize(wrapped rate limit) should return suggestions")
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     string
	}{
		{CategoryNetwork, "Connection"},
		{CategoryAuth, "Authentication"},
		{CategoryBackend, "Backend"},
		{CategoryRateLimit, "Rate limit"},
		{CategoryStream, "Interrupted"},
		{CategoryConfig, "Configuration"},
		{CategoryUnknown, "Error"},
	}

	for _, tc := range tests {
		if got := tc.category.String(); got != tc.want {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tc.category, got, tc.want)
		}
	}
}

// =============================================================================
// ERROR DISPLAY TESTS
// =============================================================================

func TestErrorDisplayShow(t *testing.T) {
	d := NewErrorDisplay(testTheme())

	if d.Visible() {
		t.Error("new ErrorDisplay should be hidden")
	}

	d.Show("", api.ErrAuthFailed)

	if !d.Visible() {
		t.Error("Show() should make the display visible")
	}
	if d.Category() != CategoryAuth {
		t.Errorf("Category() = %v, want %v", d.Category(), CategoryAuth)
	}
	// An empty title falls back to the category label.
	if d.Title() != "Authentication" {
		t.Errorf("Title() = %q, want %q", d.Title(), "Authentication")
	}
}

func TestErrorDisplayShowClearsPreviousState(t *testing.T) {
	d := NewErrorDisplay(testTheme())

	d.ShowMessage("Export failed", "disk full", "Free some space and retry")
	d.Show("Turn failed", &api.StreamError{Err: errors.New("connection reset")})

	view := d.View(80)
	if strings.Contains(view, "disk full") {
		t.Errorf("View() should not keep the previous message, got %q", view)
	}
	if strings.Contains(view, "Free some space") {
		t.Errorf("View() should not keep the previous tip, got %q", view)
	}
}

func TestErrorDisplayStreamActions(t *testing.T) {
	d := NewErrorDisplay(testTheme())
	d.Show("", &api.StreamError{Partial: "partial", Err: errors.New("reset")})

	view := d.View(80)
	if !strings.Contains(view, "try again") {
		t.Errorf("stream errors should render the retry footer, got %q", view)
	}

	d.Show("", api.ErrServerError)
	view = d.View(80)
	if strings.Contains(view, "try again") {
		t.Errorf("non-stream errors should not render the retry footer, got %q", view)
	}
}

func TestErrorDisplayDismiss(t *testing.T) {
	d := NewErrorDisplay(testTheme())
	d.ShowMessage("Oops", "something", "")

	d.Dismiss()
	if d.Visible() {
		t.Error("Dismiss() should hide the display")
	}
	if got := d.View(80); got != "" {
		t.Errorf("View() after Dismiss() = %q, want empty", got)
	}
}

func TestErrorDisplaySuggestions(t *testing.T) {
	d := NewErrorDisplay(testTheme())
	d.Show("", api.ErrNotConfigured)

	view := d.View(80)
	if !strings.Contains(view, "inkwell setup") {
		t.Errorf("config errors should suggest setup, got %q", view)
	}
}
