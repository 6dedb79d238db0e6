// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution.
//
// This test file covers argument parsing and the display helpers the
// commands share. Handlers that talk to the backend are exercised in
// the api package tests against httptest servers.
package cli

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"list", "--limit", "50"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("limit") != "50" {
					t.Errorf("Flag(limit) = %q, want %q", p.Flag("limit"), "50")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"list", "--from=2025-01-01"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("from") != "2025-01-01" {
					t.Errorf("Flag(from) = %q, want %q", p.Flag("from"), "2025-01-01")
				}
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"list", "--favorite"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("favorite") {
					t.Error("BoolFlag(favorite) should be true")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"search", "rain", "on", "the", "window"},
			wantSub: "search",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 5 {
					t.Errorf("PositionalCount() = %d, want 5", p.PositionalCount())
				}
				joined := strings.Join(p.PositionalFrom(1), " ")
				if joined != "rain on the window" {
					t.Errorf("PositionalFrom(1) joined = %q, want %q", joined, "rain on the window")
				}
			},
		},
		{
			name:    "mixed flags and positional",
			args:    []string{"show", "--format", "json", "ent-42"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("format") != "json" {
					t.Errorf("Flag(format) = %q, want %q", p.Flag("format"), "json")
				}
				if p.Positional(1) != "ent-42" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "ent-42")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		flagName   string
		defaultVal int
		want       int
	}{
		{
			name:       "flag present",
			args:       []string{"list", "--limit", "10"},
			flagName:   "limit",
			defaultVal: 20,
			want:       10,
		},
		{
			name:       "flag missing uses default",
			args:       []string{"list"},
			flagName:   "limit",
			defaultVal: 20,
			want:       20,
		},
		{
			name:       "invalid int uses default",
			args:       []string{"list", "--limit", "abc"},
			flagName:   "limit",
			defaultVal: 20,
			want:       20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			got := parser.FlagIntOrDefault(tt.flagName, tt.defaultVal)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault(%q, %d) = %d, want %d", tt.flagName, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestArgParser_HasFlag(t *testing.T) {
	parser := NewArgParser([]string{"list", "--favorite", "--limit", "50"})

	if !parser.HasFlag("favorite") {
		t.Error("HasFlag(favorite) should be true")
	}
	if !parser.HasFlag("limit") {
		t.Error("HasFlag(limit) should be true")
	}
	if parser.HasFlag("nonexistent") {
		t.Error("HasFlag(nonexistent) should be false")
	}
}

func TestJoinPositionalArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		start int
		want  string
	}{
		{"joins all words", []string{"quiet", "mornings"}, 0, "quiet mornings"},
		{"skips flag value pairs", []string{"rain", "--limit", "5"}, 0, "rain"},
		{"joins from offset", []string{"show", "ent-42"}, 1, "ent-42"},
		{"empty input", []string{}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			got := JoinPositionalArgs(parser, tt.start)
			if got != tt.want {
				t.Errorf("JoinPositionalArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBoolFlags(t *testing.T) {
	t.Run("strips named flags before query words", func(t *testing.T) {
		raw, seen := ExtractBoolFlags([]string{"--semantic", "what", "changed"}, "semantic", "text")
		if !seen["semantic"] {
			t.Error("seen[semantic] = false, want true")
		}
		if seen["text"] {
			t.Error("seen[text] = true, want false")
		}
		if got := strings.Join(raw, " "); got != "what changed" {
			t.Errorf("filtered raw = %q, want %q", got, "what changed")
		}
	})

	t.Run("leaves other flags intact", func(t *testing.T) {
		raw, seen := ExtractBoolFlags([]string{"rain", "--limit", "5"}, "semantic")
		if len(seen) != 0 {
			t.Errorf("seen = %v, want empty", seen)
		}
		if got := strings.Join(raw, " "); got != "rain --limit 5" {
			t.Errorf("filtered raw = %q, want %q", got, "rain --limit 5")
		}
	})

	t.Run("query word matching a flag name survives", func(t *testing.T) {
		raw, _ := ExtractBoolFlags([]string{"text", "messages"}, "text")
		if got := strings.Join(raw, " "); got != "text messages" {
			t.Errorf("filtered raw = %q, want %q", got, "text messages")
		}
	})
}

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"serach", "search"},
		{"entires", "entries"},
		{"statsu", "status"},
		{"lok", "lock"},
		{"hepl", "help"},
		{"xyzzy", ""},
		{"a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SuggestCommand(tt.input); got != tt.want {
				t.Errorf("SuggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// PARSE BOOL STRING TESTS
// =============================================================================

func TestParseBoolString(t *testing.T) {
	trueValues := []string{"true", "TRUE", "True", "yes", "YES", "y", "Y", "1", "on", "ON"}
	falseValues := []string{"false", "FALSE", "False", "no", "NO", "n", "N", "0", "off", "OFF"}

	for _, v := range trueValues {
		t.Run("true_"+v, func(t *testing.T) {
			got, err := ParseBoolString(v)
			if err != nil {
				t.Errorf("ParseBoolString(%q) error = %v", v, err)
			}
			if !got {
				t.Errorf("ParseBoolString(%q) = false, want true", v)
			}
		})
	}

	for _, v := range falseValues {
		t.Run("false_"+v, func(t *testing.T) {
			got, err := ParseBoolString(v)
			if err != nil {
				t.Errorf("ParseBoolString(%q) error = %v", v, err)
			}
			if got {
				t.Errorf("ParseBoolString(%q) = true, want false", v)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseBoolString("maybe")
		if err == nil {
			t.Error("ParseBoolString(maybe) should error")
		}
	})
}

// =============================================================================
// PARSE INT WITH VALIDATION TESTS
// =============================================================================

func TestParseIntWithValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		field   string
		want    int
		wantErr bool
	}{
		{"valid positive", "42", "limit", 42, false},
		{"valid one", "1", "limit", 1, false},
		{"zero is invalid", "0", "limit", 0, true},
		{"negative is invalid", "-5", "limit", 0, true},
		{"empty is invalid", "", "limit", 0, true},
		{"non-numeric is invalid", "abc", "limit", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntWithValidation(tt.input, tt.field)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseIntWithValidation(%q, %q) error = %v, wantErr %v", tt.input, tt.field, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseIntWithValidation(%q, %q) = %d, want %d", tt.input, tt.field, got, tt.want)
			}
		})
	}
}

// =============================================================================
// INTEGRATION-STYLE TESTS (testing Parse() with os.Args simulation)
// =============================================================================

// TestParse_Integration tests the actual Parse() function by temporarily
// modifying os.Args. This is an integration test of the full CLI parsing.
func TestParse_Integration(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	tests := []struct {
		name        string
		args        []string
		wantCommand Command
		validate    func(*testing.T, Args)
	}{
		{
			name:        "bare invocation opens the TUI",
			args:        []string{"inkwell"},
			wantCommand: CmdTUI,
		},
		{
			name:        "ask joins the query words",
			args:        []string{"inkwell", "ask", "What", "did", "I", "write", "in", "March?"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "What did I write in March?" {
					t.Errorf("Query = %q, want %q", a.Query, "What did I write in March?")
				}
			},
		},
		{
			name:        "ask with persona flag",
			args:        []string{"inkwell", "ask", "-p", "sage", "Hello"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Persona != "sage" {
					t.Errorf("Persona = %q, want %q", a.Persona, "sage")
				}
				if a.Query != "Hello" {
					t.Errorf("Query = %q, want %q", a.Query, "Hello")
				}
			},
		},
		{
			name:        "ask with file flag",
			args:        []string{"inkwell", "ask", "--file", "notes.md", "Summarize", "this"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.File != "notes.md" {
					t.Errorf("File = %q, want %q", a.File, "notes.md")
				}
			},
		},
		{
			name:        "ask with session equals form",
			args:        []string{"inkwell", "ask", "--session=sess-1", "And", "then?"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.SessionID != "sess-1" {
					t.Errorf("SessionID = %q, want %q", a.SessionID, "sess-1")
				}
			},
		},
		{
			name:        "ask with quiet flag",
			args:        []string{"inkwell", "ask", "-q", "Question"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if !a.Quiet {
					t.Error("Quiet should be true")
				}
			},
		},
		{
			name:        "chat command",
			args:        []string{"inkwell", "chat"},
			wantCommand: CmdChat,
		},
		{
			name:        "chat resuming a session",
			args:        []string{"inkwell", "chat", "-s", "sess-9"},
			wantCommand: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.SessionID != "sess-9" {
					t.Errorf("SessionID = %q, want %q", a.SessionID, "sess-9")
				}
			},
		},
		{
			name:        "sessions subcommand",
			args:        []string{"inkwell", "sessions", "list"},
			wantCommand: CmdSessions,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "list" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "list")
				}
			},
		},
		{
			name:        "session singular alias",
			args:        []string{"inkwell", "session", "show", "sess-3"},
			wantCommand: CmdSessions,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "show" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "show")
				}
				if len(a.Raw) != 2 || a.Raw[1] != "sess-3" {
					t.Errorf("Raw = %v, want [show sess-3]", a.Raw)
				}
			},
		},
		{
			name:        "entries with leading flag keeps subcommand empty",
			args:        []string{"inkwell", "entries", "--limit", "5"},
			wantCommand: CmdEntries,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "" {
					t.Errorf("Subcommand = %q, want empty", a.Subcommand)
				}
			},
		},
		{
			name:        "find is an alias for search",
			args:        []string{"inkwell", "find", "rain"},
			wantCommand: CmdSearch,
			validate: func(t *testing.T, a Args) {
				if len(a.Raw) != 1 || a.Raw[0] != "rain" {
					t.Errorf("Raw = %v, want [rain]", a.Raw)
				}
			},
		},
		{
			name:        "analyze subcommand",
			args:        []string{"inkwell", "analyze", "run"},
			wantCommand: CmdAnalyze,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "run" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "run")
				}
			},
		},
		{
			name:        "personas command",
			args:        []string{"inkwell", "personas"},
			wantCommand: CmdPersonas,
		},
		{
			name:        "config set key value",
			args:        []string{"inkwell", "config", "set", "appearance.theme", "inkwell-light"},
			wantCommand: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "set" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "set")
				}
				if a.ConfigKey != "appearance.theme" {
					t.Errorf("ConfigKey = %q, want %q", a.ConfigKey, "appearance.theme")
				}
				if a.ConfigVal != "inkwell-light" {
					t.Errorf("ConfigVal = %q, want %q", a.ConfigVal, "inkwell-light")
				}
			},
		},
		{
			name:        "setup quick flag is not a subcommand",
			args:        []string{"inkwell", "setup", "--quick"},
			wantCommand: CmdSetup,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "" {
					t.Errorf("Subcommand = %q, want empty", a.Subcommand)
				}
				if len(a.Raw) != 1 || a.Raw[0] != "--quick" {
					t.Errorf("Raw = %v, want [--quick]", a.Raw)
				}
			},
		},
		{
			name:        "lock enable",
			args:        []string{"inkwell", "lock", "enable"},
			wantCommand: CmdLock,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "enable" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "enable")
				}
			},
		},
		{
			name:        "status short alias",
			args:        []string{"inkwell", "s"},
			wantCommand: CmdStatus,
		},
		{
			name:        "global json flag before command",
			args:        []string{"inkwell", "--json", "status"},
			wantCommand: CmdStatus,
			validate: func(t *testing.T, a Args) {
				if !a.JSON {
					t.Error("JSON should be true")
				}
			},
		},
		{
			name:        "global persona equals form without command",
			args:        []string{"inkwell", "--persona=poet"},
			wantCommand: CmdTUI,
			validate: func(t *testing.T, a Args) {
				if a.Persona != "poet" {
					t.Errorf("Persona = %q, want %q", a.Persona, "poet")
				}
			},
		},
		{
			name:        "version flag",
			args:        []string{"inkwell", "--version"},
			wantCommand: CmdVersion,
		},
		{
			name:        "help command",
			args:        []string{"inkwell", "help"},
			wantCommand: CmdHelp,
		},
		{
			name:        "unknown token falls back to the TUI with args restored",
			args:        []string{"inkwell", "journal"},
			wantCommand: CmdTUI,
			validate: func(t *testing.T, a Args) {
				if len(a.Raw) != 1 || a.Raw[0] != "journal" {
					t.Errorf("Raw = %v, want [journal]", a.Raw)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cmd, args := Parse()

			if cmd != tt.wantCommand {
				t.Errorf("Command = %v, want %v", cmd, tt.wantCommand)
			}

			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestArgParser_EmptyArgs(t *testing.T) {
	parser := NewArgParser([]string{})
	if parser.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", parser.Subcommand())
	}
	if parser.PositionalCount() != 0 {
		t.Errorf("PositionalCount() = %d, want 0", parser.PositionalCount())
	}
}

func TestArgParser_OnlyFlags(t *testing.T) {
	parser := NewArgParser([]string{"--favorite", "--json"})
	if parser.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", parser.Subcommand())
	}
	if !parser.BoolFlag("favorite") {
		t.Error("BoolFlag(favorite) should be true")
	}
	if !parser.BoolFlag("json") {
		t.Error("BoolFlag(json) should be true")
	}
}

func TestArgParser_FlagOrDefault(t *testing.T) {
	parser := NewArgParser([]string{"list", "--present", "value"})

	if parser.FlagOrDefault("present", "default") != "value" {
		t.Error("FlagOrDefault should return actual value when present")
	}
	if parser.FlagOrDefault("missing", "default") != "default" {
		t.Error("FlagOrDefault should return default when missing")
	}
}

// =============================================================================
// DISPLAY HELPER TESTS
// =============================================================================

func TestFormatCLIDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{3200 * time.Millisecond, "3.2s"},
		{95 * time.Second, "1m35s"},
		{61 * time.Minute, "1h1m"},
		{-time.Second, "0ms"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatCLIDuration(tt.d)
			if got != tt.want {
				t.Errorf("formatCLIDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{51200, "50.0 KB"},
		{1536 * 1024, "1.5 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.n)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, "never"},
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-48 * time.Hour), "2d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatRelativeTime(tt.t)
			if got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateLine(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"short stays", "morning pages", 20, "morning pages"},
		{"long gets ellipsis", "a very long first line of an entry", 16, "a very long f..."},
		{"newlines flatten", "first\nsecond", 20, "first second"},
		{"unicode safe", "café au lait, every day, forever", 10, "café au..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateLine(tt.s, tt.max)
			if got != tt.want {
				t.Errorf("truncateLine(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}
}

func TestFormatAnswerReferences(t *testing.T) {
	tests := []struct {
		name string
		refs []model.EntryReference
		want string
	}{
		{
			name: "empty",
			refs: nil,
			want: "",
		},
		{
			name: "titled with score",
			refs: []model.EntryReference{
				{Title: "Windy commute", Score: 0.82},
			},
			want: "drawing on: Windy commute (82%)",
		},
		{
			name: "untitled fallback",
			refs: []model.EntryReference{
				{Score: 0.5},
			},
			want: "drawing on: untitled entry (50%)",
		},
		{
			name: "multiple joined",
			refs: []model.EntryReference{
				{Title: "One", Score: 0.9},
				{Title: "Two"},
			},
			want: "drawing on: One (90%), Two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAnswerReferences(tt.refs)
			if got != tt.want {
				t.Errorf("formatAnswerReferences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	// Width 12 leaves 10 usable columns after the margin.
	got := WrapText("one two three four", 12)
	want := "one two\nthree four"
	if got != want {
		t.Errorf("WrapText() = %q, want %q", got, want)
	}

	// Existing newlines survive.
	got = WrapText("first\nsecond", 40)
	if got != "first\nsecond" {
		t.Errorf("WrapText() = %q, want %q", got, "first\nsecond")
	}
}

// =============================================================================
// CONFIG KEY HELPER TESTS
// =============================================================================

func TestNormalizeConfigKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"appearance.theme", "appearance.theme"},
		{"Backend.Base_URL", "backend.base_url"},
		{"backend_base_url", "backend.base_url"},
		{"log_level", "log.level"},
		{"chat_streaming", "chat.streaming"},
		{"unknownsection_field", "unknownsection_field"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := normalizeConfigKey(tt.in)
			if got != tt.want {
				t.Errorf("normalizeConfigKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsSecretConfigKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"backend.api_key", true},
		{"some.token", true},
		{"a.password", true},
		{"appearance.theme", false},
		{"backend.base_url", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := isSecretConfigKey(tt.key)
			if got != tt.want {
				t.Errorf("isSecretConfigKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfigBackendInfo_FractionalRateLimit(t *testing.T) {
	// rate_limit_rps is a float in the config file, so fractional rates
	// like 2.5 must survive into the JSON output unrounded.
	info := ConfigBackendInfo{BaseURL: "http://localhost:8000", RateLimitRPS: 2.5}
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"rate_limit_rps":2.5`) {
		t.Errorf("JSON = %s, want rate_limit_rps carried as 2.5", data)
	}
}

func TestMaskConfigSecret(t *testing.T) {
	if got := maskConfigSecret(""); got != "(not set)" {
		t.Errorf("maskConfigSecret(empty) = %q, want %q", got, "(not set)")
	}
	if got := maskConfigSecret("ENC:abcdef"); got != "(encrypted in vault)" {
		t.Errorf("maskConfigSecret(ciphertext) = %q, want %q", got, "(encrypted in vault)")
	}

	got := maskConfigSecret("ik-test-key-12345")
	if !strings.HasPrefix(got, "sha256:") || !strings.HasSuffix(got, "...") {
		t.Errorf("maskConfigSecret(plaintext) = %q, want sha256 fingerprint", got)
	}
	if strings.Contains(got, "ik-test") {
		t.Errorf("maskConfigSecret(plaintext) = %q leaks the key prefix", got)
	}
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil is success", nil, ExitSuccess},
		{"usage error", ErrMissingArgument("question", "inkwell ask ..."), ExitUsageError},
		{"tty required", &TTYRequiredError{Operation: "chat"}, ExitUsageError},
		{"plain error", os.ErrClosed, ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetExitCode(tt.err)
			if got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

// =============================================================================
// BENCHMARKS
// =============================================================================

func BenchmarkArgParser_Simple(b *testing.B) {
	args := []string{"search", "quiet", "mornings"}
	for i := 0; i < b.N; i++ {
		NewArgParser(args)
	}
}

func BenchmarkArgParser_Complex(b *testing.B) {
	args := []string{"list", "--tag", "work", "--favorite", "--limit", "10", "--from=2025-01-01", "extra"}
	for i := 0; i < b.N; i++ {
		NewArgParser(args)
	}
}
