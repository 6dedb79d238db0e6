// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat view.
package commands

import (
	"strings"
	"testing"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/storage"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/load sess-42", true},
		{"  /help", true},
		{"wrote about the garden today", false},
		{"see /help for details", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		got := IsCommand(tc.input)
		if got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{"/load sess-42", "/load"},
		{"/rename A quieter title", "/rename"},
		{"  /help  ", "/help"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		got := ExtractCommandName(tc.input)
		if got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGetPartialCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/se", "/se"},
		{"/search", "/search"},
		{"/search ", ""},
		{"/load sess-42", ""},
		{"hello", ""},
	}

	for _, tc := range tests {
		got := GetPartialCommand(tc.input)
		if got != tc.want {
			t.Errorf("GetPartialCommand(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGetPartialArg(t *testing.T) {
	tests := []struct {
		input    string
		wantIdx  int
		wantPart string
	}{
		{"/help", 0, ""},
		{"/load ", 0, ""},
		{"/load ses", 0, "ses"},
		{"/rename My Day", 1, "Day"},
		{"/rename My Day ", 2, ""},
	}

	for _, tc := range tests {
		gotIdx, gotPart := GetPartialArg(tc.input)
		if gotIdx != tc.wantIdx || gotPart != tc.wantPart {
			t.Errorf("GetPartialArg(%q) = (%d, %q), want (%d, %q)",
				tc.input, gotIdx, gotPart, tc.wantIdx, tc.wantPart)
		}
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/help", []string{"/help"}},
		{"/load sess-42", []string{"/load", "sess-42"}},
		{`/rename "A quiet week"`, []string{"/rename", "A quiet week"}},
		{`/rename 'A quiet week'`, []string{"/rename", "A quiet week"}},
		{"/config chat.text_size large", []string{"/config", "chat.text_size", "large"}},
		{`/search "say \"hi\""`, []string{"/search", `say "hi"`}},
	}

	for _, tc := range tests {
		got := ParseArgs(tc.input)
		if len(got) != len(tc.want) {
			t.Errorf("ParseArgs(%q) = %v, want %v", tc.input, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ParseArgs(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.want[i])
			}
		}
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if len(r.commands) == 0 {
		t.Error("Registry should have built-in commands")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	cmd := &Command{
		Name:        "/test",
		Aliases:     []string{"/t"},
		Description: "Test command",
	}

	r.Register(cmd)

	if r.Get("/test") == nil {
		t.Error("Should get command by name")
	}

	if r.Get("/t") == nil {
		t.Error("Should get command by alias")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	if r.Get("/help") == nil {
		t.Error("/help command should exist")
	}

	if r.Get("/h") == nil {
		t.Error("/h alias should resolve to /help")
	}

	if r.Get("/?") == nil {
		t.Error("/? alias should resolve to /help")
	}

	if r.Get("/nonexistent") != nil {
		t.Error("/nonexistent should return nil")
	}
}

func TestRegistry_All(t *testing.T) {
	r := NewRegistry()
	all := r.All()

	if len(all) == 0 {
		t.Error("All() should return commands")
	}

	found := make(map[string]bool)
	for _, cmd := range all {
		found[cmd.Name] = true
	}

	essentials := []string{
		"/help", "/quit", "/new", "/sessions", "/load", "/rename",
		"/delete", "/persona", "/search", "/entries", "/analyze",
		"/theme", "/config", "/copy", "/export", "/retry", "/reset",
		"/lock", "/status",
	}
	for _, name := range essentials {
		if !found[name] {
			t.Errorf("Command %s not found in All()", name)
		}
	}
}

func TestRegistry_ByCategory(t *testing.T) {
	r := NewRegistry()
	byCategory := r.ByCategory()

	expectedCategories := []string{"Navigation", "Conversation", "Journal", "Settings"}
	for _, cat := range expectedCategories {
		if _, ok := byCategory[cat]; !ok {
			t.Errorf("Expected category %q not found", cat)
		}
	}

	for _, cmds := range byCategory {
		for _, cmd := range cmds {
			if cmd.Hidden {
				t.Errorf("Hidden command %s should not appear in ByCategory()", cmd.Name)
			}
		}
	}
}

// =============================================================================
// PARSE RESULT TESTS
// =============================================================================

func TestParser_Parse(t *testing.T) {
	r := NewRegistry()
	p := NewParser(r)

	tests := []struct {
		input     string
		isCommand bool
		cmdName   string
		argsLen   int
	}{
		{"/help", true, "/help", 0},
		{"/load sess-42", true, "/load", 1},
		{"thinking about the week", false, "", 0},
		{"/nonexistent", true, "/nonexistent", 0},
		{`/rename "A quiet week"`, true, "/rename", 1},
		{"/config chat.streaming false", true, "/config", 2},
	}

	for _, tc := range tests {
		result := p.Parse(tc.input)

		if result.IsCommand != tc.isCommand {
			t.Errorf("Parse(%q).IsCommand = %v, want %v", tc.input, result.IsCommand, tc.isCommand)
		}

		if result.CommandName != tc.cmdName {
			t.Errorf("Parse(%q).CommandName = %q, want %q", tc.input, result.CommandName, tc.cmdName)
		}

		if len(result.Args) != tc.argsLen {
			t.Errorf("Parse(%q) args length = %d, want %d", tc.input, len(result.Args), tc.argsLen)
		}
	}
}

func TestParser_Parse_CommandLookup(t *testing.T) {
	r := NewRegistry()
	p := NewParser(r)

	result := p.Parse("/help")
	if result.Command == nil {
		t.Error("Parse(/help).Command should not be nil")
	}

	result = p.Parse("/h")
	if result.Command == nil {
		t.Error("Parse(/h).Command should not be nil (alias)")
	}

	result = p.Parse("/nonexistent")
	if result.Command != nil {
		t.Error("Parse(/nonexistent).Command should be nil")
	}
}

func TestParser_Parse_RawArgs(t *testing.T) {
	r := NewRegistry()
	p := NewParser(r)

	result := p.Parse(`/rename "A quiet week"`)
	if result.RawArgs != `"A quiet week"` {
		t.Errorf("RawArgs = %q, want %q", result.RawArgs, `"A quiet week"`)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidateArgs(t *testing.T) {
	cmdWithRequired := &Command{
		Name: "/test",
		Args: []ArgDef{
			{Name: "required_arg", Required: true, Description: "A required argument"},
		},
	}

	if err := ValidateArgs(cmdWithRequired, []string{}); err == nil {
		t.Error("ValidateArgs should return error for missing required argument")
	}

	if err := ValidateArgs(cmdWithRequired, []string{"value"}); err != nil {
		t.Errorf("ValidateArgs should not error when required argument provided: %v", err)
	}

	cmdWithEnum := &Command{
		Name: "/theme",
		Args: []ArgDef{
			{Name: "name", Required: true, Type: ArgTypeEnum, Values: []string{"inkwell-dark", "inkwell-light"}},
		},
	}

	if err := ValidateArgs(cmdWithEnum, []string{"inkwell-dark"}); err != nil {
		t.Errorf("ValidateArgs should accept valid enum value: %v", err)
	}

	if err := ValidateArgs(cmdWithEnum, []string{"solarized"}); err == nil {
		t.Error("ValidateArgs should reject invalid enum value")
	}

	if err := ValidateArgs(cmdWithEnum, []string{"INKWELL-DARK"}); err != nil {
		t.Errorf("ValidateArgs should accept case-insensitive enum: %v", err)
	}

	if err := ValidateArgs(nil, []string{"anything"}); err != nil {
		t.Errorf("ValidateArgs(nil) should not error: %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Command:  "/theme",
		Arg:      "name",
		Message:  "invalid value",
		Got:      "solarized",
		Expected: "inkwell-dark, inkwell-light",
	}

	errStr := err.Error()
	if errStr == "" {
		t.Fatal("Error() should return non-empty string")
	}

	for _, s := range []string{"/theme", "name", "invalid value", "solarized", "inkwell-dark, inkwell-light"} {
		if !strings.Contains(errStr, s) {
			t.Errorf("Error() should contain %q, got: %s", s, errStr)
		}
	}
}

// =============================================================================
// CONTEXT TESTS
// =============================================================================

func TestNewContext(t *testing.T) {
	ctx := NewContext(nil, nil, nil, nil, nil)
	if ctx == nil {
		t.Fatal("NewContext() returned nil")
	}
}

func TestContext_NilSafe(t *testing.T) {
	ctx := NewContext(nil, nil, nil, nil, nil)
	ctx.RecordActivity()
	ctx.MarkDirty()
}

// =============================================================================
// ARGTYPE TESTS
// =============================================================================

func TestArgType_Values(t *testing.T) {
	types := []ArgType{
		ArgTypeString,
		ArgTypeSession,
		ArgTypePersona,
		ArgTypeTag,
		ArgTypeEnum,
		ArgTypeConfig,
	}

	for i, at := range types {
		if int(at) != i {
			t.Errorf("ArgType constant %d has unexpected value %d", i, at)
		}
	}
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

// Handlers that stay local run synchronously when the returned tea.Cmd
// is invoked, so tests execute them directly.

func TestHandleHelp_Topic(t *testing.T) {
	cmd := HandleHelp(nil, []string{"journal"})
	msg, ok := cmd().(ShowHelpMsg)
	if !ok {
		t.Fatalf("HandleHelp returned %T, want ShowHelpMsg", cmd())
	}
	if msg.Topic != "journal" {
		t.Errorf("Topic = %q, want %q", msg.Topic, "journal")
	}
}

func TestHandleNew(t *testing.T) {
	cmd := HandleNew(nil, nil)
	if _, ok := cmd().(NewSessionMsg); !ok {
		t.Errorf("HandleNew returned %T, want NewSessionMsg", cmd())
	}
}

func TestHandleCopyRetryReset(t *testing.T) {
	if _, ok := HandleCopy(nil, nil)().(CopyRequestMsg); !ok {
		t.Error("HandleCopy should produce CopyRequestMsg")
	}
	if _, ok := HandleRetry(nil, nil)().(RetryRequestMsg); !ok {
		t.Error("HandleRetry should produce RetryRequestMsg")
	}
	if _, ok := HandleReset(nil, nil)().(ResetRequestMsg); !ok {
		t.Error("HandleReset should produce ResetRequestMsg")
	}
}

func TestHandleExport_Formats(t *testing.T) {
	msg, ok := HandleExport(nil, nil)().(ExportRequestMsg)
	if !ok {
		t.Fatal("HandleExport with no args should produce ExportRequestMsg")
	}
	if msg.Format != storage.FormatMarkdown {
		t.Errorf("default format = %q, want %q", msg.Format, storage.FormatMarkdown)
	}

	msg, ok = HandleExport(nil, []string{"json"})().(ExportRequestMsg)
	if !ok {
		t.Fatal("HandleExport(json) should produce ExportRequestMsg")
	}
	if msg.Format != storage.FormatJSON {
		t.Errorf("format = %q, want %q", msg.Format, storage.FormatJSON)
	}

	if _, ok := HandleExport(nil, []string{"xml"})().(ErrorMsg); !ok {
		t.Error("HandleExport(xml) should produce ErrorMsg")
	}
}

func TestHandleTheme_SetsConfig(t *testing.T) {
	cfg := config.Default()
	ctx := NewContext(cfg, nil, nil, nil, nil)

	msg, ok := HandleTheme(ctx, []string{"light"})().(ThemeChangedMsg)
	if !ok {
		t.Fatal("HandleTheme(light) should produce ThemeChangedMsg")
	}
	if msg.Theme != "inkwell-light" {
		t.Errorf("Theme = %q, want %q", msg.Theme, "inkwell-light")
	}
	if cfg.Appearance.Theme != "inkwell-light" {
		t.Errorf("config theme = %q, want %q", cfg.Appearance.Theme, "inkwell-light")
	}

	if _, ok := HandleTheme(ctx, []string{"solarized"})().(ErrorMsg); !ok {
		t.Error("HandleTheme(solarized) should produce ErrorMsg")
	}
}

func TestHandleTheme_ShowsCurrent(t *testing.T) {
	cfg := config.Default()
	ctx := NewContext(cfg, nil, nil, nil, nil)

	msg, ok := HandleTheme(ctx, nil)().(SystemNoticeMsg)
	if !ok {
		t.Fatal("HandleTheme with no args should produce SystemNoticeMsg")
	}
	if !strings.Contains(msg.Content, "inkwell-dark") {
		t.Errorf("notice %q should name the current theme", msg.Content)
	}
}

func TestHandleConfig_GetSet(t *testing.T) {
	cfg := config.Default()
	ctx := NewContext(cfg, nil, nil, nil, nil)

	show, ok := HandleConfig(ctx, []string{"appearance.theme"})().(ShowConfigMsg)
	if !ok {
		t.Fatal("HandleConfig(key) should produce ShowConfigMsg")
	}
	if show.Value != "inkwell-dark" {
		t.Errorf("Value = %q, want %q", show.Value, "inkwell-dark")
	}

	update, ok := HandleConfig(ctx, []string{"chat.text_size", "large"})().(ConfigUpdateMsg)
	if !ok {
		t.Fatal("HandleConfig(key, value) should produce ConfigUpdateMsg")
	}
	if update.Error != nil {
		t.Fatalf("ConfigUpdateMsg.Error = %v", update.Error)
	}
	if update.OldValue != "medium" || update.Value != "large" {
		t.Errorf("update = %v -> %v, want medium -> large", update.OldValue, update.Value)
	}
	if cfg.Chat.TextSize != "large" {
		t.Errorf("config text size = %q, want %q", cfg.Chat.TextSize, "large")
	}

	if _, ok := HandleConfig(ctx, []string{"no.such.key"})().(ErrorMsg); !ok {
		t.Error("HandleConfig with unknown key should produce ErrorMsg")
	}

	badSet, ok := HandleConfig(ctx, []string{"search.page_size", "not-a-number"})().(ConfigUpdateMsg)
	if !ok {
		t.Fatal("HandleConfig bad set should produce ConfigUpdateMsg")
	}
	if badSet.Error == nil {
		t.Error("setting a non-numeric page size should error")
	}
}

func TestHandleRename_RequiresTitleAndSession(t *testing.T) {
	if _, ok := HandleRename(nil, nil)().(ErrorMsg); !ok {
		t.Error("HandleRename with no args should produce ErrorMsg")
	}

	// A client but no active session.
	ctx := NewContext(config.Default(), api.NewClient(), nil, nil, nil)
	msg, ok := HandleRename(ctx, []string{"New", "title"})().(ErrorMsg)
	if !ok {
		t.Fatal("HandleRename without an active session should produce ErrorMsg")
	}
	if msg.Title != "No active session" {
		t.Errorf("Title = %q, want %q", msg.Title, "No active session")
	}
}

func TestHandleSearch_RequiresQuery(t *testing.T) {
	msg, ok := HandleSearch(nil, nil)().(ErrorMsg)
	if !ok {
		t.Fatal("HandleSearch with no args should produce ErrorMsg")
	}
	if !strings.Contains(msg.Tip, "/search <query>") {
		t.Errorf("Tip = %q, should show usage", msg.Tip)
	}
}

func TestHandleLock_StatusAndNow(t *testing.T) {
	status, ok := HandleLock(nil, nil)().(LockStatusMsg)
	if !ok {
		t.Fatal("HandleLock should produce LockStatusMsg")
	}
	if status.Enabled || status.Enrolled {
		t.Error("nil context should report a disabled, unenrolled lock")
	}

	if _, ok := HandleLock(nil, []string{"now"})().(ErrorMsg); !ok {
		t.Error("HandleLock(now) without enrollment should produce ErrorMsg")
	}
}

func TestHandleSessions_NoClient(t *testing.T) {
	msg, ok := HandleSessions(nil, nil)().(ErrorMsg)
	if !ok {
		t.Fatal("HandleSessions without a client should produce ErrorMsg")
	}
	if msg.Title != "Backend not configured" {
		t.Errorf("Title = %q, want %q", msg.Title, "Backend not configured")
	}
}

// =============================================================================
// HELP TEXT TESTS
// =============================================================================

func TestGenerateHelpText_Quick(t *testing.T) {
	r := NewRegistry()

	text := GenerateHelpText(r, "")
	for _, want := range []string{"/help", "/quit", "Ctrl+C", "Tab"} {
		if !strings.Contains(text, want) {
			t.Errorf("quick help should contain %q", want)
		}
	}
}

func TestGenerateHelpText_Category(t *testing.T) {
	r := NewRegistry()

	text := GenerateHelpText(r, "journal")
	for _, want := range []string{"/search", "/entries", "/analyze"} {
		if !strings.Contains(text, want) {
			t.Errorf("journal help should contain %q", want)
		}
	}
	if strings.Contains(text, "/quit") {
		t.Error("journal help should not list navigation commands")
	}
}

func TestGenerateHelpText_All(t *testing.T) {
	r := NewRegistry()

	text := GenerateHelpText(r, "all")
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		if !strings.Contains(text, cmd.Name) {
			t.Errorf("full help should contain %s", cmd.Name)
		}
	}
}
