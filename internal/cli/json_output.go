// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripted use of the inkwell CLI.
//
// Every command that supports --json emits the same envelope, so a
// script can check .success before touching .data regardless of which
// command produced the output.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the envelope for all --json command output.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that produced the output
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout. Human-readable notes go
// to stderr when JSON mode is on, never mixed into stdout.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// OutputJSON runs handler and prints its result inside the JSON
// envelope when jsonMode is true. When jsonMode is false the handler
// runs for its side effects (text printing) alone.
func OutputJSON(jsonMode bool, command string, handler func() (interface{}, error)) error {
	if !jsonMode {
		_, err := handler()
		return err
	}

	data, err := handler()
	if err != nil {
		resp := NewJSONErrorResponse(command, err)
		resp.Print()
		return err
	}

	resp := NewJSONResponse(command, data)
	return resp.Print()
}

// StderrPrintln prints a line to stderr, for human-readable notes that
// must not pollute JSON stdout.
func StderrPrintln(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData is the payload of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

// StatusData is the payload of the status command.
type StatusData struct {
	Backend StatusBackendInfo `json:"backend"`
	LLM     StatusLLMInfo     `json:"llm"`
	Journal StatusJournalInfo `json:"journal"`
	Local   StatusLocalInfo   `json:"local"`
}

// StatusBackendInfo describes backend connectivity.
type StatusBackendInfo struct {
	BaseURL   string `json:"base_url"`
	Reachable bool   `json:"reachable"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	APIKey    string `json:"api_key"`
	Error     string `json:"error,omitempty"`
}

// StatusLLMInfo describes the language model behind the backend.
type StatusLLMInfo struct {
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	OK        bool   `json:"ok"`
	LatencyMS int    `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StatusJournalInfo counts what lives on the backend.
type StatusJournalInfo struct {
	Entries  int `json:"entries"`
	Sessions int `json:"sessions"`
	Tags     int `json:"tags"`
}

// StatusLocalInfo describes local state on this machine.
type StatusLocalInfo struct {
	ConfigPath    string `json:"config_path"`
	CachedEntries int    `json:"cached_entries"`
	LockEnabled   bool   `json:"lock_enabled"`
}

// ConfigData is the payload of config show (API key masked).
type ConfigData struct {
	Backend    ConfigBackendInfo    `json:"backend"`
	Chat       ConfigChatInfo       `json:"chat"`
	Appearance ConfigAppearanceInfo `json:"appearance"`
	Editor     ConfigEditorInfo     `json:"editor"`
	Search     ConfigSearchInfo     `json:"search"`
	Log        ConfigLogInfo        `json:"log"`
	Lock       ConfigLockInfo       `json:"lock"`
	Path       string               `json:"config_path"`
}

// ConfigBackendInfo mirrors the [backend] section.
type ConfigBackendInfo struct {
	BaseURL      string  `json:"base_url"`
	APIKeySet    bool    `json:"api_key_configured"`
	APIKeyVault  bool    `json:"api_key_encrypted"`
	TimeoutSecs  int     `json:"timeout_secs"`
	MaxRetries   int     `json:"max_retries"`
	RateLimitRPS float64 `json:"rate_limit_rps"`
}

// ConfigChatInfo mirrors the [chat] section.
type ConfigChatInfo struct {
	Streaming        bool   `json:"streaming"`
	DefaultPersonaID string `json:"default_persona_id,omitempty"`
	TextSize         string `json:"text_size"`
}

// ConfigAppearanceInfo mirrors the [appearance] section.
type ConfigAppearanceInfo struct {
	Theme         string `json:"theme"`
	MarkdownWidth int    `json:"markdown_width"`
}

// ConfigEditorInfo mirrors the [editor] section.
type ConfigEditorInfo struct {
	Command string `json:"command,omitempty"`
}

// ConfigSearchInfo mirrors the [search] section.
type ConfigSearchInfo struct {
	Semantic bool `json:"semantic"`
	PageSize int  `json:"page_size"`
}

// ConfigLogInfo mirrors the [log] section.
type ConfigLogInfo struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"`
}

// ConfigLockInfo mirrors the [lock] section.
type ConfigLockInfo struct {
	Enabled bool   `json:"enabled"`
	Issuer  string `json:"issuer,omitempty"`
}
