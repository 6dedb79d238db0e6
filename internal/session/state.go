// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// CONTINUITY STATE
// =============================================================================

const (
	// StateFileName is the continuity file under the inkwell data directory.
	StateFileName = "state.json"

	// mockPrefix marks placeholder session ids written by demo and test
	// fixtures. They reference nothing on the backend, so a loaded state
	// carrying one starts a fresh chat instead.
	mockPrefix = "mock-"
)

// State is what survives between runs: which chat session to resume and
// any input the user typed but never sent.
type State struct {
	ActiveSessionID string    `json:"active_session_id,omitempty"`
	Draft           string    `json:"draft,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StatePath returns the default continuity file path (~/.inkwell/state.json).
func StatePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StateFileName), nil
}

// LoadState reads the continuity file at path. A missing file is a normal
// first run and returns a zero State. Placeholder session ids are cleared
// so they are never sent to the backend.
func LoadState(path string) (State, error) {
	var st State

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return st, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("failed to parse state file: %w", err)
	}

	if strings.HasPrefix(st.ActiveSessionID, mockPrefix) {
		st.ActiveSessionID = ""
	}

	return st, nil
}

// SaveState writes the continuity file atomically. The file is 0600: the
// session id keys into the user's journal conversations.
func SaveState(path string, st State) error {
	st.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
