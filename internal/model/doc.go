// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for journal chat and entries.
//
// This package defines the core domain types used throughout the application
// for representing chat sessions, messages, journal entries, personas, and
// batch analyses. All types mirror the JSON the backend serves; the client
// never owns a wire format of its own.
//
// # Key Types
//
//   - Session: a persisted conversation thread with the assistant
//   - Message: single message with role, content, references, tool usage
//   - EntryReference: pointer from an assistant message to a journal entry
//   - ToolUsage: record of a retrieval/search operation the backend ran
//   - Entry: a journal entry with tags, folder, mood, and attachments
//   - Persona: a named system-prompt profile a session may reference
//   - BatchAnalysis: result of analyzing a group of entries
//
// # Usage
//
// Create a local user message for immediate display:
//
//	msg := model.NewUserMessage(sessionID, "What did I write about spring?")
//
// Create a streaming assistant message and feed it fragments:
//
//	msg := model.NewAssistantMessage(sessionID)
//	msg.AppendFragment("Hello")
//	msg.FinalizeStream(stats)
package model
