// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the inkwell journal backend.
//
// The backend exposes chat sessions, journal entries, search, batch
// analysis, personas, and LLM configuration over JSON/HTTP, plus a
// streaming chat endpoint that frames assistant output as
// "data: <payload>\n\n" records. This package implements secure
// communication with that API including retry logic and rate limiting.
//
// # Key Types
//
//   - Client: HTTP client with TLS, retry, and rate-limit support
//   - Stream: incremental reader for the streaming chat endpoint
//   - StreamEvent: one classified record from a chat stream
//   - SendRequest: a user turn submitted to the chat endpoints
//
// # Usage
//
// Create a client and send a chat turn over the streaming endpoint:
//
//	client := api.NewClient().WithBaseURL("http://localhost:8000")
//	stream, err := client.StreamMessage(ctx, api.SendRequest{
//	    SessionID: sessionID,
//	    Content:   "What did I write about last week?",
//	})
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	for {
//	    ev, err := stream.Next()
//	    if err != nil {
//	        break
//	    }
//	    // handle ev
//	}
//
// Streaming requests are never retried by this package; the turn layer
// owns the single non-streaming fallback. Non-streaming requests retry
// transient failures with exponential backoff.
//
// # Security
//
// API keys are never logged; request logging records method, path,
// status, and duration only. All requests use TLS 1.2+ when the
// backend is reached over HTTPS, and response bodies are size-capped.
package api
