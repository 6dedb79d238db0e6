// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
)

// =============================================================================
// LLM CONFIGURATION
// =============================================================================

// LLMConfig is the backend's language model configuration as reported
// to clients. The provider API key itself is never returned; KeySet
// reports whether one is stored.
type LLMConfig struct {
	Provider       string  `json:"provider"`
	Model          string  `json:"model"`
	BaseURL        string  `json:"base_url,omitempty"`
	EmbeddingModel string  `json:"embedding_model,omitempty"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	KeySet         bool    `json:"key_set"`
}

// LLMConfigUpdate carries partial LLM configuration changes. Nil fields
// are left unchanged; APIKey is write-only.
type LLMConfigUpdate struct {
	Provider       *string  `json:"provider,omitempty"`
	Model          *string  `json:"model,omitempty"`
	BaseURL        *string  `json:"base_url,omitempty"`
	EmbeddingModel *string  `json:"embedding_model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	APIKey         *string  `json:"api_key,omitempty"`
}

// LLMTestResult reports the outcome of a connection probe against the
// configured provider.
type LLMTestResult struct {
	OK        bool   `json:"ok"`
	Model     string `json:"model,omitempty"`
	LatencyMS int    `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GetLLMConfig reads the backend's LLM configuration.
func (c *Client) GetLLMConfig(ctx context.Context) (*LLMConfig, error) {
	var cfg LLMConfig
	if err := c.do(ctx, http.MethodGet, "/api/config/llm", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateLLMConfig applies partial LLM configuration changes and returns
// the resulting configuration.
func (c *Client) UpdateLLMConfig(ctx context.Context, update LLMConfigUpdate) (*LLMConfig, error) {
	var cfg LLMConfig
	if err := c.do(ctx, http.MethodPut, "/api/config/llm", update, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TestLLMConnection asks the backend to probe its configured provider
// with a minimal request and report the result.
func (c *Client) TestLLMConnection(ctx context.Context) (*LLMTestResult, error) {
	var result LLMTestResult
	if err := c.do(ctx, http.MethodPost, "/api/config/llm/test", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
