// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// BATCH ANALYSIS
// =============================================================================

// Analysis prompt types accepted by the backend.
const (
	AnalysisSummary  = "summary"
	AnalysisThemes   = "themes"
	AnalysisMood     = "mood"
	AnalysisInsights = "insights"
)

// ErrNoEntries indicates an analysis request with an empty entry set.
var ErrNoEntries = errors.New("no entries selected")

// createAnalysisRequest is the wire shape of an analysis submission.
type createAnalysisRequest struct {
	EntryIDs   []string `json:"entry_ids"`
	Title      string   `json:"title"`
	PromptType string   `json:"prompt_type"`
}

// CreateBatchAnalysis submits a set of entries for analysis. The
// backend runs the analysis synchronously for small sets and returns a
// pending record with an id for larger ones; either way the returned
// analysis can be refetched by id.
func (c *Client) CreateBatchAnalysis(ctx context.Context, entryIDs []string, title, promptType string) (*model.BatchAnalysis, error) {
	if len(entryIDs) == 0 {
		return nil, ErrNoEntries
	}
	if promptType == "" {
		promptType = AnalysisSummary
	}

	req := createAnalysisRequest{
		EntryIDs:   entryIDs,
		Title:      title,
		PromptType: promptType,
	}
	var analysis model.BatchAnalysis
	if err := c.do(ctx, http.MethodPost, "/api/analysis", req, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetBatchAnalysis fetches one analysis by id.
func (c *Client) GetBatchAnalysis(ctx context.Context, id string) (*model.BatchAnalysis, error) {
	var analysis model.BatchAnalysis
	path := "/api/analysis/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// analysesEnvelope wraps the analysis list response.
type analysesEnvelope struct {
	Analyses []*model.BatchAnalysis `json:"analyses"`
}

// ListBatchAnalyses returns all stored analyses, newest first.
func (c *Client) ListBatchAnalyses(ctx context.Context) ([]*model.BatchAnalysis, error) {
	var env analysesEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/analysis", nil, &env); err != nil {
		return nil, err
	}
	return env.Analyses, nil
}
