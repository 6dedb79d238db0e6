// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// SEARCH
// =============================================================================

// SearchOptions filters a search request. The zero value searches all
// entries by text match.
type SearchOptions struct {
	Tags     []string  // all listed tags must be present
	From     time.Time // entries created at or after
	To       time.Time // entries created at or before
	Favorite *bool     // nil means both
	Semantic bool      // use the embedding-based endpoint
	Page     int
	PerPage  int
}

// SearchResult is one search hit. Score is only populated by the
// semantic endpoint; text search returns hits in recency order.
type SearchResult struct {
	Entry   model.Entry `json:"entry"`
	Score   float64     `json:"score,omitempty"`
	Snippet string      `json:"snippet,omitempty"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// HasMore reports whether pages remain after this one.
func (p *SearchPage) HasMore() bool {
	return p.Page*p.PerPage < p.Total
}

// searchRequest is the wire shape of a search call.
type searchRequest struct {
	Query    string   `json:"query"`
	Tags     []string `json:"tags,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Favorite *bool    `json:"favorite,omitempty"`
	Page     int      `json:"page"`
	PerPage  int      `json:"per_page"`
}

// SearchEntries searches journal entries. The semantic toggle selects
// between the text-match and embedding-similarity endpoints; both
// accept the same filters and return the same page shape.
func (c *Client) SearchEntries(ctx context.Context, query string, opts SearchOptions) (*SearchPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 20
	}

	req := searchRequest{
		Query:    query,
		Tags:     opts.Tags,
		Favorite: opts.Favorite,
		Page:     opts.Page,
		PerPage:  opts.PerPage,
	}
	if !opts.From.IsZero() {
		req.From = opts.From.Format(time.RFC3339)
	}
	if !opts.To.IsZero() {
		req.To = opts.To.Format(time.RFC3339)
	}

	path := "/api/search/text"
	if opts.Semantic {
		path = "/api/search/semantic"
	}

	var page SearchPage
	if err := c.do(ctx, http.MethodPost, path, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
