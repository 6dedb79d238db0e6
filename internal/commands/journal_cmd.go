// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat view.
package commands

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/storage"
)

// =============================================================================
// JOURNAL MESSAGES
// =============================================================================

// SearchResultsMsg carries one page of entry search results. Offline is
// set when the results came from the local mirror instead of the backend.
type SearchResultsMsg struct {
	Query   string
	Page    *api.SearchPage
	Offline bool
	Error   error
}

// EntryListMsg carries one page of journal entries for the browser.
type EntryListMsg struct {
	Tag     string
	Page    *api.EntryPage
	Offline bool
	Error   error
}

// AnalysisListMsg carries the saved batch analyses.
type AnalysisListMsg struct {
	Analyses []*model.BatchAnalysis
	Error    error
}

// =============================================================================
// /SEARCH COMMAND
// =============================================================================

// HandleSearch searches journal entries. The backend is tried first;
// when it is unreachable the local entry mirror answers instead, so a
// dead backend degrades search rather than killing it.
func HandleSearch(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return usageError("/search", "/search <query>", "a query is required")
	}

	query := strings.Join(args, " ")

	var (
		client   *api.Client
		cache    *storage.EntryCache
		semantic bool
		perPage  int
	)
	if ctx != nil {
		client = ctx.Client
		cache = ctx.Cache
		if ctx.Config != nil {
			semantic = ctx.Config.Search.Semantic
			perPage = ctx.Config.Search.PageSize
		}
	}

	return func() tea.Msg {
		var remoteErr error

		if client != nil {
			reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
			page, err := client.SearchEntries(reqCtx, query, api.SearchOptions{
				Semantic: semantic,
				PerPage:  perPage,
			})
			cancel()

			if err == nil {
				return SearchResultsMsg{Query: query, Page: page}
			}
			remoteErr = err
		}

		// RELIABILITY: the mirror only does text match, so a semantic
		// query silently downgrades while offline.
		if cache != nil {
			entries, err := cache.Search(query, perPage)
			if err == nil {
				return SearchResultsMsg{Query: query, Page: localSearchPage(entries), Offline: true}
			}
			if remoteErr == nil {
				remoteErr = err
			}
		}

		if remoteErr == nil {
			remoteErr = errors.New("no backend configured and no local cache")
		}
		return SearchResultsMsg{Query: query, Error: remoteErr}
	}
}

// localSearchPage wraps cached entries in the shape the search overlay
// renders. Scores stay zero; the mirror returns hits in recency order.
func localSearchPage(entries []*model.Entry) *api.SearchPage {
	results := make([]api.SearchResult, len(entries))
	for i, e := range entries {
		results[i] = api.SearchResult{Entry: *e}
	}
	return &api.SearchPage{
		Results: results,
		Total:   len(results),
		Page:    1,
		PerPage: len(results),
	}
}

// =============================================================================
// /ENTRIES COMMAND
// =============================================================================

// HandleEntries opens the entry browser, optionally filtered by tag.
// Fresh listings also refresh the local mirror so later offline reads
// see current entries.
func HandleEntries(ctx *Context, args []string) tea.Cmd {
	tag := ""
	if len(args) > 0 {
		tag = args[0]
	}

	var (
		client  *api.Client
		cache   *storage.EntryCache
		perPage int
	)
	if ctx != nil {
		client = ctx.Client
		cache = ctx.Cache
		if ctx.Config != nil {
			perPage = ctx.Config.Search.PageSize
		}
	}

	return func() tea.Msg {
		var remoteErr error

		if client != nil {
			reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
			page, err := client.ListEntries(reqCtx, api.EntryListOptions{
				Tag:     tag,
				PerPage: perPage,
			})
			cancel()

			if err == nil {
				if cache != nil {
					// Mirror refresh failure is not worth failing the
					// listing over.
					_ = cache.PutAll(page.Entries)
				}
				return EntryListMsg{Tag: tag, Page: page}
			}
			remoteErr = err
		}

		if cache != nil {
			entries, err := cache.List(perPage)
			if err == nil {
				if tag != "" {
					entries = filterByTag(entries, tag)
				}
				return EntryListMsg{Tag: tag, Page: localEntryPage(entries), Offline: true}
			}
			if remoteErr == nil {
				remoteErr = err
			}
		}

		if remoteErr == nil {
			remoteErr = errors.New("no backend configured and no local cache")
		}
		return EntryListMsg{Tag: tag, Error: remoteErr}
	}
}

// filterByTag keeps entries carrying the tag, case-insensitively.
func filterByTag(entries []*model.Entry, tag string) []*model.Entry {
	var out []*model.Entry
	for _, e := range entries {
		for _, t := range e.Tags {
			if strings.EqualFold(t, tag) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// localEntryPage wraps cached entries as a single-page listing.
func localEntryPage(entries []*model.Entry) *api.EntryPage {
	return &api.EntryPage{
		Entries: entries,
		Total:   len(entries),
		Page:    1,
		PerPage: len(entries),
	}
}

// =============================================================================
// /ANALYZE COMMAND
// =============================================================================

// HandleAnalyze fetches saved batch analyses and opens the analysis
// view. Analyses are produced server-side, so there is no offline path.
func HandleAnalyze(ctx *Context, args []string) tea.Cmd {
	if ctx == nil || ctx.Client == nil {
		return notConnected("/analyze")
	}

	client := ctx.Client
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		analyses, err := client.ListBatchAnalyses(reqCtx)
		return AnalysisListMsg{Analyses: analyses, Error: err}
	}
}
