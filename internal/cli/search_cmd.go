// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// search_cmd.go - Journal search command for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: search
// Short:   Search journal entries
//
// Examples:
//   inkwell search morning pages               Text search
//   inkwell search --semantic "feeling stuck"  Meaning-based search
//   inkwell search --tag work deadline         Tag plus words
//   inkwell search --from 2025-01-01 winter    Date-bounded search
//   inkwell search --json anxiety              Results as JSON
//
// Flags:
//   --semantic        Search by meaning (embeddings)
//   --text            Plain text match (overrides config default)
//   --tag NAME        Require a tag
//   --from DATE       Entries on or after DATE (2006-01-02)
//   --to DATE         Entries on or before DATE
//   --limit N         Result count (default 10)
//
// Semantic search ranks by meaning and shows a match percentage; text
// search returns newest first. When the backend is unreachable the
// local cache answers with a plain substring match.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/api"
)

// searchTimeout bounds one search end to end. Semantic search embeds
// the query server-side, so it gets longer than a plain list call.
const searchTimeout = 60 * time.Second

// =============================================================================
// SEARCH COMMAND HANDLER
// =============================================================================

// HandleSearch handles the "search" command.
func HandleSearch(args Args) error {
	raw, mode := ExtractBoolFlags(args.Raw, "semantic", "text")
	parser := NewArgParser(raw)

	query := JoinPositionalArgs(parser, 0)
	if query == "" {
		return ErrMissingArgument("query", "inkwell search WORDS")
	}

	cfg := LoadConfigLenient()
	client := BuildClient(cfg)

	semantic := cfg.Search.Semantic
	if mode["semantic"] {
		semantic = true
	}
	if mode["text"] {
		semantic = false
	}

	opts := api.SearchOptions{
		Semantic: semantic,
		PerPage:  parser.FlagIntOrDefault("limit", 10),
	}
	if tag := parser.Flag("tag"); tag != "" {
		opts.Tags = []string{tag}
	}

	var err error
	if opts.From, err = parseSearchDate(parser.Flag("from")); err != nil {
		return ErrInvalidArgument("from", parser.Flag("from"), "expected a date like 2006-01-02")
	}
	if opts.To, err = parseSearchDate(parser.Flag("to")); err != nil {
		return ErrInvalidArgument("to", parser.Flag("to"), "expected a date like 2006-01-02")
	}

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	page, err := client.SearchEntries(ctx, query, opts)
	if err != nil {
		return searchOffline(query, opts.PerPage, args)
	}

	if args.JSON {
		return NewJSONResponse("search", page).Print()
	}

	if len(page.Results) == 0 {
		fmt.Println(DimStyle.Render(fmt.Sprintf("Nothing found for %q.", query)))
		return nil
	}

	modeLabel := "text"
	if semantic {
		modeLabel = "semantic"
	}
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Search results (%s)", modeLabel)))
	for _, res := range page.Results {
		printSearchResult(res)
	}
	if page.HasMore() {
		fmt.Println(DimStyle.Render(fmt.Sprintf("  ...and %d more; use --limit", page.Total-len(page.Results))))
	}
	return nil
}

// printSearchResult renders one hit with score and snippet.
func printSearchResult(res api.SearchResult) {
	title := res.Entry.Title
	if title == "" {
		title = "(untitled)"
	}

	head := ValueStyle.Render(truncateLine(title, 56))
	if res.Score > 0 {
		head += DimStyle.Render(fmt.Sprintf("  %.0f%%", res.Score*100))
	}
	fmt.Printf("  %s\n", head)

	snippet := res.Snippet
	if snippet == "" {
		snippet = res.Entry.Preview(96)
	}
	if snippet != "" {
		fmt.Printf("    %s\n", DimStyle.Render(truncateLine(snippet, 96)))
	}
	fmt.Printf("    %s\n", DimStyle.Render(fmt.Sprintf("%s  %s",
		res.Entry.ID, res.Entry.CreatedAt.Format("Jan 2, 2006"))))
}

// searchOffline answers from the local cache when the backend is down.
// Only substring matching is possible locally.
func searchOffline(query string, limit int, args Args) error {
	cache, err := openEntryCache()
	if err != nil {
		return NewCommandError("search", "run", "backend unreachable and no local cache", err)
	}
	defer cache.Close()

	entries, err := cache.Search(query, limit)
	if err != nil {
		return NewCommandError("search", "run", "local cache search failed", err)
	}

	if args.JSON {
		return NewJSONResponse("search", map[string]interface{}{
			"entries": entries,
			"offline": true,
		}).Print()
	}

	fmt.Println(WarningStyle.Render("Backend unreachable; text match against the local cache."))
	if len(entries) == 0 {
		fmt.Println(DimStyle.Render(fmt.Sprintf("Nothing found for %q.", query)))
		return nil
	}
	for _, e := range entries {
		printEntryRow(e)
	}
	return nil
}

// parseSearchDate parses an optional 2006-01-02 date flag.
func parseSearchDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
