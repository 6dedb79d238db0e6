// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// entries_cmd.go - Journal entry commands for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: entries
// Short:   List, show, and export journal entries
//
// Examples:
//   inkwell entries                        List recent entries
//   inkwell entries --tag gratitude        Entries with a tag
//   inkwell entries --favorite             Favorites only
//   inkwell entries show ent-123           Print one entry
//   inkwell entries export ent-123         Write the entry as Markdown
//   inkwell entries tags                   Tags with counts
//   inkwell entries --json                 List as JSON
//
// Subcommands:
//   list (default)   One line per entry, newest first
//   show ID          Full entry with frontmatter fields
//   export ID        Markdown file with YAML frontmatter
//   tags             Tag names with usage counts
//
// RELIABILITY: reading falls back to the local entry cache when the
// backend is unreachable, so the journal stays readable offline.
// Successful reads refresh the cache in passing.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/storage"
)

// entriesTimeout bounds one entries subcommand end to end.
const entriesTimeout = 30 * time.Second

// =============================================================================
// ENTRIES COMMAND HANDLER
// =============================================================================

// HandleEntries handles the "entries" command and its subcommands.
func HandleEntries(args Args) error {
	raw, boolFlags := ExtractBoolFlags(args.Raw, "favorite")
	parser := NewArgParser(raw)

	ctx, cancel := context.WithTimeout(context.Background(), entriesTimeout)
	defer cancel()

	cfg := LoadConfigLenient()
	client := BuildClient(cfg)

	switch parser.Subcommand() {
	case "", "list":
		return handleEntriesList(ctx, client, parser, boolFlags["favorite"], args)
	case "show":
		return handleEntriesShow(ctx, client, parser, args)
	case "export":
		return handleEntriesExport(ctx, client, parser, args)
	case "tags":
		return handleEntriesTags(ctx, client, args)
	default:
		return ErrInvalidArgument("subcommand", parser.Subcommand(),
			"expected list, show, export, or tags")
	}
}

// =============================================================================
// LIST
// =============================================================================

func handleEntriesList(ctx context.Context, client *api.Client, parser *ArgParser, favorite bool, args Args) error {
	limit := parser.FlagIntOrDefault("limit", 20)

	page, err := client.ListEntries(ctx, api.EntryListOptions{
		PerPage:  limit,
		Tag:      parser.Flag("tag"),
		Favorite: favorite,
	})

	offline := false
	var entries []*model.Entry
	total := 0

	if err != nil {
		// Backend down; serve the cached copies.
		entries, err = listCachedEntries(limit)
		if err != nil {
			return NewCommandError("entries", "list", "backend unreachable and no local cache", err)
		}
		offline = true
		total = len(entries)
	} else {
		entries = page.Entries
		total = page.Total
		refreshEntryCache(entries)
	}

	if args.JSON {
		return NewJSONResponse("entries list", map[string]interface{}{
			"entries": entries,
			"total":   total,
			"offline": offline,
		}).Print()
	}

	if offline {
		fmt.Println(WarningStyle.Render("Backend unreachable; showing the local cache."))
	}
	if len(entries) == 0 {
		fmt.Println(DimStyle.Render("No entries found."))
		return nil
	}

	fmt.Println(TitleStyle.Render("Journal entries"))
	for _, e := range entries {
		printEntryRow(e)
	}
	if !offline && total > len(entries) {
		fmt.Println(DimStyle.Render(fmt.Sprintf("  ...and %d more; use --limit", total-len(entries))))
	}
	return nil
}

// printEntryRow renders one entry as a two-line list row.
func printEntryRow(e *model.Entry) {
	title := e.Title
	if title == "" {
		title = "(untitled)"
	}
	fav := ""
	if e.Favorite {
		fav = WarningStyle.Render(" *")
	}
	meta := fmt.Sprintf("%s  %s", e.ID, e.CreatedAt.Format("Jan 2, 2006"))
	if len(e.Tags) > 0 {
		meta += "  #" + e.Tags[0]
		if len(e.Tags) > 1 {
			meta += fmt.Sprintf(" +%d", len(e.Tags)-1)
		}
	}
	fmt.Printf("  %s%s\n    %s\n", ValueStyle.Render(truncateLine(title, 64)), fav, DimStyle.Render(meta))
}

// =============================================================================
// SHOW
// =============================================================================

func handleEntriesShow(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("entry id", "inkwell entries show ENTRY-ID")
	}

	entry, offline, err := fetchEntry(ctx, client, id)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("entries show", entry).Print()
	}

	if offline {
		fmt.Println(WarningStyle.Render("Backend unreachable; showing the local cache."))
	}

	title := entry.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Println(TitleStyle.Render(title))

	meta := entry.CreatedAt.Format("Monday, Jan 2, 2006")
	if entry.Mood != "" {
		meta += "  mood: " + entry.Mood
	}
	if entry.WordCount > 0 {
		meta += fmt.Sprintf("  %d words", entry.WordCount)
	}
	fmt.Println(DimStyle.Render(meta))
	if len(entry.Tags) > 0 {
		tagLine := ""
		for i, tag := range entry.Tags {
			if i > 0 {
				tagLine += " "
			}
			tagLine += "#" + tag
		}
		fmt.Println(DimStyle.Render(tagLine))
	}
	fmt.Println()

	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(entry.Content))
	} else {
		fmt.Println(entry.Content)
	}
	return nil
}

// fetchEntry reads an entry from the backend, falling back to the
// local cache. The offline result tells the caller to warn.
func fetchEntry(ctx context.Context, client *api.Client, id string) (*model.Entry, bool, error) {
	entry, err := client.GetEntry(ctx, id)
	if err == nil {
		refreshEntryCache([]*model.Entry{entry})
		return entry, false, nil
	}

	cached, cacheErr := getCachedEntry(id)
	if cacheErr != nil {
		return nil, false, NewCommandError("entries", "show", fmt.Sprintf("entry %s", id), err)
	}
	return cached, true, nil
}

// =============================================================================
// EXPORT
// =============================================================================

func handleEntriesExport(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("entry id", "inkwell entries export ENTRY-ID")
	}

	outDir := parser.Flag("output")
	if outDir != "" {
		if err := ValidateOutputPath(outDir); err != nil {
			return ErrInvalidArgument("output", outDir, err.Error())
		}
	}

	entry, offline, err := fetchEntry(ctx, client, id)
	if err != nil {
		return err
	}
	if offline && !args.Quiet {
		StderrPrintln("note: exported from the local cache; the backend was unreachable")
	}

	path, err := storage.ExportEntry(entry, outDir)
	if err != nil {
		return NewCommandError("entries", "export", "could not write the export", err)
	}

	if args.JSON {
		return NewJSONResponse("entries export", map[string]string{"path": path}).Print()
	}
	fmt.Println(SuccessStyle.Render("Exported: ") + path)
	return nil
}

// =============================================================================
// TAGS
// =============================================================================

func handleEntriesTags(ctx context.Context, client *api.Client, args Args) error {
	tags, err := client.ListTags(ctx)
	if err != nil {
		return NewCommandError("entries", "tags", "could not reach the backend", err)
	}

	if args.JSON {
		return NewJSONResponse("entries tags", tags).Print()
	}

	if len(tags) == 0 {
		fmt.Println(DimStyle.Render("No tags yet."))
		return nil
	}

	fmt.Println(TitleStyle.Render("Tags"))
	for _, tag := range tags {
		fmt.Printf("  %s %s\n",
			ValueStyle.Render("#"+tag.Name),
			DimStyle.Render(fmt.Sprintf("(%d)", tag.Count)))
	}
	return nil
}

// =============================================================================
// LOCAL CACHE ACCESS
// =============================================================================

// openEntryCache opens the shared entry cache database.
func openEntryCache() (*storage.EntryCache, error) {
	path, err := storage.DefaultCachePath()
	if err != nil {
		return nil, err
	}
	return storage.OpenCache(path)
}

// listCachedEntries lists entries from the offline cache.
func listCachedEntries(limit int) ([]*model.Entry, error) {
	cache, err := openEntryCache()
	if err != nil {
		return nil, err
	}
	defer cache.Close()
	return cache.List(limit)
}

// getCachedEntry reads one entry from the offline cache.
func getCachedEntry(id string) (*model.Entry, error) {
	cache, err := openEntryCache()
	if err != nil {
		return nil, err
	}
	defer cache.Close()
	return cache.Get(id)
}

// refreshEntryCache mirrors fetched entries into the offline cache.
// Failures are ignored; the cache is an optimization, not a store of
// record.
func refreshEntryCache(entries []*model.Entry) {
	if len(entries) == 0 {
		return
	}
	cache, err := openEntryCache()
	if err != nil {
		return
	}
	defer cache.Close()
	cache.PutAll(entries)
}
