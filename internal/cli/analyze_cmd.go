// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// analyze_cmd.go - Batch reflection commands for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: analyze
// Short:   Reflections across many journal entries
//
// Examples:
//   inkwell analyze                       List past analyses
//   inkwell analyze show ana-7            Print one analysis
//   inkwell analyze run --type summary --title "March" --entries e1,e2,e3
//   inkwell analyze run --type themes --tag work --limit 30
//   inkwell analyze run --type mood --limit 50
//
// Subcommands:
//   list (default)   Past analyses, newest first
//   show ID          Full analysis result
//   run              Create a new analysis
//
// Run flags:
//   --type TYPE      summary, themes, mood, or insights (required)
//   --title TEXT     Name for the analysis (default derived from type)
//   --entries IDS    Comma-separated entry ids
//   --tag NAME       Select entries by tag instead of ids
//   --limit N        Cap on selected entries (default 30)
//
// An analysis runs on the backend against the entries it selects; the
// command waits for the result and prints it.
package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// analyzeTimeout bounds one analysis run. Batch prompts over dozens of
// entries are the slowest call in the CLI.
const analyzeTimeout = 5 * time.Minute

// =============================================================================
// ANALYZE COMMAND HANDLER
// =============================================================================

// HandleAnalyze handles the "analyze" command and its subcommands.
func HandleAnalyze(args Args) error {
	parser := NewArgParser(args.Raw)

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg := LoadConfigLenient()
	client := BuildClient(cfg)

	switch parser.Subcommand() {
	case "", "list":
		return handleAnalyzeList(ctx, client, args)
	case "show":
		return handleAnalyzeShow(ctx, client, parser, args)
	case "run":
		return handleAnalyzeRun(ctx, client, parser, args)
	default:
		return ErrInvalidArgument("subcommand", parser.Subcommand(),
			"expected list, show, or run")
	}
}

// =============================================================================
// LIST
// =============================================================================

func handleAnalyzeList(ctx context.Context, client *api.Client, args Args) error {
	analyses, err := client.ListBatchAnalyses(ctx)
	if err != nil {
		return NewCommandError("analyze", "list", "could not reach the backend", err)
	}

	if args.JSON {
		return NewJSONResponse("analyze list", analyses).Print()
	}

	if len(analyses) == 0 {
		fmt.Println(DimStyle.Render("No analyses yet. Create one with: inkwell analyze run"))
		return nil
	}

	fmt.Println(TitleStyle.Render("Analyses"))
	for _, a := range analyses {
		title := a.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("  %s\n    %s\n",
			ValueStyle.Render(truncateLine(title, 64)),
			DimStyle.Render(fmt.Sprintf("%s  %s  %d entries  %s",
				a.ID, a.PromptType, a.EntryCount(), formatRelativeTime(a.CreatedAt))))
	}
	return nil
}

// =============================================================================
// SHOW
// =============================================================================

func handleAnalyzeShow(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("analysis id", "inkwell analyze show ANALYSIS-ID")
	}

	analysis, err := client.GetBatchAnalysis(ctx, id)
	if err != nil {
		return NewCommandError("analyze", "show", fmt.Sprintf("analysis %s", id), err)
	}

	if args.JSON {
		return NewJSONResponse("analyze show", analysis).Print()
	}

	printAnalysis(analysis)
	return nil
}

// printAnalysis renders an analysis result section by section.
func printAnalysis(a *model.BatchAnalysis) {
	title := a.Title
	if title == "" {
		title = a.PromptType
	}
	fmt.Println(TitleStyle.Render(title))
	fmt.Println(DimStyle.Render(fmt.Sprintf("%s  %s  %d entries  %s",
		a.ID, a.PromptType, a.EntryCount(), a.CreatedAt.Format("Jan 2, 2006"))))
	fmt.Println()

	if a.Summary != "" {
		if IsStdoutTTY() {
			fmt.Print(renderMarkdown(a.Summary))
		} else {
			fmt.Println(a.Summary)
		}
	}

	if len(a.Themes) > 0 {
		fmt.Println(SectionStyle.Render("Themes"))
		for _, theme := range a.Themes {
			fmt.Println("  - " + theme)
		}
	}

	if len(a.Insights) > 0 {
		fmt.Println(SectionStyle.Render("Insights"))
		for _, insight := range a.Insights {
			fmt.Println("  - " + WrapText(insight, GetTerminalWidth()-4))
		}
	}

	if len(a.MoodTrend) > 0 {
		fmt.Println(SectionStyle.Render("Mood"))
		printMoodTrend(a.MoodTrend)
	}
}

// printMoodTrend renders mood counts as a small bar list, largest
// first.
func printMoodTrend(trend map[string]int) {
	type moodCount struct {
		mood  string
		count int
	}
	counts := make([]moodCount, 0, len(trend))
	max := 0
	for mood, n := range trend {
		counts = append(counts, moodCount{mood, n})
		if n > max {
			max = n
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].mood < counts[j].mood
	})

	for _, mc := range counts {
		barLen := 1
		if max > 0 {
			barLen = mc.count * 24 / max
			if barLen < 1 {
				barLen = 1
			}
		}
		fmt.Printf("  %-12s %s %d\n",
			mc.mood,
			HighlightStyle.Render(strings.Repeat("#", barLen)),
			mc.count)
	}
}

// =============================================================================
// RUN
// =============================================================================

func handleAnalyzeRun(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	promptType := strings.ToLower(parser.Flag("type"))
	switch promptType {
	case api.AnalysisSummary, api.AnalysisThemes, api.AnalysisMood, api.AnalysisInsights:
	case "":
		return ErrMissingArgument("type", "inkwell analyze run --type summary|themes|mood|insights")
	default:
		return ErrInvalidArgument("type", promptType, "expected summary, themes, mood, or insights")
	}

	entryIDs, err := selectAnalysisEntries(ctx, client, parser)
	if err != nil {
		return err
	}
	if len(entryIDs) == 0 {
		return ErrInvalidArgument("entries", "", "no entries matched; give --entries ids or a --tag with entries")
	}

	title := parser.Flag("title")
	if title == "" {
		title = fmt.Sprintf("%s of %d entries", promptType, len(entryIDs))
	}

	if !args.Quiet && !args.JSON {
		fmt.Println(DimStyle.Render(fmt.Sprintf("Analyzing %d entries; this can take a while...", len(entryIDs))))
	}

	analysis, err := client.CreateBatchAnalysis(ctx, entryIDs, title, promptType)
	if err != nil {
		return NewCommandError("analyze", "run", "the backend could not run the analysis", err)
	}

	if args.JSON {
		return NewJSONResponse("analyze run", analysis).Print()
	}

	printAnalysis(analysis)
	return nil
}

// selectAnalysisEntries resolves --entries ids or a --tag selection
// into a concrete id list.
func selectAnalysisEntries(ctx context.Context, client *api.Client, parser *ArgParser) ([]string, error) {
	limit := parser.FlagIntOrDefault("limit", 30)

	if raw := parser.Flag("entries"); raw != "" {
		var ids []string
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > limit {
			ids = ids[:limit]
		}
		return ids, nil
	}

	// Select recent entries, optionally narrowed by tag.
	page, err := client.ListEntries(ctx, api.EntryListOptions{
		PerPage: limit,
		Tag:     parser.Flag("tag"),
	})
	if err != nil {
		return nil, NewCommandError("analyze", "select entries", "could not list entries", err)
	}

	ids := make([]string, 0, len(page.Entries))
	for _, e := range page.Entries {
		ids = append(ids, e.ID)
	}
	return ids, nil
}
