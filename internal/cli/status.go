// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: status
// Short:   Display backend and journal status
// Aliases: s
//
// Examples:
//   inkwell status                Show status
//   inkwell s                     Show status (short alias)
//   inkwell status --json         Status in JSON format
//
// Status Sections:
//   Backend:   URL, reachability, round-trip latency, API key
//   Model:     The language model behind the backend
//   Journal:   Entry, conversation, and tag counts
//   Local:     Config path, entry cache size, journal lock
//
// Flags:
//   --json              Output in JSON format
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/api"
)

// statusProbeTimeout bounds each backend probe. Probes run serially, so
// a dead backend costs at most a few of these.
const statusProbeTimeout = 5 * time.Second

// =============================================================================
// HANDLE STATUS
// =============================================================================

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	return OutputJSON(args.JSON, "status", func() (interface{}, error) {
		data := collectStatusData()
		if !args.JSON {
			renderStatusText(data)
		}
		return data, nil
	})
}

// collectStatusData probes the backend once and assembles the full
// status payload shared by the text and JSON renderings.
func collectStatusData() StatusData {
	cfg := LoadConfigLenient()
	client := BuildClient(cfg)

	backend := collectBackendInfo(client, cfg.Backend.BaseURL)

	var llm StatusLLMInfo
	var journal StatusJournalInfo
	if backend.Reachable {
		llm = collectLLMInfo(client)
		journal = collectJournalInfo(client)
	}

	return StatusData{
		Backend: backend,
		LLM:     llm,
		Journal: journal,
		Local:   collectLocalInfo(cfg.Lock.Enabled),
	}
}

// =============================================================================
// COLLECTORS
// =============================================================================

// collectBackendInfo pings the backend and measures the round trip.
func collectBackendInfo(client *api.Client, baseURL string) StatusBackendInfo {
	info := StatusBackendInfo{
		BaseURL: baseURL,
		APIKey:  client.APIKeyMasked(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), statusProbeTimeout)
	defer cancel()

	start := time.Now()
	if err := client.Ping(ctx); err != nil {
		info.Error = err.Error()
		return info
	}
	info.Reachable = true
	info.LatencyMS = time.Since(start).Milliseconds()
	return info
}

// collectLLMInfo asks the backend about its language model and runs a
// connection test.
func collectLLMInfo(client *api.Client) StatusLLMInfo {
	info := StatusLLMInfo{}

	ctx, cancel := context.WithTimeout(context.Background(), statusProbeTimeout)
	defer cancel()

	llmCfg, err := client.GetLLMConfig(ctx)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Provider = llmCfg.Provider
	info.Model = llmCfg.Model

	testCtx, testCancel := context.WithTimeout(context.Background(), statusProbeTimeout)
	defer testCancel()

	result, err := client.TestLLMConnection(testCtx)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.OK = result.OK
	info.LatencyMS = result.LatencyMS
	if result.Model != "" {
		info.Model = result.Model
	}
	if result.Error != "" {
		info.Error = result.Error
	}
	return info
}

// collectJournalInfo counts entries, conversations, and tags. Counts
// come from page totals, so one-item pages keep the probes cheap.
func collectJournalInfo(client *api.Client) StatusJournalInfo {
	info := StatusJournalInfo{}

	ctx, cancel := context.WithTimeout(context.Background(), statusProbeTimeout)
	defer cancel()

	if page, err := client.ListEntries(ctx, api.EntryListOptions{Page: 1, PerPage: 1}); err == nil {
		info.Entries = page.Total
	}
	if page, err := client.ListSessions(ctx, api.ListOptions{Page: 1, PerPage: 1}); err == nil {
		info.Sessions = page.Total
	}
	if tags, err := client.ListTags(ctx); err == nil {
		info.Tags = len(tags)
	}
	return info
}

// collectLocalInfo inspects state on this machine only; it never
// touches the network.
func collectLocalInfo(lockEnabled bool) StatusLocalInfo {
	info := StatusLocalInfo{
		ConfigPath:  ConfigPath(),
		LockEnabled: lockEnabled,
	}

	if cache, err := openEntryCache(); err == nil {
		if n, err := cache.Count(); err == nil {
			info.CachedEntries = n
		}
		cache.Close()
	}
	return info
}

// =============================================================================
// TEXT RENDERING
// =============================================================================

// renderStatusText prints the collected status as labeled sections.
func renderStatusText(data StatusData) {
	fmt.Println()
	fmt.Println(TitleStyle.Render("inkwell Status"))
	fmt.Println(RenderSeparator(41))

	fmt.Println(SectionStyle.Render("Backend"))
	fmt.Printf("  %s%s\n", RenderLabel("URL:"), ValueStyle.Render(data.Backend.BaseURL))
	if data.Backend.Reachable {
		fmt.Printf("  %s%s %s\n", RenderLabel("Status:"), RenderStatus("connected"),
			DimStyle.Render(fmt.Sprintf("(%dms)", data.Backend.LatencyMS)))
	} else {
		fmt.Printf("  %s%s %s\n", RenderLabel("Status:"), RenderStatus("unreachable"),
			DimStyle.Render(truncateLine(data.Backend.Error, 48)))
	}
	fmt.Printf("  %s%s\n", RenderLabel("API Key:"), DimStyle.Render(data.Backend.APIKey))
	fmt.Println()

	fmt.Println(SectionStyle.Render("Model"))
	if !data.Backend.Reachable {
		fmt.Println("  " + DimStyle.Render("skipped; backend unreachable"))
	} else if data.LLM.OK {
		fmt.Printf("  %s%s\n", RenderLabel("Provider:"), ValueStyle.Render(orPlaceholder(data.LLM.Provider, "(unknown)")))
		fmt.Printf("  %s%s\n", RenderLabel("Model:"), ValueStyle.Render(orPlaceholder(data.LLM.Model, "(unknown)")))
		fmt.Printf("  %s%s %s\n", RenderLabel("Status:"), RenderStatus("ok"),
			DimStyle.Render(fmt.Sprintf("(%dms)", data.LLM.LatencyMS)))
	} else {
		fmt.Printf("  %s%s %s\n", RenderLabel("Status:"), RenderStatus("error"),
			DimStyle.Render(truncateLine(data.LLM.Error, 48)))
	}
	fmt.Println()

	fmt.Println(SectionStyle.Render("Journal"))
	if data.Backend.Reachable {
		fmt.Printf("  %s%s\n", RenderLabel("Entries:"), ValueStyle.Render(fmt.Sprintf("%d", data.Journal.Entries)))
		fmt.Printf("  %s%s\n", RenderLabel("Chats:"), ValueStyle.Render(fmt.Sprintf("%d", data.Journal.Sessions)))
		fmt.Printf("  %s%s\n", RenderLabel("Tags:"), ValueStyle.Render(fmt.Sprintf("%d", data.Journal.Tags)))
	} else {
		fmt.Println("  " + DimStyle.Render("skipped; backend unreachable"))
	}
	fmt.Println()

	fmt.Println(SectionStyle.Render("Local"))
	fmt.Printf("  %s%s\n", RenderLabel("Config:"), ValueStyle.Render(data.Local.ConfigPath))
	fmt.Printf("  %s%s\n", RenderLabel("Cache:"),
		ValueStyle.Render(fmt.Sprintf("%d entries cached", data.Local.CachedEntries)))
	lockState := "off"
	if data.Local.LockEnabled {
		lockState = "on"
	}
	fmt.Printf("  %s%s\n", RenderLabel("Lock:"), RenderConditional(ValueStyle, lockState))
	fmt.Println()
}
