// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions_cmd.go - Conversation management commands for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: sessions
// Short:   List, show, export, and delete conversations
//
// Examples:
//   inkwell sessions                          List conversations
//   inkwell sessions list --limit 50          Longer list
//   inkwell sessions show sess-42             Print a transcript
//   inkwell sessions export sess-42           Export as Markdown
//   inkwell sessions export sess-42 --format json --output ~/backup
//   inkwell sessions delete sess-42           Delete one conversation
//   inkwell sessions delete --all             Delete everything (typed confirm)
//   inkwell sessions --json                   List as JSON
//
// Subcommands:
//   list (default)   One line per conversation, newest first
//   show ID          Full transcript with timestamps
//   export ID        Write a transcript file (--format markdown|json)
//   delete ID|--all  Remove conversations from the backend
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/storage"
)

// sessionsTimeout bounds one sessions subcommand end to end.
const sessionsTimeout = 30 * time.Second

// =============================================================================
// SESSIONS COMMAND HANDLER
// =============================================================================

// HandleSessions handles the "sessions" command and its subcommands.
func HandleSessions(args Args) error {
	parser := NewArgParser(args.Raw)

	ctx, cancel := context.WithTimeout(context.Background(), sessionsTimeout)
	defer cancel()

	cfg := LoadConfigLenient()
	client := BuildClient(cfg)

	switch parser.Subcommand() {
	case "", "list":
		return handleSessionsList(ctx, client, parser, args)
	case "show":
		return handleSessionsShow(ctx, client, parser, args)
	case "export":
		return handleSessionsExport(ctx, client, parser, args)
	case "delete":
		return handleSessionsDelete(ctx, client, parser, args)
	default:
		return ErrInvalidArgument("subcommand", parser.Subcommand(),
			"expected list, show, export, or delete")
	}
}

// =============================================================================
// LIST
// =============================================================================

func handleSessionsList(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	limit := parser.FlagIntOrDefault("limit", 20)

	page, err := client.ListSessions(ctx, api.ListOptions{
		PerPage: limit,
		SortBy:  api.SortUpdatedAt,
		Order:   "desc",
	})
	if err != nil {
		return NewCommandError("sessions", "list", "could not reach the backend", err)
	}

	if args.JSON {
		return NewJSONResponse("sessions list", page).Print()
	}

	if len(page.Sessions) == 0 {
		fmt.Println(DimStyle.Render("No conversations yet. Start one with: inkwell"))
		return nil
	}

	fmt.Println(TitleStyle.Render("Conversations"))
	for _, s := range page.Sessions {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		count := ""
		if s.MessageCount > 0 {
			count = fmt.Sprintf("%d msgs", s.MessageCount)
		}
		fmt.Printf("  %s\n    %s\n",
			ValueStyle.Render(truncateLine(title, 64)),
			DimStyle.Render(fmt.Sprintf("%s  %s  %s", s.ID, formatRelativeTime(s.UpdatedAt), count)))
	}
	if page.HasMore() {
		fmt.Println(DimStyle.Render(fmt.Sprintf("  ...and %d more; use --limit", page.Total-len(page.Sessions))))
	}
	return nil
}

// =============================================================================
// SHOW
// =============================================================================

func handleSessionsShow(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("session id", "inkwell sessions show SESSION-ID")
	}

	sess, err := fetchSessionWithMessages(ctx, client, id)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("sessions show", sess).Print()
	}

	title := sess.Title
	if title == "" {
		title = sess.ID
	}
	fmt.Println(TitleStyle.Render(title))
	fmt.Println(DimStyle.Render(fmt.Sprintf("%s  started %s", sess.ID, sess.CreatedAt.Format("Jan 2, 2006 15:04"))))
	fmt.Println()

	for _, msg := range sess.Messages {
		printTranscriptMessage(msg)
	}
	return nil
}

// printTranscriptMessage renders one message for terminal reading.
func printTranscriptMessage(msg *model.Message) {
	stamp := DimStyle.Render(msg.CreatedAt.Format("15:04"))
	switch msg.Role {
	case model.RoleUser:
		fmt.Printf("%s %s\n", stamp, InfoStyle.Render("you"))
	case model.RoleAssistant:
		fmt.Printf("%s %s\n", stamp, HighlightStyle.Render("companion"))
	default:
		fmt.Printf("%s %s\n", stamp, DimStyle.Render(string(msg.Role)))
	}
	fmt.Println(WrapText(msg.Content, GetTerminalWidth()))
	if line := formatAnswerReferences(msg.References); line != "" {
		fmt.Println(DimStyle.Render(line))
	}
	fmt.Println()
}

// fetchSessionWithMessages hydrates a session transcript.
func fetchSessionWithMessages(ctx context.Context, client *api.Client, id string) (*model.Session, error) {
	sess, err := client.GetSession(ctx, id)
	if err != nil {
		return nil, NewCommandError("sessions", "show", fmt.Sprintf("conversation %s", id), err)
	}

	if len(sess.Messages) == 0 {
		msgs, err := client.ListMessages(ctx, id)
		if err != nil {
			return nil, NewCommandError("sessions", "show", "could not load messages", err)
		}
		sess.Messages = msgs
	}
	return sess, nil
}

// =============================================================================
// EXPORT
// =============================================================================

func handleSessionsExport(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("session id", "inkwell sessions export SESSION-ID")
	}

	format, err := storage.ParseFormat(parser.FlagOrDefault("format", "markdown"))
	if err != nil {
		return ErrInvalidArgument("format", parser.Flag("format"), "expected markdown or json")
	}

	outDir := parser.Flag("output")
	if outDir != "" {
		if err := ValidateOutputPath(outDir); err != nil {
			return ErrInvalidArgument("output", outDir, err.Error())
		}
	}

	sess, err := fetchSessionWithMessages(ctx, client, id)
	if err != nil {
		return err
	}

	path, err := storage.ExportSession(sess, format, outDir)
	if err != nil {
		return NewCommandError("sessions", "export", "could not write the export", err)
	}

	if args.JSON {
		return NewJSONResponse("sessions export", map[string]string{"path": path}).Print()
	}
	fmt.Println(SuccessStyle.Render("Exported: ") + path)
	return nil
}

// =============================================================================
// DELETE
// =============================================================================

func handleSessionsDelete(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	if parser.BoolFlag("all") {
		return handleSessionsDeleteAll(ctx, client, parser, args)
	}

	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("session id", "inkwell sessions delete SESSION-ID (or --all)")
	}

	confirmed, err := RequireConfirmation(parser.BoolFlag("yes"),
		fmt.Sprintf("delete conversation %s", id), args.JSON)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	if err := client.DeleteSession(ctx, id); err != nil {
		return NewCommandError("sessions", "delete", fmt.Sprintf("conversation %s", id), err)
	}

	if args.JSON {
		return NewJSONResponse("sessions delete", map[string]string{"deleted": id}).Print()
	}
	fmt.Println(SuccessStyle.Render("Deleted ") + id)
	return nil
}

// handleSessionsDeleteAll removes every conversation, page by page.
func handleSessionsDeleteAll(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	confirmed, err := ConfirmDangerousAction(parser.BoolFlag("yes"),
		"delete every conversation on the backend", "DELETE", args.JSON)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	deleted := 0
	for {
		page, err := client.ListSessions(ctx, api.ListOptions{PerPage: 100})
		if err != nil {
			return NewCommandError("sessions", "delete", "could not list conversations", err)
		}
		if len(page.Sessions) == 0 {
			break
		}
		for _, s := range page.Sessions {
			if err := client.DeleteSession(ctx, s.ID); err != nil {
				return NewCommandError("sessions", "delete",
					fmt.Sprintf("stopped after %d; conversation %s", deleted, s.ID), err)
			}
			deleted++
		}
	}

	if args.JSON {
		return NewJSONResponse("sessions delete", map[string]int{"deleted": deleted}).Print()
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Deleted %d conversation(s).", deleted)))
	return nil
}
