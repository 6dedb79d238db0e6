// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: ask
// Short:   Ask one question, get one rendered answer
//
// Examples:
//   inkwell ask "what did I write about the garden last spring?"
//   inkwell ask --file draft.md "help me finish this entry"
//   inkwell ask -s sess-42 "and what about the week after?"
//   cat notes.txt | inkwell ask "what is the mood of this?"
//   inkwell ask "three themes from March" > themes.md
//
// Flags:
//   -f, --file FILE       Include a file's contents in the prompt
//   -p, --persona NAME    Answer as a specific persona
//   -s, --session ID      Continue an existing conversation
//
// Behavior:
//   - The answer renders as markdown when stdout is a terminal and
//     prints as plain text when piped, so ask composes with shell
//     tools.
//   - Piped stdin is folded into the prompt as context.
//   - The turn is stored on the backend like any other conversation;
//     the session id is printed so it can be continued.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// MaxFileSize limits how much of a --file is folded into the prompt.
const MaxFileSize = 50 * 1024 // 50KB

// askTimeout bounds one non-streaming turn end to end.
const askTimeout = 3 * time.Minute

// markdownRenderer is shared by ask and chat for terminal markdown.
// A nil renderer means rendering failed at init; output falls back to
// plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		markdownRenderer = renderer
	}
}

// renderMarkdown renders markdown for terminal display, falling back
// to the raw text when the renderer is unavailable.
func renderMarkdown(text string) string {
	if markdownRenderer == nil {
		return text
	}
	rendered, err := markdownRenderer.Render(text)
	if err != nil {
		return text
	}
	return rendered
}

// =============================================================================
// ASK COMMAND HANDLER
// =============================================================================

// HandleAsk handles the "ask" command: one question, one answer.
func HandleAsk(args Args) error {
	prompt, err := buildAskPrompt(args)
	if err != nil {
		return err
	}

	cfg := LoadConfigLenient()
	client := BuildClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	personaID, err := resolvePersona(ctx, client, args.Persona, cfg.Chat.DefaultPersonaID)
	if err != nil {
		return err
	}

	msg, err := client.ProcessMessage(ctx, api.SendRequest{
		SessionID: args.SessionID,
		Content:   prompt,
		PersonaID: personaID,
	})
	if err != nil {
		return NewCommandError("ask", "send", "the backend did not answer", err)
	}

	displayAnswer(msg, args)
	return nil
}

// buildAskPrompt assembles the prompt from the query, piped stdin, and
// an optional file.
func buildAskPrompt(args Args) (string, error) {
	var sb strings.Builder

	query := strings.TrimSpace(args.Query)

	// Piped stdin becomes context ahead of the question.
	if stdinData := readPipedStdin(); stdinData != "" {
		sb.WriteString(stdinData)
		sb.WriteString("\n\n")
	}

	if args.File != "" {
		fileData, err := readFileForPrompt(args.File)
		if err != nil {
			return "", err
		}
		sb.WriteString(fileData)
		sb.WriteString("\n\n")
	}

	if query == "" && sb.Len() == 0 {
		return "", ErrMissingArgument("question", `inkwell ask "your question"`)
	}

	sb.WriteString(query)
	return strings.TrimSpace(sb.String()), nil
}

// readPipedStdin returns piped stdin content, or empty string when
// stdin is a terminal.
func readPipedStdin() string {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return ""
	}
	// A character device means an interactive terminal, not a pipe.
	if stat.Mode()&os.ModeCharDevice != 0 {
		return ""
	}

	data := make([]byte, MaxFileSize)
	n, _ := os.Stdin.Read(data)
	if n <= 0 {
		return ""
	}
	return strings.TrimSpace(string(data[:n]))
}

// readFileForPrompt reads a file for inclusion in the prompt, framed so
// the companion knows where the file starts and the question begins.
func readFileForPrompt(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", NewCommandError("ask", "read file", path, err)
	}
	if info.Size() > MaxFileSize {
		return "", ErrInvalidArgument("file", path,
			fmt.Sprintf("larger than %s", formatBytes(MaxFileSize)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", NewCommandError("ask", "read file", path, err)
	}

	return fmt.Sprintf("--- %s ---\n%s\n--- end of %s ---", path, strings.TrimSpace(string(data)), path), nil
}

// resolvePersona turns a persona name or id into a persona id. An
// empty request falls back to the configured default, which may itself
// be empty (backend default).
func resolvePersona(ctx context.Context, client *api.Client, requested, configured string) (string, error) {
	if requested == "" {
		return configured, nil
	}

	personas, err := client.ListPersonas(ctx)
	if err != nil {
		// The backend rejects unknown ids with a clear error, so pass
		// the raw value through rather than failing the turn here.
		return requested, nil
	}

	for _, p := range personas {
		if p.ID == requested || strings.EqualFold(p.Name, requested) {
			return p.ID, nil
		}
	}

	return "", ErrInvalidArgument("persona", requested, "no persona with that id or name; see 'inkwell personas'")
}

// =============================================================================
// ANSWER DISPLAY
// =============================================================================

// displayAnswer prints the answer, rendered for terminals and plain
// for pipes.
func displayAnswer(msg *model.Message, args Args) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(msg.Content))
	} else {
		fmt.Println(msg.Content)
	}

	if args.Quiet {
		return
	}

	if line := formatAnswerReferences(msg.References); line != "" {
		fmt.Fprintln(os.Stderr, DimStyle.Render(line))
	}

	// Only announce a new conversation; continuing one needs no hint.
	if msg.SessionID != "" && args.SessionID == "" {
		fmt.Fprintln(os.Stderr, DimStyle.Render(
			fmt.Sprintf("Continue this conversation with: inkwell ask -s %s \"...\"", msg.SessionID)))
	}
}

// formatAnswerReferences renders the journal entries behind an answer.
func formatAnswerReferences(refs []model.EntryReference) string {
	if len(refs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		title := ref.Title
		if title == "" {
			title = "untitled entry"
		}
		if ref.Score > 0 {
			parts = append(parts, fmt.Sprintf("%s (%.0f%%)", title, ref.Score*100))
		} else {
			parts = append(parts, title)
		}
	}

	return "drawing on: " + strings.Join(parts, ", ")
}
