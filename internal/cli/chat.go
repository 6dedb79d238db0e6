// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat command for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: chat
// Short:   Talk with the companion without the TUI
//
// Examples:
//   inkwell chat                    Start a fresh conversation
//   inkwell chat -s sess-42         Continue a conversation
//   inkwell chat -p "Quiet Friend"  Use a specific persona
//
// Slash commands inside chat:
//   /help            Show commands
//   /new             Start a fresh conversation
//   /sessions        List recent conversations
//   /load ID         Switch to another conversation
//   /persona [NAME]  Show or switch persona
//   /status          Show connection and conversation state
//   /quit            Leave (exit and quit work too)
//
// The line mode exists for SSH sessions and scripts where the full TUI
// is too much. Replies stream token by token; Ctrl+C stops the current
// reply without leaving chat, and Ctrl+D or /quit leaves.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/config"
)

// chatHistoryFile is the readline history file under the config dir.
const chatHistoryFile = "chat_history"

// =============================================================================
// LINE EDITOR WRAPPER
// =============================================================================

// ChatCLI wraps the liner line editor with persistent history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the
// config directory.
func NewChatCLI() (*ChatCLI, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile := ""
	if dir, err := config.Dir(); err == nil {
		historyFile = filepath.Join(dir, chatHistoryFile)
	}

	c := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	c.LoadHistory()
	return c, nil
}

// LoadHistory reads past inputs so up-arrow works across runs.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line of input. Non-empty lines are appended to
// the in-memory history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists the input history. The file is journal-adjacent
// content, so it gets the same 0600 as everything else under ~/.inkwell.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close restores the terminal state.
func (c *ChatCLI) Close() {
	c.line.Close()
}

// =============================================================================
// CHAT STATE
// =============================================================================

// chatState carries one line-mode conversation across turns.
type chatState struct {
	client *api.Client
	cfg    *config.Config

	sessionID   string
	personaID   string
	personaName string

	turns   int
	started time.Time

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the in-flight turn, nil between turns
}

// beginTurn installs the cancel func for the current turn.
func (s *chatState) beginTurn(cancel context.CancelFunc) {
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
}

// endTurn clears the cancel func.
func (s *chatState) endTurn() {
	s.mu.Lock()
	s.cancel = nil
	s.mu.Unlock()
}

// interrupt cancels the in-flight turn, if any. Called from the signal
// handler goroutine.
func (s *chatState) interrupt() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
}

// =============================================================================
// CHAT COMMAND HANDLER
// =============================================================================

// HandleChat handles the "chat" command: a line-mode REPL.
func HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	cfg := LoadConfigLenient()
	client := BuildClient(cfg)

	state := &chatState{
		client:  client,
		cfg:     cfg,
		started: time.Now(),
	}

	ctx, cancelSetup := context.WithTimeout(context.Background(), 10*time.Second)
	personaID, err := resolvePersona(ctx, client, args.Persona, cfg.Chat.DefaultPersonaID)
	cancelSetup()
	if err != nil {
		return err
	}
	state.personaID = personaID
	state.personaName = args.Persona

	if args.SessionID != "" {
		if err := loadChatSession(state, args.SessionID); err != nil {
			return err
		}
	}

	cli, err := NewChatCLI()
	if err != nil {
		return NewCommandError("chat", "start", "could not initialize the line editor", err)
	}
	defer cli.Close()

	// Ctrl+C during a streaming reply stops the reply, not the chat.
	// During input, liner turns Ctrl+C into ErrPromptAborted instead.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			state.interrupt()
		}
	}()

	printChatWelcome(state, args)

	prompt := HighlightStyle.Render("inkwell> ")
	for {
		input, err := cli.ReadInput(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Println()
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := handleChatSlash(state, input)
			if err != nil {
				fmt.Println(ErrorStyle.Render("error: ") + err.Error())
			}
			if !keepGoing {
				break
			}
			continue
		}

		if input == "exit" || input == "quit" {
			break
		}

		runChatTurn(state, input)
	}

	cli.SaveHistory()
	printChatSummary(state)
	return nil
}

// loadChatSession verifies a session exists and adopts it.
func loadChatSession(state *chatState, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sess, err := state.client.GetSession(ctx, id)
	if err != nil {
		return NewCommandError("chat", "load", fmt.Sprintf("conversation %s", id), err)
	}

	state.sessionID = sess.ID
	title := sess.Title
	if title == "" {
		title = sess.ID
	}
	fmt.Println(DimStyle.Render("Picking up: " + title))
	return nil
}

// =============================================================================
// TURN PROCESSING
// =============================================================================

// runChatTurn sends one message and prints the streamed reply.
func runChatTurn(state *chatState, text string) {
	ctx, cancel := context.WithCancel(context.Background())
	state.beginTurn(cancel)
	defer func() {
		state.endTurn()
		cancel()
	}()

	req := api.SendRequest{
		SessionID: state.sessionID,
		Content:   text,
		PersonaID: state.personaID,
	}

	fmt.Println()
	if state.cfg.Chat.Streaming {
		if streamChatReply(ctx, state, req) {
			state.turns++
			fmt.Println()
			return
		}
		// Streaming endpoint failed before any text arrived; one quiet
		// retry on the plain endpoint.
		if ctx.Err() != nil {
			fmt.Println(DimStyle.Render("(stopped)"))
			fmt.Println()
			return
		}
	}

	msg, err := state.client.ProcessMessage(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println(DimStyle.Render("(stopped)"))
		} else {
			fmt.Println(ErrorStyle.Render("error: ") + err.Error())
		}
		fmt.Println()
		return
	}

	if msg.SessionID != "" {
		state.sessionID = msg.SessionID
	}
	fmt.Println(strings.TrimSpace(msg.Content))
	if line := formatAnswerReferences(msg.References); line != "" {
		fmt.Println(DimStyle.Render(line))
	}
	state.turns++
	fmt.Println()
}

// streamChatReply prints fragments as they arrive. Returns true when a
// reply (even a partial, interrupted one) was printed, false when the
// stream failed before producing anything.
func streamChatReply(ctx context.Context, state *chatState, req api.SendRequest) bool {
	stream, err := state.client.StreamMessage(ctx, req)
	if err != nil {
		return false
	}
	defer stream.Close()

	printedAny := false
	var refsLine string

	for {
		ev, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !printedAny {
				return false
			}
			fmt.Println()
			fmt.Println(DimStyle.Render("(connection lost; partial reply above)"))
			break
		}

		switch ev.Kind {
		case api.EventMeta:
			if ev.Meta != nil {
				if ev.Meta.SessionID != "" {
					state.sessionID = ev.Meta.SessionID
				}
				refsLine = formatAnswerReferences(ev.Meta.References)
			}
		case api.EventText:
			fmt.Print(ev.Text)
			printedAny = true
		case api.EventError:
			if !printedAny {
				return false
			}
			fmt.Println()
			fmt.Println(ErrorStyle.Render("error: ") + ev.Text)
		}
	}

	if ctx.Err() != nil && printedAny {
		fmt.Println()
		fmt.Println(DimStyle.Render("(stopped; partial reply kept)"))
	}

	if printedAny {
		fmt.Println()
		if refsLine != "" {
			fmt.Println(DimStyle.Render(refsLine))
		}
	}

	return printedAny
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleChatSlash dispatches a slash command. Returns false when the
// REPL should exit.
func handleChatSlash(state *chatState, input string) (bool, error) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	arg := strings.Join(parts[1:], " ")

	switch cmd {
	case "/help", "/h":
		printChatHelp()
		return true, nil

	case "/new":
		state.sessionID = ""
		fmt.Println(DimStyle.Render("Started a fresh conversation."))
		return true, nil

	case "/sessions", "/list":
		return true, printChatSessions(state)

	case "/load":
		if arg == "" {
			return true, ErrMissingArgument("session id", "/load SESSION-ID")
		}
		return true, loadChatSession(state, arg)

	case "/persona":
		return true, switchChatPersona(state, arg)

	case "/status":
		printChatStatus(state)
		return true, nil

	case "/quit", "/exit", "/q":
		return false, nil

	default:
		fmt.Println(DimStyle.Render("Unknown command " + cmd + "; /help lists commands."))
		return true, nil
	}
}

// printChatSessions lists recent conversations for /load.
func printChatSessions(state *chatState) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	page, err := state.client.ListSessions(ctx, api.ListOptions{PerPage: 10})
	if err != nil {
		return NewCommandError("chat", "list sessions", "could not reach the backend", err)
	}

	if len(page.Sessions) == 0 {
		fmt.Println(DimStyle.Render("No conversations yet."))
		return nil
	}

	for _, s := range page.Sessions {
		marker := "  "
		if s.ID == state.sessionID {
			marker = HighlightStyle.Render("> ")
		}
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s%s  %s %s\n",
			marker,
			ValueStyle.Render(truncateLine(title, 48)),
			DimStyle.Render(s.ID),
			DimStyle.Render(formatRelativeTime(s.UpdatedAt)))
	}
	return nil
}

// switchChatPersona shows or changes the active persona.
func switchChatPersona(state *chatState, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	personas, err := state.client.ListPersonas(ctx)
	if err != nil {
		return NewCommandError("chat", "list personas", "could not reach the backend", err)
	}

	if name == "" {
		for _, p := range personas {
			marker := "  "
			if p.ID == state.personaID || (state.personaID == "" && p.IsDefault) {
				marker = HighlightStyle.Render("> ")
			}
			fmt.Printf("%s%s  %s\n", marker, ValueStyle.Render(p.Name), DimStyle.Render(p.Description))
		}
		return nil
	}

	for _, p := range personas {
		if p.ID == name || strings.EqualFold(p.Name, name) {
			state.personaID = p.ID
			state.personaName = p.Name
			// The persona applies to the next turn; switching does not
			// rewrite the conversation so far.
			fmt.Println(DimStyle.Render("Persona switched to " + p.Name + "."))
			return nil
		}
	}

	return ErrInvalidArgument("persona", name, "no persona with that id or name")
}

// printChatStatus shows connection and conversation state.
func printChatStatus(state *chatState) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	backend := "connected"
	if err := state.client.Ping(ctx); err != nil {
		backend = "unreachable"
	}

	fmt.Printf("%s %s\n", RenderLabel("Backend"), ValueStyle.Render(state.client.BaseURL())+" "+RenderStatus(backend))
	sessionDesc := "(new)"
	if state.sessionID != "" {
		sessionDesc = state.sessionID
	}
	fmt.Printf("%s %s\n", RenderLabel("Conversation"), ValueStyle.Render(sessionDesc))
	persona := state.personaName
	if persona == "" {
		persona = "(default)"
	}
	fmt.Printf("%s %s\n", RenderLabel("Persona"), ValueStyle.Render(persona))
	fmt.Printf("%s %s\n", RenderLabel("Turns"), ValueStyle.Render(fmt.Sprintf("%d", state.turns)))
}

// =============================================================================
// DISPLAY
// =============================================================================

func printChatWelcome(state *chatState, args Args) {
	if args.Quiet {
		return
	}
	fmt.Println()
	fmt.Println(TitleStyle.Render("What's on your mind?"))
	fmt.Println(DimStyle.Render("Enter sends. /help lists commands. Ctrl+C stops a reply, /quit leaves."))
	fmt.Println()
}

func printChatHelp() {
	fmt.Println()
	fmt.Println(SectionStyle.Render("Commands"))
	fmt.Println("  /help            Show this help")
	fmt.Println("  /new             Start a fresh conversation")
	fmt.Println("  /sessions        List recent conversations")
	fmt.Println("  /load ID         Switch to another conversation")
	fmt.Println("  /persona [NAME]  Show or switch persona")
	fmt.Println("  /status          Connection and conversation state")
	fmt.Println("  /quit            Leave")
	fmt.Println()
}

func printChatSummary(state *chatState) {
	if state.turns == 0 {
		return
	}
	fmt.Println(DimStyle.Render(fmt.Sprintf(
		"%d exchange(s) over %s. Your words are saved.",
		state.turns, formatCLIDuration(time.Since(state.started)))))
	if state.sessionID != "" {
		fmt.Println(DimStyle.Render("Pick this up again with: inkwell chat -s " + state.sessionID))
	}
}
