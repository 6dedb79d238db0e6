// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat view.
package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/session"
	"github.com/jeranaias/inkwell-tui/internal/storage"
	"github.com/jeranaias/inkwell-tui/internal/vault"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/load <session_id>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypeSession                // Session ID from the backend list
	ArgTypePersona                // Persona name
	ArgTypeTag                    // Entry tag name
	ArgTypeEnum                   // One of predefined values
	ArgTypeConfig                 // Config key in dot notation
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Usage:       "/help [quick|all|<category>]",
		Args: []ArgDef{
			{
				Name:        "mode",
				Type:        ArgTypeEnum,
				Values:      []string{"quick", "all", "navigation", "conversation", "journal", "settings"},
				Description: "Help mode or category",
			},
		},
		Category: "Navigation",
		Handler:  HandleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit inkwell",
		Category:    "Navigation",
		Handler:     HandleQuit,
	})

	r.Register(&Command{
		Name:        "/status",
		Description: "Show backend, session, and lock status",
		Category:    "Navigation",
		Handler:     HandleStatus,
	})

	r.Register(&Command{
		Name:        "/lock",
		Description: "Show journal lock status or lock now",
		Usage:       "/lock [now]",
		Args: []ArgDef{
			{Name: "action", Type: ArgTypeEnum, Values: []string{"now"}, Description: "Lock immediately"},
		},
		Category: "Navigation",
		Handler:  HandleLock,
	})

	// Conversation
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new conversation",
		Category:    "Conversation",
		Handler:     HandleNew,
	})

	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/list"},
		Description: "List saved sessions",
		Category:    "Conversation",
		Handler:     HandleSessions,
	})

	r.Register(&Command{
		Name:        "/load",
		Aliases:     []string{"/l", "/resume"},
		Description: "Load a saved session",
		Usage:       "/load <session_id>",
		Args: []ArgDef{
			{Name: "session_id", Required: true, Type: ArgTypeSession, Description: "ID of the session to load"},
		},
		Category: "Conversation",
		Handler:  HandleLoad,
	})

	r.Register(&Command{
		Name:        "/rename",
		Description: "Rename the current session",
		Usage:       "/rename <title>",
		Args: []ArgDef{
			{Name: "title", Required: true, Type: ArgTypeString, Description: "New session title"},
		},
		Category: "Conversation",
		Handler:  HandleRename,
	})

	r.Register(&Command{
		Name:        "/delete",
		Aliases:     []string{"/del"},
		Description: "Delete the current or a named session",
		Usage:       "/delete [session_id]",
		Args: []ArgDef{
			{Name: "session_id", Type: ArgTypeSession, Description: "Session to delete (default: current)"},
		},
		Category: "Conversation",
		Handler:  HandleDelete,
	})

	r.Register(&Command{
		Name:        "/persona",
		Aliases:     []string{"/p"},
		Description: "List personas or apply one to this session",
		Usage:       "/persona [name]",
		Args: []ArgDef{
			{Name: "name", Type: ArgTypePersona, Description: "Persona to apply"},
		},
		Category: "Conversation",
		Handler:  HandlePersona,
	})

	r.Register(&Command{
		Name:        "/copy",
		Description: "Copy the last response to the clipboard",
		Category:    "Conversation",
		Handler:     HandleCopy,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the conversation to a file",
		Usage:       "/export [markdown|json]",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: []string{"markdown", "md", "json"}, Description: "Export format"},
		},
		Category: "Conversation",
		Handler:  HandleExport,
	})

	r.Register(&Command{
		Name:        "/retry",
		Description: "Send the last message again",
		Category:    "Conversation",
		Handler:     HandleRetry,
	})

	r.Register(&Command{
		Name:        "/reset",
		Description: "Discard the failed turn and keep the transcript",
		Category:    "Conversation",
		Handler:     HandleReset,
	})

	r.Register(&Command{
		Name:        "/undo",
		Description: "Take back the last exchange and re-edit your words",
		Category:    "Conversation",
		Handler:     HandleUndo,
	})

	// Journal
	r.Register(&Command{
		Name:        "/search",
		Aliases:     []string{"/find"},
		Description: "Search journal entries",
		Usage:       "/search <query>",
		Args: []ArgDef{
			{Name: "query", Required: true, Type: ArgTypeString, Description: "Text to search for"},
		},
		Category: "Journal",
		Handler:  HandleSearch,
	})

	r.Register(&Command{
		Name:        "/entries",
		Aliases:     []string{"/e"},
		Description: "Browse journal entries",
		Usage:       "/entries [tag]",
		Args: []ArgDef{
			{Name: "tag", Type: ArgTypeTag, Description: "Only entries carrying this tag"},
		},
		Category: "Journal",
		Handler:  HandleEntries,
	})

	r.Register(&Command{
		Name:        "/analyze",
		Description: "Open batch analyses of journal entries",
		Category:    "Journal",
		Handler:     HandleAnalyze,
	})

	// Settings
	r.Register(&Command{
		Name:        "/theme",
		Description: "Show or change the color theme",
		Usage:       "/theme [name]",
		Args: []ArgDef{
			{Name: "name", Type: ArgTypeEnum, Values: []string{"inkwell-dark", "inkwell-light"}, Description: "Theme name"},
		},
		Category: "Settings",
		Handler:  HandleTheme,
	})

	r.Register(&Command{
		Name:        "/config",
		Description: "Show or edit configuration",
		Usage:       "/config [key] [value]",
		Args: []ArgDef{
			{Name: "key", Type: ArgTypeConfig, Description: "Config key to show/set"},
			{Name: "value", Type: ArgTypeString, Description: "New value"},
		},
		Category: "Settings",
		Handler:  HandleConfig,
	})
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application services for command handlers.
// It follows the dependency injection pattern, allowing handlers to reach
// the backend client and local state without coupling to the app model.
//
// All fields are optional and may be nil - handlers check before use.
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Client talks to the journaling backend
	Client *api.Client

	// Session manages active-session state and the relock clock
	Session *session.Manager

	// Cache is the local entry mirror used for offline browsing
	Cache *storage.EntryCache

	// Lock is the TOTP journal lock, nil when never enrolled
	Lock *vault.Lock
}

// NewContext creates a new command context with the given dependencies.
// All parameters are optional and can be nil.
func NewContext(cfg *config.Config, client *api.Client, sess *session.Manager, cache *storage.EntryCache, lock *vault.Lock) *Context {
	return &Context{
		Config:  cfg,
		Client:  client,
		Session: sess,
		Cache:   cache,
		Lock:    lock,
	}
}

// RecordActivity resets the idle clock in the session manager if available.
func (c *Context) RecordActivity() {
	if c.Session != nil {
		c.Session.RecordActivity()
	}
}

// MarkDirty marks the session state as having unsaved changes.
func (c *Context) MarkDirty() {
	if c.Session != nil {
		c.Session.MarkDirty()
	}
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text (may include formatting)
	Display string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int

	// IsCurrent indicates this is the current selection
	IsCurrent bool
}
