// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for inkwell.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdEntries
	CmdSearch
	CmdAnalyze
	CmdPersonas
	CmdConfig
	CmdSetup
	CmdLock
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool   // machine-readable output where supported
	Persona string // persona id or name for ask/chat

	// Command-specific
	Query      string // ask/search query text
	File       string // file whose contents are folded into an ask prompt
	SessionID  string // conversation to continue for ask/chat
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `inkwell - a journaling companion for your terminal

Inkwell is the terminal client for a self-hosted journaling backend.
Your words stay on machines you control.

It provides:
  - A TUI for talking with a companion that has read your journal
  - One-shot questions and a line-mode chat for scripts and SSH
  - Entry browsing, search, and Markdown/JSON export
  - An offline entry cache so reading never needs the network
  - An optional app lock (TOTP) for shared machines

Usage:
  inkwell                        Start the TUI (default)
  inkwell ask "question"         One question, one rendered answer
  inkwell chat                   Line-mode chat without the TUI
  inkwell sessions [subcommand]  List, show, export, delete conversations
  inkwell entries [subcommand]   List, show, export journal entries
  inkwell search <query>         Search journal entries
  inkwell analyze [subcommand]   Reflections across many entries
  inkwell personas               List companion personas
  inkwell config [get|set]       Configuration
  inkwell setup                  First-run wizard
  inkwell lock [subcommand]      App lock (TOTP) management
  inkwell status, s              Backend and connection status
  inkwell version                Show version
  inkwell help                   Show this help

Ask (one shot):
  inkwell ask "what did I write about the garden last spring?"
  inkwell ask --file draft.md "help me finish this entry"
  cat notes.txt | inkwell ask "what is the mood of this?"
    -f, --file FILE              Include a file in the prompt
    -p, --persona NAME           Answer as a specific persona
    -s, --session ID             Continue an existing conversation

Chat (line mode):
  inkwell chat                   Start a fresh conversation
  inkwell chat -s SESSION        Pick up where you left off
  Inside chat: /help /new /sessions /load /persona /quit

Sessions:
  inkwell sessions               List conversations
  inkwell sessions show ID       Print a conversation transcript
  inkwell sessions export ID     Write a transcript file
    --format markdown|json       Export format (default markdown)
    --output DIR                 Target directory (default ~/.inkwell/exports)
  inkwell sessions delete ID     Delete one conversation
  inkwell sessions delete --all  Delete every conversation

Entries:
  inkwell entries                List journal entries
  inkwell entries show ID        Print one entry
  inkwell entries export ID      Write the entry as Markdown
  inkwell entries tags           List tags with counts
    --tag NAME                   Restrict the list to one tag
    --favorite                   Favorites only
    --limit N                    Page size (default 20)

Search:
  inkwell search morning pages   Text search, newest first
  inkwell search --semantic "feeling stuck"   Meaning-based search
    --tag NAME                   Require a tag
    --limit N                    Result count (default 10)

Analyze:
  inkwell analyze                List past analyses
  inkwell analyze show ID        Print one analysis
  inkwell analyze run --type summary --title "March" --entries ID,ID

Config:
  inkwell config                 List all settings
  inkwell config get backend.base_url
  inkwell config set appearance.theme dark
  inkwell config path            Print the config file path

Lock:
  inkwell lock status            Show lock state
  inkwell lock enable            Enroll an authenticator app
  inkwell lock verify            Check a code against the enrollment
  inkwell lock disable           Turn the lock off

Global flags:
  -q, --quiet                    Suppress decorative output
  -v, --verbose                  More detail where available
      --json                     Machine-readable output (lists, status)
      --persona NAME             Persona for ask and chat

Environment:
  INKWELL_BACKEND_URL            Override the backend address
  INKWELL_API_KEY                Override the API key
  NO_COLOR                       Disable colored output

Data lives under ~/.inkwell (config, entry cache, exports, logs).

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("inkwell version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) error {
	return OutputJSON(args.JSON, "version", func() (interface{}, error) {
		if !args.JSON {
			PrintVersion()
		}
		return VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
		}, nil
	})
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	// Check first argument for command
	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		// Parse ask-specific flags and query
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		// Parse chat-specific flags
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "sessions", "session":
		// Argument parsing is done in sessions_cmd.go HandleSessions
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdSessions, parsedArgs

	case "entries", "entry":
		// Argument parsing is done in entries_cmd.go HandleEntries
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdEntries, parsedArgs

	case "search", "find":
		// Argument parsing is done in search_cmd.go HandleSearch
		return CmdSearch, parsedArgs

	case "analyze", "analysis":
		// Argument parsing is done in analyze_cmd.go HandleAnalyze
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdAnalyze, parsedArgs

	case "personas", "persona":
		// Argument parsing is done in personas_cmd.go HandlePersonas
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdPersonas, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "setup":
		parseSetupArgs(&parsedArgs, remaining)
		return CmdSetup, parsedArgs

	case "lock":
		// Argument parsing is done in lock_cmd.go HandleLock
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdLock, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command - restore the token so the TUI (or a future
		// command) can see the full argument list.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdTUI, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--persona":
			if i+1 < len(args) {
				i++
				parsedArgs.Persona = args[i]
			}
		default:
			// Check for --persona=value format
			if strings.HasPrefix(arg, "--persona=") {
				parsedArgs.Persona = strings.TrimPrefix(arg, "--persona=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		case "-p", "--persona":
			if i+1 < len(remaining) {
				i++
				args.Persona = remaining[i]
			}
		case "-s", "--session":
			if i+1 < len(remaining) {
				i++
				args.SessionID = remaining[i]
			}
		default:
			// Check for --flag=value formats
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			} else if strings.HasPrefix(arg, "--persona=") {
				args.Persona = strings.TrimPrefix(arg, "--persona=")
			} else if strings.HasPrefix(arg, "--session=") {
				args.SessionID = strings.TrimPrefix(arg, "--session=")
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-s", "--session":
			if i+1 < len(remaining) {
				i++
				args.SessionID = remaining[i]
			}
		case "-p", "--persona":
			if i+1 < len(remaining) {
				i++
				args.Persona = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--session=") {
				args.SessionID = strings.TrimPrefix(arg, "--session=")
			} else if strings.HasPrefix(arg, "--persona=") {
				args.Persona = strings.TrimPrefix(arg, "--persona=")
			}
		}
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	args.Raw = remaining
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// parseSetupArgs parses setup command specific arguments.
func parseSetupArgs(args *Args, remaining []string) {
	args.Raw = remaining
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		args.Subcommand = remaining[0]
	}
}
