// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// personas_cmd.go - Persona commands for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: personas
// Short:   List and inspect companion personas
//
// Examples:
//   inkwell personas                   List personas
//   inkwell personas show per-3        Show one persona's prompt
//   inkwell personas default per-3     Make a persona the default
//   inkwell personas --json            List as JSON
//
// Personas live on the backend; "default" only records the choice in
// the local config, where new conversations pick it up.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// personasTimeout bounds one personas subcommand end to end.
const personasTimeout = 30 * time.Second

// =============================================================================
// PERSONAS COMMAND HANDLER
// =============================================================================

// HandlePersonas handles the "personas" command and its subcommands.
func HandlePersonas(args Args) error {
	parser := NewArgParser(args.Raw)

	ctx, cancel := context.WithTimeout(context.Background(), personasTimeout)
	defer cancel()

	cfg := LoadConfigLenient()
	client := BuildClient(cfg)

	switch parser.Subcommand() {
	case "", "list":
		return handlePersonasList(ctx, client, cfg, args)
	case "show":
		return handlePersonasShow(ctx, client, parser, args)
	case "default":
		return handlePersonasDefault(ctx, client, cfg, parser, args)
	default:
		return ErrInvalidArgument("subcommand", parser.Subcommand(),
			"expected list, show, or default")
	}
}

// =============================================================================
// LIST
// =============================================================================

func handlePersonasList(ctx context.Context, client *api.Client, cfg *config.Config, args Args) error {
	personas, err := client.ListPersonas(ctx)
	if err != nil {
		return NewCommandError("personas", "list", "could not reach the backend", err)
	}

	if args.JSON {
		return NewJSONResponse("personas list", personas).Print()
	}

	if len(personas) == 0 {
		fmt.Println(DimStyle.Render("No personas on the backend."))
		return nil
	}

	fmt.Println(TitleStyle.Render("Personas"))
	for _, p := range personas {
		markers := ""
		if p.IsDefault {
			markers += DimStyle.Render(" (backend default)")
		}
		if p.ID == cfg.Chat.DefaultPersonaID {
			markers += HighlightStyle.Render(" (yours)")
		}
		name := p.Name
		if p.Icon != "" {
			name = p.Icon + " " + name
		}
		fmt.Printf("  %s%s\n    %s\n",
			ValueStyle.Render(name), markers,
			DimStyle.Render(fmt.Sprintf("%s  %s", p.ID, truncateLine(p.Description, 72))))
	}
	return nil
}

// =============================================================================
// SHOW
// =============================================================================

func handlePersonasShow(ctx context.Context, client *api.Client, parser *ArgParser, args Args) error {
	nameOrID := parser.Positional(1)
	if nameOrID == "" {
		return ErrMissingArgument("persona", "inkwell personas show PERSONA")
	}

	persona, err := findPersona(ctx, client, nameOrID)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("personas show", persona).Print()
	}

	name := persona.Name
	if persona.Icon != "" {
		name = persona.Icon + " " + name
	}
	fmt.Println(TitleStyle.Render(name))
	fmt.Println(DimStyle.Render(persona.ID))
	if persona.Description != "" {
		fmt.Println()
		fmt.Println(WrapText(persona.Description, GetTerminalWidth()))
	}
	if persona.SystemPrompt != "" {
		fmt.Println(SectionStyle.Render("Prompt"))
		fmt.Println(DimStyle.Render(WrapText(persona.SystemPrompt, GetTerminalWidth())))
	}
	return nil
}

// =============================================================================
// DEFAULT
// =============================================================================

func handlePersonasDefault(ctx context.Context, client *api.Client, cfg *config.Config, parser *ArgParser, args Args) error {
	nameOrID := parser.Positional(1)
	if nameOrID == "" {
		return ErrMissingArgument("persona", "inkwell personas default PERSONA")
	}

	persona, err := findPersona(ctx, client, nameOrID)
	if err != nil {
		return err
	}

	cfg.Chat.DefaultPersonaID = persona.ID
	if err := config.Save(cfg); err != nil {
		return NewCommandError("personas", "default", "could not save config", err)
	}

	if args.JSON {
		return NewJSONResponse("personas default", map[string]string{"default_persona_id": persona.ID}).Print()
	}
	fmt.Println(SuccessStyle.Render("Default persona: ") + persona.Name)
	return nil
}

// findPersona resolves a persona by id or case-insensitive name.
func findPersona(ctx context.Context, client *api.Client, nameOrID string) (*model.Persona, error) {
	personas, err := client.ListPersonas(ctx)
	if err != nil {
		return nil, NewCommandError("personas", "list", "could not reach the backend", err)
	}

	for _, p := range personas {
		if p.ID == nameOrID || strings.EqualFold(p.Name, nameOrID) {
			return p, nil
		}
	}
	return nil, ErrInvalidArgument("persona", nameOrID, "no persona with that id or name")
}
