// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// PERSONAS
// =============================================================================

// PersonaRequest carries the writable persona fields.
type PersonaRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	SystemPrompt string `json:"system_prompt"`
	Icon         string `json:"icon,omitempty"`
	IsDefault    bool   `json:"is_default,omitempty"`
}

// personasEnvelope wraps the persona list response.
type personasEnvelope struct {
	Personas []*model.Persona `json:"personas"`
}

// ListPersonas returns all personas.
func (c *Client) ListPersonas(ctx context.Context) ([]*model.Persona, error) {
	var env personasEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/personas", nil, &env); err != nil {
		return nil, err
	}
	return env.Personas, nil
}

// CreatePersona creates a persona. Setting IsDefault clears the flag on
// the previous default.
func (c *Client) CreatePersona(ctx context.Context, req PersonaRequest) (*model.Persona, error) {
	var p model.Persona
	if err := c.do(ctx, http.MethodPost, "/api/personas", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePersona replaces a persona's writable fields.
func (c *Client) UpdatePersona(ctx context.Context, id string, req PersonaRequest) (*model.Persona, error) {
	var p model.Persona
	path := "/api/personas/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePersona deletes a persona. Sessions pinned to it fall back to
// the default persona on their next turn.
func (c *Client) DeletePersona(ctx context.Context, id string) error {
	path := "/api/personas/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetDefaultPersona returns the persona used when a session does not
// pin one. Returns ErrNotFound when no default is configured.
func (c *Client) GetDefaultPersona(ctx context.Context) (*model.Persona, error) {
	var p model.Persona
	if err := c.do(ctx, http.MethodGet, "/api/personas/default", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
