// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// SESSION LISTING
// =============================================================================

// Session list sort fields accepted by the backend.
const (
	SortUpdatedAt    = "updated_at"
	SortCreatedAt    = "created_at"
	SortLastAccessed = "last_accessed"
	SortTitle        = "title"
)

// ListOptions controls session list pagination and ordering.
type ListOptions struct {
	Page    int    // 1-based page number
	PerPage int    // page size
	SortBy  string // one of the Sort* constants
	Order   string // "asc" or "desc"
}

// normalize fills defaults and discards unknown sort fields so a stale
// config value cannot produce a backend validation error.
func (o ListOptions) normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PerPage < 1 {
		o.PerPage = 20
	}
	switch o.SortBy {
	case SortUpdatedAt, SortCreatedAt, SortLastAccessed, SortTitle:
	default:
		o.SortBy = SortUpdatedAt
	}
	if o.Order != "asc" && o.Order != "desc" {
		o.Order = "desc"
	}
	return o
}

// SessionPage is one page of the session list.
type SessionPage struct {
	Sessions []*model.Session `json:"sessions"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

// HasMore reports whether pages remain after this one.
func (p *SessionPage) HasMore() bool {
	return p.Page*p.PerPage < p.Total
}

// =============================================================================
// SESSION CRUD
// =============================================================================

// CreateSession creates a chat session. Most sessions are created
// lazily by the first streamed turn instead; this explicit path exists
// for pre-titled sessions.
func (c *Client) CreateSession(ctx context.Context, title string) (*model.Session, error) {
	body := map[string]string{}
	if title != "" {
		body["title"] = title
	}
	var sess model.Session
	if err := c.do(ctx, http.MethodPost, "/api/chat/sessions", body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetSession fetches a session without its messages.
func (c *Client) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	path := "/api/chat/sessions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListSessions returns one page of sessions sorted by the requested
// field and direction.
func (c *Client) ListSessions(ctx context.Context, opts ListOptions) (*SessionPage, error) {
	opts = opts.normalize()

	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("per_page", strconv.Itoa(opts.PerPage))
	q.Set("sort_by", opts.SortBy)
	q.Set("order", opts.Order)

	var page SessionPage
	if err := c.do(ctx, http.MethodGet, "/api/chat/sessions?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateSessionRequest carries the mutable session fields. Nil fields
// are left unchanged by the backend.
type UpdateSessionRequest struct {
	Title     *string `json:"title,omitempty"`
	PersonaID *string `json:"persona_id,omitempty"`
}

// UpdateSession updates a session's title or persona.
func (c *Client) UpdateSession(ctx context.Context, id string, req UpdateSessionRequest) (*model.Session, error) {
	var sess model.Session
	path := "/api/chat/sessions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, req, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteSession deletes a session and all its messages.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	path := "/api/chat/sessions/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// =============================================================================
// MESSAGE CRUD
// =============================================================================

// messagesEnvelope wraps the message list response.
type messagesEnvelope struct {
	Messages []*model.Message `json:"messages"`
}

// ListMessages returns a session's messages in chronological order.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]*model.Message, error) {
	var env messagesEnvelope
	path := "/api/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Messages, nil
}

// UpdateMessage replaces a message's content. The backend marks the
// message as edited in its metadata.
func (c *Client) UpdateMessage(ctx context.Context, sessionID, messageID, content string) (*model.Message, error) {
	var msg model.Message
	path := "/api/chat/sessions/" + url.PathEscape(sessionID) + "/messages/" + url.PathEscape(messageID)
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPut, path, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage deletes a single message.
func (c *Client) DeleteMessage(ctx context.Context, sessionID, messageID string) error {
	path := "/api/chat/sessions/" + url.PathEscape(sessionID) + "/messages/" + url.PathEscape(messageID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// deleteRangeResponse reports how many messages a range delete removed.
type deleteRangeResponse struct {
	Deleted int `json:"deleted"`
}

// DeleteMessageRange deletes the contiguous index range [start, end]
// from a session's message list and returns the number removed.
// Indices are zero-based positions in chronological order.
func (c *Client) DeleteMessageRange(ctx context.Context, sessionID string, start, end int) (int, error) {
	if start < 0 || end < start {
		return 0, fmt.Errorf("invalid message range [%d, %d]", start, end)
	}

	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	q.Set("end", strconv.Itoa(end))

	var out deleteRangeResponse
	path := "/api/chat/sessions/" + url.PathEscape(sessionID) + "/messages?" + q.Encode()
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

// referencesEnvelope wraps the reference list response.
type referencesEnvelope struct {
	References []model.EntryReference `json:"references"`
}

// GetMessageReferences fetches the entry references for one message.
// Used when a message reports has_references but the references were
// not inlined in the stream.
func (c *Client) GetMessageReferences(ctx context.Context, sessionID, messageID string) ([]model.EntryReference, error) {
	var env referencesEnvelope
	path := "/api/chat/sessions/" + url.PathEscape(sessionID) + "/messages/" + url.PathEscape(messageID) + "/references"
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.References, nil
}
