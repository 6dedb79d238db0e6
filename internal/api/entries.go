// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// ENTRY LISTING
// =============================================================================

// EntryListOptions filters and paginates the entry list.
type EntryListOptions struct {
	Page     int
	PerPage  int
	FolderID string // restrict to one folder
	Tag      string // restrict to one tag
	Favorite bool   // favorites only
}

// EntryPage is one page of journal entries.
type EntryPage struct {
	Entries []*model.Entry `json:"entries"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// HasMore reports whether pages remain after this one.
func (p *EntryPage) HasMore() bool {
	return p.Page*p.PerPage < p.Total
}

// ListEntries returns one page of journal entries, newest first.
func (c *Client) ListEntries(ctx context.Context, opts EntryListOptions) (*EntryPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 20
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("per_page", strconv.Itoa(opts.PerPage))
	if opts.FolderID != "" {
		q.Set("folder_id", opts.FolderID)
	}
	if opts.Tag != "" {
		q.Set("tag", opts.Tag)
	}
	if opts.Favorite {
		q.Set("favorite", "true")
	}

	var page EntryPage
	if err := c.do(ctx, http.MethodGet, "/api/entries?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetEntry fetches a single entry with its full content.
func (c *Client) GetEntry(ctx context.Context, id string) (*model.Entry, error) {
	var entry model.Entry
	path := "/api/entries/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// =============================================================================
// ENTRY MUTATION
// =============================================================================

// EntryRequest carries the writable entry fields for create and update.
type EntryRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
	FolderID string   `json:"folder_id,omitempty"`
	Mood     string   `json:"mood,omitempty"`
	Favorite bool     `json:"favorite,omitempty"`
}

// CreateEntry creates a journal entry.
func (c *Client) CreateEntry(ctx context.Context, req EntryRequest) (*model.Entry, error) {
	var entry model.Entry
	if err := c.do(ctx, http.MethodPost, "/api/entries", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry replaces an entry's writable fields.
func (c *Client) UpdateEntry(ctx context.Context, id string, req EntryRequest) (*model.Entry, error) {
	var entry model.Entry
	path := "/api/entries/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry deletes an entry and its attachments.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	path := "/api/entries/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// =============================================================================
// TAGS AND FOLDERS
// =============================================================================

// tagsEnvelope wraps the tag list response.
type tagsEnvelope struct {
	Tags []model.Tag `json:"tags"`
}

// ListTags returns all tags with their usage counts.
func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var env tagsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/entries/tags", nil, &env); err != nil {
		return nil, err
	}
	return env.Tags, nil
}

// foldersEnvelope wraps the folder list response.
type foldersEnvelope struct {
	Folders []model.Folder `json:"folders"`
}

// ListFolders returns all folders with their entry counts.
func (c *Client) ListFolders(ctx context.Context) ([]model.Folder, error) {
	var env foldersEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/folders", nil, &env); err != nil {
		return nil, err
	}
	return env.Folders, nil
}

// =============================================================================
// IMAGE ATTACHMENTS
// =============================================================================

// imagesEnvelope wraps the image list response.
type imagesEnvelope struct {
	Images []model.EntryImage `json:"images"`
}

// ListEntryImages returns the image attachments for an entry.
func (c *Client) ListEntryImages(ctx context.Context, entryID string) ([]model.EntryImage, error) {
	var env imagesEnvelope
	path := "/api/entries/" + url.PathEscape(entryID) + "/images"
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Images, nil
}

// AttachImage uploads an image attachment as multipart form data.
// Uploads are not retried; a duplicate attachment is worse than asking
// the user to try again.
func (c *Client) AttachImage(ctx context.Context, entryID, filename string, data io.Reader, caption string) (*model.EntryImage, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	path := "/api/entries/" + url.PathEscape(entryID) + "/images"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := sharedHTTPClient.Do(req)
	req.Header.Del("Authorization")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleErrorResponse(resp, body)
	}

	var img model.EntryImage
	if err := json.Unmarshal(body, &img); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &img, nil
}

// DeleteImage removes an image attachment from an entry.
func (c *Client) DeleteImage(ctx context.Context, entryID, imageID string) error {
	path := "/api/entries/" + url.PathEscape(entryID) + "/images/" + url.PathEscape(imageID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
