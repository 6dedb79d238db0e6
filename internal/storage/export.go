// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// EXPORT FORMATS
// =============================================================================

// Format selects a transcript export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned for format strings ParseFormat does not
// recognize.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps user input to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".md"
}

// DefaultExportDir returns ~/.inkwell/exports.
func DefaultExportDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "exports"), nil
}

// =============================================================================
// SESSION TRANSCRIPTS
// =============================================================================

// SessionMarkdown renders a session as a Markdown transcript. Error-role
// placeholders are local UI artifacts and are left out.
func SessionMarkdown(s *model.Session) string {
	var sb strings.Builder

	title := s.Title
	if title == "" {
		title = "Session " + s.ID
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("Created: " + s.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range s.Messages {
		if msg.Role == model.RoleError {
			continue
		}
		sb.WriteString("**" + msg.Role.DisplayName() + "**")
		if !msg.CreatedAt.IsZero() {
			sb.WriteString(" (" + msg.CreatedAt.Format("2006-01-02 15:04") + ")")
		}
		sb.WriteString(":\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")

		if len(msg.References) > 0 {
			sb.WriteString("> Drew on " + pluralize(len(msg.References), "journal entry", "journal entries"))
			var titles []string
			for _, ref := range msg.References {
				if ref.Title != "" {
					titles = append(titles, ref.Title)
				}
			}
			if len(titles) > 0 {
				sb.WriteString(": " + strings.Join(titles, ", "))
			}
			sb.WriteString("\n\n")
		}

		sb.WriteString("---\n\n")
	}

	return sb.String()
}

// SessionJSON renders a session as pretty-printed JSON.
func SessionJSON(s *model.Session) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ExportSession writes a session transcript into dir and returns the
// written path. An empty dir uses the default export directory.
func ExportSession(s *model.Session, format Format, dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = DefaultExportDir()
		if err != nil {
			return "", err
		}
	}

	var data []byte
	switch format {
	case FormatJSON:
		var err error
		data, err = SessionJSON(s)
		if err != nil {
			return "", fmt.Errorf("failed to render session: %w", err)
		}
	default:
		data = []byte(SessionMarkdown(s))
	}

	name := exportFileName("session", s.Title, s.ID) + format.Ext()
	path := filepath.Join(dir, name)
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// =============================================================================
// ENTRY EXPORT
// =============================================================================

// entryFrontmatter is the YAML header on exported entries. The layout
// matches what common Markdown journal importers expect.
type entryFrontmatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Tags     []string `yaml:"tags,omitempty"`
	Mood     string   `yaml:"mood,omitempty"`
	Favorite bool     `yaml:"favorite,omitempty"`
}

// EntryMarkdown renders a journal entry as Markdown with YAML
// frontmatter.
func EntryMarkdown(e *model.Entry) ([]byte, error) {
	fm := entryFrontmatter{
		Title:    e.Title,
		Date:     e.CreatedAt.Format("2006-01-02"),
		Tags:     e.Tags,
		Mood:     e.Mood,
		Favorite: e.Favorite,
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("failed to render frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(e.Content)
	if !strings.HasSuffix(e.Content, "\n") {
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// ExportEntry writes an entry as Markdown into dir and returns the
// written path. An empty dir uses the default export directory.
func ExportEntry(e *model.Entry, dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = DefaultExportDir()
		if err != nil {
			return "", err
		}
	}

	data, err := EntryMarkdown(e)
	if err != nil {
		return "", err
	}

	name := exportFileName("entry", e.Title, e.ID) + ".md"
	path := filepath.Join(dir, name)
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// exportFileName builds "<kind>-<slug-or-id>-<stamp>". The title slug
// keeps exports recognizable in a directory listing; ids are the
// fallback for untitled content.
func exportFileName(kind, title, id string) string {
	slug := slugify(title)
	if slug == "" {
		slug = shortID(id)
	}
	stamp := time.Now().Format("20060102-150405")
	return kind + "-" + slug + "-" + stamp
}

// slugify reduces a title to lowercase ASCII words joined by hyphens.
func slugify(s string) string {
	var sb strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteRune('-')
				lastHyphen = true
			}
		}
		if sb.Len() >= 40 {
			break
		}
	}
	return strings.Trim(sb.String(), "-")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "untitled"
	}
	return id
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}
