// Package models defines the domain types for hyprtext.
package models

import (
	"path/filepath"
	"strings"
)

// UntitledTitle labels documents that have no backing file.
const UntitledTitle = "untitled"

// Document is one open editable unit of text. An empty Path means the
// document is Unbound (never saved).
type Document struct {
	ID     int    `json:"id"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Buffer string `json:"-"`
}

// Bound reports whether the document has a backing file path.
func (d *Document) Bound() bool {
	return d.Path != ""
}

// IsMarkdown reports whether the backing file has a .md extension.
func (d *Document) IsMarkdown() bool {
	return IsMarkdownPath(d.Path)
}

// IsMarkdownPath reports whether path names a Markdown file.
func IsMarkdownPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// DefaultTitle returns the file name of path, or UntitledTitle when path is empty.
func DefaultTitle(path string) string {
	if path == "" {
		return UntitledTitle
	}
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		return UntitledTitle
	}
	return name
}

// DocumentSummary is a lightweight view of a document in tab order.
type DocumentSummary struct {
	ID       int    `json:"id"`
	Index    int    `json:"index"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Active   bool   `json:"active"`
	Bound    bool   `json:"bound"`
	Markdown bool   `json:"markdown"`
	Size     int    `json:"size"`
}
