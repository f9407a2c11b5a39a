package api

import (
	"github.com/starford/hyprtext/internal/history"
	"github.com/starford/hyprtext/internal/linesort"
	"github.com/starford/hyprtext/internal/models"
	"github.com/starford/hyprtext/internal/session"
)

// DocumentSummary describes one open document (aliased from the domain layer).
type DocumentSummary = models.DocumentSummary

// Match is one fuzzy search hit (aliased from the domain layer).
type Match = session.Match

// RecentEntry is one recent-files row (aliased from the domain layer).
type RecentEntry = history.Entry

// OpenRequest opens path, or creates an Unbound document when path is empty.
type OpenRequest struct {
	Path string `json:"path,omitempty" example:"/home/me/todo.txt"`
}

// DocumentDetail is a document with its full text.
type DocumentDetail struct {
	DocumentSummary
	Text   string            `json:"text" validate:"required"`
	Cursor linesort.Position `json:"cursor"`
}

// EditRequest replaces the document text as a user edit.
type EditRequest struct {
	Text   string             `json:"text" example:"buy milk-\ncall mom!" validate:"required"`
	Cursor *linesort.Position `json:"cursor,omitempty"`
}

// SortResponse reports the outcome of an immediate sort.
type SortResponse struct {
	Document DocumentSummary `json:"document" validate:"required"`
	Changed  bool            `json:"changed"`
}

// SaveRequest saves in place, or to path when set.
type SaveRequest struct {
	Path string `json:"path,omitempty" example:"/home/me/todo.txt"`
}

// SaveResponse is returned after a successful save.
type SaveResponse struct {
	Path string `json:"path" example:"/home/me/todo.txt" validate:"required"`
}

// RenameRequest sets a tab title.
type RenameRequest struct {
	Title string `json:"title" example:"Groceries" validate:"required"`
}

// FontSizeRequest sets the font size, or adjusts it by delta when size is zero.
type FontSizeRequest struct {
	Size  int `json:"size,omitempty" example:"14"`
	Delta int `json:"delta,omitempty" example:"1"`
}

// SessionResponse describes the whole session.
type SessionResponse struct {
	Documents []DocumentSummary `json:"documents" validate:"required"`
	FontSize  int               `json:"font_size" example:"12" validate:"required"`
}

// FontSizeResponse reports the applied font size.
type FontSizeResponse struct {
	FontSize int `json:"font_size" example:"12" validate:"required"`
}
