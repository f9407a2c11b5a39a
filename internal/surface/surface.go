// Package surface defines the editing-surface contract the controller drives
// and an in-memory implementation used by the headless hosts.
package surface

import (
	"strings"
	"unicode/utf8"

	"github.com/starford/hyprtext/internal/linesort"
)

// Surface is an opaque full-text editing area.
//
// SetText is a programmatic replacement and never fires the change
// notification; Edit models a user edit and does.
type Surface interface {
	Text() string
	SetText(text string)
	Edit(text string)
	Cursor() linesort.Position
	SetCursor(p linesort.Position)
	OnChange(fn func())
}

// Memory is a Surface held entirely in memory.
type Memory struct {
	text     string
	lines    []string
	cursor   linesort.Position
	onChange func()
}

// NewMemory returns an empty surface with the cursor at the start.
func NewMemory() *Memory {
	return &Memory{lines: []string{""}}
}

// Text returns the full text.
func (m *Memory) Text() string { return m.text }

// SetText replaces the text without notifying and clamps the cursor.
func (m *Memory) SetText(text string) {
	m.text = text
	m.lines = strings.Split(text, "\n")
	m.cursor = m.clamp(m.cursor)
}

// Edit replaces the text and fires the change notification.
func (m *Memory) Edit(text string) {
	m.SetText(text)
	if m.onChange != nil {
		m.onChange()
	}
}

// Cursor returns the cursor position.
func (m *Memory) Cursor() linesort.Position { return m.cursor }

// SetCursor moves the cursor, clamped to the text.
func (m *Memory) SetCursor(p linesort.Position) {
	m.cursor = m.clamp(p)
}

// OnChange registers the change listener, replacing any previous one.
func (m *Memory) OnChange(fn func()) { m.onChange = fn }

func (m *Memory) clamp(p linesort.Position) linesort.Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(m.lines) {
		p.Line = len(m.lines) - 1
	}
	n := utf8.RuneCountInString(m.lines[p.Line])
	if p.Column > n {
		p.Column = n
	}
	if p.Column < 0 {
		p.Column = 0
	}
	return p
}

// Verify *Memory satisfies Surface at compile time.
var _ Surface = (*Memory)(nil)
