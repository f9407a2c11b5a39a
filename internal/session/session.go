// Package session holds the ordered list of open documents and the active
// document pointer.
//
// Documents are addressed two ways: by tab index (position in the list, which
// shifts as documents close) and by ID (stable for the document's lifetime and
// never reused). Every operation taking an index accepts ActiveIndex to mean
// the active document.
package session

import (
	"fmt"

	"github.com/starford/hyprtext/internal/apperr"
	"github.com/starford/hyprtext/internal/models"
	"github.com/starford/hyprtext/internal/storage"
)

// ActiveIndex selects the active document.
const ActiveIndex = -1

// Session is the in-memory list of open documents. It is not safe for
// concurrent use; the controller owns it on a single goroutine.
type Session struct {
	files  storage.Provider
	docs   []*models.Document
	active int
	nextID int
}

// New creates an empty session reading and writing documents through files.
func New(files storage.Provider) *Session {
	return &Session{files: files, nextID: 1}
}

// Len returns the number of open documents.
func (s *Session) Len() int {
	return len(s.docs)
}

// Active returns the active index. It is 0 when the session is empty.
func (s *Session) Active() int {
	return s.active
}

// resolve maps ActiveIndex to the active document and reports whether the
// result is in range.
func (s *Session) resolve(index int) (int, bool) {
	if index == ActiveIndex {
		index = s.active
	}
	return index, index >= 0 && index < len(s.docs)
}

// Document returns the document at index, or nil when out of range.
func (s *Session) Document(index int) *models.Document {
	idx, ok := s.resolve(index)
	if !ok {
		return nil
	}
	return s.docs[idx]
}

// ActiveDocument returns the active document, or nil when the session is empty.
func (s *Session) ActiveDocument() *models.Document {
	return s.Document(ActiveIndex)
}

// Lookup returns the document with the given ID and its current index.
func (s *Session) Lookup(id int) (*models.Document, int) {
	for i, d := range s.docs {
		if d.ID == id {
			return d, i
		}
	}
	return nil, -1
}

// Documents returns copies of all documents in tab order.
func (s *Session) Documents() []models.Document {
	out := make([]models.Document, len(s.docs))
	for i, d := range s.docs {
		out[i] = *d
	}
	return out
}

// Summaries describes every document in tab order.
func (s *Session) Summaries() []models.DocumentSummary {
	out := make([]models.DocumentSummary, len(s.docs))
	for i, d := range s.docs {
		out[i] = models.DocumentSummary{
			ID:       d.ID,
			Index:    i,
			Path:     d.Path,
			Title:    d.Title,
			Active:   i == s.active,
			Bound:    d.Bound(),
			Markdown: d.IsMarkdown(),
			Size:     len(d.Buffer),
		}
	}
	return out
}

// Find returns the index of the document bound to path, compared by
// canonical path, or -1.
func (s *Session) Find(path string) int {
	target := storage.Canonical(path)
	if target == "" {
		return -1
	}
	for i, d := range s.docs {
		if d.Path == target {
			return i
		}
	}
	return -1
}

func (s *Session) add(doc *models.Document) int {
	doc.ID = s.nextID
	s.nextID++
	s.docs = append(s.docs, doc)
	s.active = len(s.docs) - 1
	return s.active
}

// OpenFile activates the document already bound to path, or reads the file
// into a new active document. A file that cannot be read opens as an empty
// buffer. created reports whether a new document was appended.
func (s *Session) OpenFile(path string) (index int, created bool) {
	if i := s.Find(path); i >= 0 {
		s.active = i
		return i, false
	}

	target := storage.Canonical(path)
	text := ""
	if data, err := s.files.Read(target); err == nil {
		text = string(data)
	}
	return s.add(&models.Document{
		Path:   target,
		Buffer: text,
		Title:  models.DefaultTitle(target),
	}), true
}

// NewFile appends an empty Unbound document and activates it.
func (s *Session) NewFile() int {
	return s.add(&models.Document{Title: models.UntitledTitle})
}

// Reload re-reads a Bound document from disk into its buffer. On failure the
// buffer is left untouched.
func (s *Session) Reload(index int) error {
	idx, ok := s.resolve(index)
	if !ok {
		return apperr.ErrNoActiveDocument
	}
	doc := s.docs[idx]
	if !doc.Bound() {
		return apperr.ErrNoTargetPath
	}
	data, err := s.files.Read(doc.Path)
	if err != nil {
		return fmt.Errorf("session: reload: %w: %w", apperr.ErrFileRead, err)
	}
	doc.Buffer = string(data)
	return nil
}

// SetBuffer overwrites the buffer at index. Out-of-range indexes are ignored.
func (s *Session) SetBuffer(text string, index int) {
	if idx, ok := s.resolve(index); ok {
		s.docs[idx].Buffer = text
	}
}

// Buffer returns the buffer at index, or "" when out of range.
func (s *Session) Buffer(index int) string {
	if idx, ok := s.resolve(index); ok {
		return s.docs[idx].Buffer
	}
	return ""
}

// SaveFile writes the buffer at index to disk and returns the path written.
// A non-empty path rebinds the document first; the binding only changes once
// the target is known not to be a directory.
func (s *Session) SaveFile(path string, index int) (string, error) {
	idx, ok := s.resolve(index)
	if !ok {
		return "", apperr.ErrNoActiveDocument
	}
	doc := s.docs[idx]

	target := doc.Path
	if path != "" {
		target = storage.Canonical(path)
	}
	if target == "" {
		return "", apperr.ErrNoTargetPath
	}
	if info, err := s.files.Stat(target); err == nil && info.IsDir() {
		return "", fmt.Errorf("session: %s: %w", target, apperr.ErrTargetIsDirectory)
	}

	doc.Path = target
	if err := s.files.Write(target, []byte(doc.Buffer)); err != nil {
		return "", fmt.Errorf("session: save: %w: %w", apperr.ErrFileWrite, err)
	}
	return target, nil
}

// CloseFile removes the document at index and returns it. The previous tab
// becomes active; an emptied session resets the active index to 0.
func (s *Session) CloseFile(index int) (*models.Document, bool) {
	idx, ok := s.resolve(index)
	if !ok {
		return nil, false
	}
	doc := s.docs[idx]
	s.docs = append(s.docs[:idx], s.docs[idx+1:]...)
	if len(s.docs) > 0 {
		s.active = max(0, idx-1)
	} else {
		s.active = 0
	}
	return doc, true
}

// Activate makes index the active document.
func (s *Session) Activate(index int) bool {
	idx, ok := s.resolve(index)
	if !ok {
		return false
	}
	s.active = idx
	return true
}

// SetTitle sets a user title. Blank titles are ignored.
func (s *Session) SetTitle(index int, title string) bool {
	idx, ok := s.resolve(index)
	if !ok {
		return false
	}
	title = trimTitle(title)
	if title == "" {
		return false
	}
	s.docs[idx].Title = title
	return true
}

// ResetTitle restores the title derived from the document's path.
func (s *Session) ResetTitle(index int) {
	if idx, ok := s.resolve(index); ok {
		s.docs[idx].Title = models.DefaultTitle(s.docs[idx].Path)
	}
}

// Paths returns the document paths in tab order ("" for Unbound documents).
func (s *Session) Paths() []string {
	out := make([]string, len(s.docs))
	for i, d := range s.docs {
		out[i] = d.Path
	}
	return out
}
