package controller

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/hyprtext/internal/apperr"
	"github.com/starford/hyprtext/internal/history"
	"github.com/starford/hyprtext/internal/linesort"
	"github.com/starford/hyprtext/internal/models"
	"github.com/starford/hyprtext/internal/session"
	"github.com/starford/hyprtext/internal/storage"
	"github.com/starford/hyprtext/internal/surface"
)

// lookup resolves an ID (or Active) to the document and its tab index.
func (c *Controller) lookup(id int) (*models.Document, int, error) {
	if id == Active {
		doc := c.session.ActiveDocument()
		if doc == nil {
			return nil, -1, apperr.ErrNoActiveDocument
		}
		return doc, c.session.Active(), nil
	}
	doc, idx := c.session.Lookup(id)
	if doc == nil {
		return nil, -1, fmt.Errorf("controller: document %d: %w", id, apperr.ErrNotFound)
	}
	return doc, idx, nil
}

func (c *Controller) summary(idx int) models.DocumentSummary {
	sums := c.session.Summaries()
	if idx < 0 || idx >= len(sums) {
		return models.DocumentSummary{}
	}
	return sums[idx]
}

// attach gives doc a fresh surface loaded with its buffer.
func (c *Controller) attach(doc *models.Document) surface.Surface {
	surf := c.newSurface()
	surf.SetText(doc.Buffer)
	id := doc.ID
	surf.OnChange(func() { c.TextChanged(id) })
	c.surfaces[id] = surf
	return surf
}

// synced records the checksum of what doc's file holds after a read or write.
func (c *Controller) synced(doc *models.Document, content string) {
	if doc.Bound() {
		c.disk[doc.ID] = storage.Checksum([]byte(content))
	}
}

func (c *Controller) surfaceOf(doc *models.Document) surface.Surface {
	if surf, ok := c.surfaces[doc.ID]; ok {
		return surf
	}
	return c.attach(doc)
}

// loaded applies the on-load sort to freshly loaded content.
func (c *Controller) loaded(doc *models.Document, idx int) {
	if c.sortOnLoad && !doc.IsMarkdown() {
		c.sortDocument(doc, idx, false)
	}
}

// autoSave writes a Bound document and discards any failure.
func (c *Controller) autoSave(doc *models.Document, idx int) {
	if !doc.Bound() {
		return
	}
	if _, err := c.session.SaveFile("", idx); err != nil {
		c.logger.Debug("controller: auto-save failed",
			slog.Int("id", doc.ID),
			slog.String("path", doc.Path),
			slog.String("error", err.Error()))
		return
	}
	c.synced(doc, doc.Buffer)
}

// Open activates the document bound to path, refreshing it from disk, or
// opens the file as a new document. Unreadable files open empty.
func (c *Controller) Open(path string) (models.DocumentSummary, error) {
	if strings.TrimSpace(path) == "" {
		return models.DocumentSummary{}, apperr.ErrNoTargetPath
	}

	if idx := c.session.Find(path); idx >= 0 {
		doc := c.session.Document(idx)
		if err := c.session.Reload(idx); err != nil {
			c.logger.Debug("controller: refresh on open failed, keeping buffer",
				slog.String("path", doc.Path),
				slog.String("error", err.Error()))
		} else {
			c.synced(doc, doc.Buffer)
		}
		c.surfaceOf(doc).SetText(doc.Buffer)
		c.session.Activate(idx)
		c.session.ResetTitle(idx)
		c.loaded(doc, idx)
		c.recordOpen(doc)
		c.emit(Event{Kind: EventReloaded, ID: doc.ID, Path: doc.Path, Title: doc.Title})
		return c.summary(idx), nil
	}

	idx, _ := c.session.OpenFile(path)
	doc := c.session.Document(idx)
	c.synced(doc, doc.Buffer)
	c.attach(doc)
	c.loaded(doc, idx)
	c.recordOpen(doc)
	c.logger.Info("controller: opened", slog.Int("id", doc.ID), slog.String("path", doc.Path))
	c.emit(Event{Kind: EventOpened, ID: doc.ID, Path: doc.Path, Title: doc.Title})
	c.pathsChanged()
	return c.summary(idx), nil
}

// New appends an empty Unbound document and activates it.
func (c *Controller) New() models.DocumentSummary {
	idx := c.session.NewFile()
	doc := c.session.Document(idx)
	c.attach(doc)
	c.emit(Event{Kind: EventCreated, ID: doc.ID, Title: doc.Title})
	return c.summary(idx)
}

// Edit replaces the document text as a user edit would, then optionally
// moves the cursor.
func (c *Controller) Edit(id int, text string, cursor *linesort.Position) (models.DocumentSummary, error) {
	doc, idx, err := c.lookup(id)
	if err != nil {
		return models.DocumentSummary{}, err
	}
	surf := c.surfaceOf(doc)
	surf.Edit(text)
	if cursor != nil {
		surf.SetCursor(*cursor)
	}
	return c.summary(idx), nil
}

// TextChanged handles a change notification from a document's surface: the
// buffer is updated, Bound documents are saved immediately, and the
// auto-sort countdown restarts.
func (c *Controller) TextChanged(id int) {
	doc, idx := c.session.Lookup(id)
	if doc == nil {
		return
	}
	c.session.SetBuffer(c.surfaceOf(doc).Text(), idx)
	c.autoSave(doc, idx)
	c.sorts.Trigger(id, func() { c.RunSort(id) })
}

// RunSort sorts the document's surface if it is still open and reports
// whether the text changed.
func (c *Controller) RunSort(id int) bool {
	doc, idx := c.session.Lookup(id)
	if doc == nil {
		return false
	}
	return c.sortDocument(doc, idx, true)
}

// SortNow cancels any pending auto-sort and sorts immediately.
func (c *Controller) SortNow(id int) (models.DocumentSummary, bool, error) {
	doc, idx, err := c.lookup(id)
	if err != nil {
		return models.DocumentSummary{}, false, err
	}
	c.sorts.Cancel(doc.ID)
	changed := c.sortDocument(doc, idx, true)
	return c.summary(idx), changed, nil
}

// sortDocument regroups the surface text. The replacement is programmatic and
// does not restart the debounce. Only a save-enabled sort writes to disk; the
// sort on load leaves the file as it was.
func (c *Controller) sortDocument(doc *models.Document, idx int, save bool) bool {
	surf := c.surfaceOf(doc)
	res := linesort.Sort(surf.Text(), surf.Cursor())
	if !res.Changed {
		return false
	}
	surf.SetText(res.Text)
	surf.SetCursor(res.Cursor)
	c.session.SetBuffer(res.Text, idx)
	if save {
		c.autoSave(doc, idx)
	}
	c.emit(Event{Kind: EventSorted, ID: doc.ID, Path: doc.Path})
	return true
}

// Save writes a Bound document. An Unbound document returns ErrNoTargetPath,
// which callers treat as "Save As needed".
func (c *Controller) Save(id int) (string, error) {
	doc, idx, err := c.lookup(id)
	if err != nil {
		return "", err
	}
	path, err := c.session.SaveFile("", idx)
	if err != nil {
		c.logger.Debug("controller: save failed", slog.Int("id", doc.ID), slog.String("error", err.Error()))
		return "", err
	}
	c.saved(doc, idx, path)
	return path, nil
}

// SaveAs binds the document to path and writes it.
func (c *Controller) SaveAs(id int, path string) (string, error) {
	doc, idx, err := c.lookup(id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		return "", apperr.ErrNoTargetPath
	}
	before := doc.Path
	written, err := c.session.SaveFile(path, idx)
	if err != nil {
		c.logger.Debug("controller: save as failed",
			slog.Int("id", doc.ID),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return "", err
	}
	c.saved(doc, idx, written)
	if written != before {
		c.pathsChanged()
	}
	return written, nil
}

func (c *Controller) saved(doc *models.Document, idx int, path string) {
	c.synced(doc, doc.Buffer)
	c.session.ResetTitle(idx)
	if c.history != nil {
		sum := storage.Checksum([]byte(doc.Buffer))
		if err := c.history.RecordSave(path, doc.Title, sum, c.now()); err != nil {
			c.logger.Debug("controller: history save failed", slog.String("error", err.Error()))
		}
	}
	c.logger.Info("controller: saved", slog.Int("id", doc.ID), slog.String("path", path))
	c.emit(Event{Kind: EventSaved, ID: doc.ID, Path: path, Title: doc.Title})
}

func (c *Controller) recordOpen(doc *models.Document) {
	if c.history == nil {
		return
	}
	if err := c.history.RecordOpen(doc.Path, doc.Title, c.now()); err != nil {
		c.logger.Debug("controller: history open failed", slog.String("error", err.Error()))
	}
}

// Close removes the document and drops its pending sort.
func (c *Controller) Close(id int) error {
	doc, idx, err := c.lookup(id)
	if err != nil {
		return err
	}
	c.sorts.Cancel(doc.ID)
	c.session.CloseFile(idx)
	delete(c.surfaces, doc.ID)
	delete(c.disk, doc.ID)
	c.emit(Event{Kind: EventClosed, ID: doc.ID, Path: doc.Path})
	if doc.Bound() {
		c.pathsChanged()
	}
	return nil
}

// Activate makes the document active.
func (c *Controller) Activate(id int) (models.DocumentSummary, error) {
	doc, idx, err := c.lookup(id)
	if err != nil {
		return models.DocumentSummary{}, err
	}
	c.session.Activate(idx)
	c.emit(Event{Kind: EventActivated, ID: doc.ID})
	return c.summary(idx), nil
}

// Rename sets a user title. Blank titles leave the document unchanged.
func (c *Controller) Rename(id int, title string) (models.DocumentSummary, error) {
	doc, idx, err := c.lookup(id)
	if err != nil {
		return models.DocumentSummary{}, err
	}
	if c.session.SetTitle(idx, title) {
		c.emit(Event{Kind: EventRenamed, ID: doc.ID, Title: doc.Title})
	}
	return c.summary(idx), nil
}

// Documents describes every open document in tab order.
func (c *Controller) Documents() []models.DocumentSummary {
	return c.session.Summaries()
}

// Document returns a copy of the document, buffer included.
func (c *Controller) Document(id int) (models.Document, error) {
	doc, _, err := c.lookup(id)
	if err != nil {
		return models.Document{}, err
	}
	return *doc, nil
}

// Summary describes one document.
func (c *Controller) Summary(id int) (models.DocumentSummary, error) {
	_, idx, err := c.lookup(id)
	if err != nil {
		return models.DocumentSummary{}, err
	}
	return c.summary(idx), nil
}

// Cursor returns the cursor position on the document's surface.
func (c *Controller) Cursor(id int) (linesort.Position, error) {
	doc, _, err := c.lookup(id)
	if err != nil {
		return linesort.Position{}, err
	}
	return c.surfaceOf(doc).Cursor(), nil
}

// Preview renders a markdown document to HTML.
func (c *Controller) Preview(id int) (string, error) {
	doc, _, err := c.lookup(id)
	if err != nil {
		return "", err
	}
	if !doc.IsMarkdown() {
		return "", fmt.Errorf("controller: %s: %w", doc.Title, apperr.ErrNotMarkdown)
	}
	return c.renderer.Render(doc.Buffer)
}

// Find fuzzy-matches open documents by title and path.
func (c *Controller) Find(query string) []session.Match {
	return c.session.Search(query)
}

// Forget drops path from the recent-files history. Without history it does
// nothing.
func (c *Controller) Forget(path string) error {
	target := storage.Canonical(path)
	if target == "" {
		return apperr.ErrNoTargetPath
	}
	if c.history == nil {
		return nil
	}
	return c.history.Forget(target)
}

// Recent lists recently opened or saved files. It is empty without history.
func (c *Controller) Recent(limit int) ([]history.Entry, error) {
	if c.history == nil {
		return []history.Entry{}, nil
	}
	return c.history.Recent(limit)
}
