package controller

import (
	"log/slog"

	"github.com/starford/hyprtext/internal/snapshot"
	"github.com/starford/hyprtext/internal/storage"
	"github.com/starford/hyprtext/internal/surface"
)

// Restore rebuilds the session from the persisted snapshot. Unreadable or
// corrupt snapshots start an empty session with one Unbound document and keep
// the configured font size.
func (c *Controller) Restore() {
	snap, found := snapshot.Default(), false
	if c.snapshots != nil {
		snap, found = c.snapshots.Load()
	}

	c.sorts.CancelAll()
	c.surfaces = make(map[int]surface.Surface)
	c.disk = make(map[int]string)
	if found {
		c.fontSize = clampFontSize(snap.FontSize)
	}

	if err := c.session.Restore(snap); err != nil {
		c.logger.Debug("controller: restore used persisted buffers", slog.String("error", err.Error()))
	}
	for i := 0; i < c.session.Len(); i++ {
		doc := c.session.Document(i)
		c.synced(doc, doc.Buffer)
		c.attach(doc)
		c.loaded(doc, i)
	}

	c.logger.Info("controller: session restored",
		slog.Int("documents", c.session.Len()),
		slog.Int("active", c.session.Active()),
		slog.Int("font_size", c.fontSize))
	c.emit(Event{Kind: EventRestored, FontSize: c.fontSize})
	c.pathsChanged()
}

// Persist writes the whole session snapshot.
func (c *Controller) Persist() error {
	if c.snapshots == nil {
		return nil
	}
	if err := c.snapshots.Save(c.session.Snapshot(c.fontSize)); err != nil {
		c.logger.Warn("controller: persist failed", slog.String("error", err.Error()))
		return err
	}
	c.emit(Event{Kind: EventPersisted, FontSize: c.fontSize})
	return nil
}

// SetFontSize clamps n to [MinFontSize, MaxFontSize] and persists the session.
func (c *Controller) SetFontSize(n int) (int, error) {
	c.fontSize = clampFontSize(n)
	c.emit(Event{Kind: EventFontSize, FontSize: c.fontSize})
	return c.fontSize, c.Persist()
}

// AdjustFontSize changes the font size by delta.
func (c *Controller) AdjustFontSize(delta int) (int, error) {
	return c.SetFontSize(c.fontSize + delta)
}

// Shutdown drops pending sorts and persists the session.
func (c *Controller) Shutdown() error {
	c.sorts.CancelAll()
	return c.Persist()
}

// ExternalChange reloads the document bound to path when the file on disk no
// longer matches what the controller last read or wrote there. It reports
// whether the buffer was replaced.
func (c *Controller) ExternalChange(path string) bool {
	idx := c.session.Find(path)
	if idx < 0 {
		return false
	}
	doc := c.session.Document(idx)
	data, err := c.files.Read(doc.Path)
	if err != nil {
		c.logger.Debug("controller: external change unreadable",
			slog.String("path", doc.Path),
			slog.String("error", err.Error()))
		return false
	}
	if string(data) == doc.Buffer || storage.Checksum(data) == c.disk[doc.ID] {
		return false
	}

	c.sorts.Cancel(doc.ID)
	c.session.SetBuffer(string(data), idx)
	c.surfaceOf(doc).SetText(doc.Buffer)
	c.synced(doc, doc.Buffer)
	c.logger.Info("controller: reloaded after external change", slog.String("path", doc.Path))
	c.emit(Event{Kind: EventReloaded, ID: doc.ID, Path: doc.Path, Title: doc.Title})
	return true
}
