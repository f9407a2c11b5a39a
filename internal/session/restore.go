package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starford/hyprtext/internal/models"
	"github.com/starford/hyprtext/internal/snapshot"
	"github.com/starford/hyprtext/internal/storage"
)

// Restore replaces the session contents with the documents in snap.
//
// Bound entries prefer fresh disk content over the persisted buffer; the
// returned error joins every re-read that fell back to the snapshot copy and
// is informational only. An empty snapshot yields one new Unbound document.
func (s *Session) Restore(snap snapshot.Snapshot) error {
	s.docs = nil
	s.active = 0

	var errs []error
	n := max(len(snap.LastFiles), len(snap.Buffers))
	for i := 0; i < n; i++ {
		path := storage.Canonical(at(snap.LastFiles, i))
		text := at(snap.Buffers, i)

		if path != "" {
			if data, err := s.files.Read(path); err == nil {
				text = string(data)
			} else {
				errs = append(errs, fmt.Errorf("session: restore %s: %w", path, err))
			}
		}

		title := trimTitle(at(snap.Titles, i))
		if title == "" {
			title = models.DefaultTitle(path)
		}
		s.add(&models.Document{Path: path, Buffer: text, Title: title})
	}

	if len(s.docs) == 0 {
		s.NewFile()
		return errors.Join(errs...)
	}
	s.active = 0
	if snap.ActiveIndex >= 0 && snap.ActiveIndex < len(s.docs) {
		s.active = snap.ActiveIndex
	}
	return errors.Join(errs...)
}

// Snapshot captures the session for persistence.
func (s *Session) Snapshot(fontSize int) snapshot.Snapshot {
	snap := snapshot.Snapshot{
		LastFiles:   make([]string, len(s.docs)),
		ActiveIndex: s.active,
		Titles:      make([]string, len(s.docs)),
		Buffers:     make([]string, len(s.docs)),
		FontSize:    fontSize,
	}
	for i, d := range s.docs {
		snap.LastFiles[i] = d.Path
		snap.Titles[i] = d.Title
		snap.Buffers[i] = d.Buffer
	}
	return snap
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}

func trimTitle(title string) string {
	return strings.TrimSpace(title)
}
