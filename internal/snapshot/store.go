// Package snapshot persists the editor session as a single JSON document that
// is rewritten wholesale on every save.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hyprtext/internal/apperr"
	"github.com/starford/hyprtext/internal/storage"
)

// DefaultFontSize is the font size of a first run.
const DefaultFontSize = 12

const (
	appDirName = "hyprtext"
	fileName   = "config.json"
)

// Snapshot is the persisted session state.
type Snapshot struct {
	LastFiles   []string `json:"last_files"`
	ActiveIndex int      `json:"active_index"`
	Titles      []string `json:"titles"`
	Buffers     []string `json:"buffers"`
	FontSize    int      `json:"font_size"`
}

// Default returns the empty first-run snapshot.
func Default() Snapshot {
	return Snapshot{
		LastFiles: []string{},
		Titles:    []string{},
		Buffers:   []string{},
		FontSize:  DefaultFontSize,
	}
}

// Validate checks the field shapes of a decoded snapshot.
func (s *Snapshot) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ActiveIndex, validation.Min(0)),
		validation.Field(&s.FontSize, validation.Required, validation.Min(1)),
	)
}

func (s *Snapshot) normalize() {
	if s.LastFiles == nil {
		s.LastFiles = []string{}
	}
	if s.Titles == nil {
		s.Titles = []string{}
	}
	if s.Buffers == nil {
		s.Buffers = []string{}
	}
}

// DefaultDir returns $XDG_CONFIG_HOME/hyprtext, falling back to
// ~/.config/hyprtext.
func DefaultDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName)
}

// DefaultPath returns the per-user snapshot location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), fileName)
}

// Store loads and saves snapshots at a fixed path.
type Store struct {
	path   string
	files  storage.Provider
	logger *slog.Logger
}

// NewStore creates a Store for the snapshot at path.
func NewStore(path string, files storage.Provider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, files: files, logger: logger}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted snapshot, or Default when the file is missing,
// unreadable or malformed. Failures are logged and never returned. found
// reports whether a stored snapshot was used rather than the defaults.
func (s *Store) Load() (snap Snapshot, found bool) {
	snap, found, err := s.load()
	if err != nil {
		s.logger.Debug("snapshot: falling back to defaults",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
	}
	return snap, found
}

// LoadErr is Load with the discarded error exposed. A missing file is a first
// run and not an error. The returned snapshot is always usable.
func (s *Store) LoadErr() (Snapshot, error) {
	snap, _, err := s.load()
	return snap, err
}

func (s *Store) load() (Snapshot, bool, error) {
	data, err := s.files.Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), false, nil
		}
		return Default(), false, fmt.Errorf("snapshot: %w", err)
	}

	snap := Default()
	if err := json.Unmarshal(data, &snap); err != nil {
		return Default(), false, fmt.Errorf("snapshot: %w: %w", apperr.ErrConfigCorrupt, err)
	}
	if err := snap.Validate(); err != nil {
		return Default(), false, fmt.Errorf("snapshot: %w: %w", apperr.ErrConfigCorrupt, err)
	}
	snap.normalize()
	return snap, true, nil
}

// Save overwrites the snapshot file with snap.
func (s *Store) Save(snap Snapshot) error {
	snap.normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := s.files.Write(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
