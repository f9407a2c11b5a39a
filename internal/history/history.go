package history

import "time"

// Recorder defines the history operations the controller depends on.
type Recorder interface {
	RecordOpen(path, title string, at time.Time) error
	RecordSave(path, title, checksum string, at time.Time) error
	Recent(limit int) ([]Entry, error)
	Forget(path string) error
	Close() error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)

// Event names stored in last_event.
const (
	EventOpened = "opened"
	EventSaved  = "saved"
)

// Entry is one row of the recent-files log.
type Entry struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum,omitempty"`
	OpenCount int       `json:"open_count"`
	SaveCount int       `json:"save_count"`
	LastEvent string    `json:"last_event"`
	UpdatedAt time.Time `json:"updated_at"`
}
