package history

import (
	"fmt"
	"time"
)

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 20

// RecordOpen bumps the open counter for path.
func (db *DB) RecordOpen(path, title string, at time.Time) error {
	_, err := db.conn.Exec(`
		INSERT INTO files (path, title, open_count, last_event, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			open_count = files.open_count + 1,
			last_event = excluded.last_event,
			updated_at = excluded.updated_at
	`, path, title, EventOpened, at.UTC())
	if err != nil {
		return fmt.Errorf("history: record open: %w", err)
	}
	return nil
}

// RecordSave bumps the save counter for path and stores the written checksum.
func (db *DB) RecordSave(path, title, checksum string, at time.Time) error {
	_, err := db.conn.Exec(`
		INSERT INTO files (path, title, checksum, save_count, last_event, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			save_count = files.save_count + 1,
			last_event = excluded.last_event,
			updated_at = excluded.updated_at
	`, path, title, checksum, EventSaved, at.UTC())
	if err != nil {
		return fmt.Errorf("history: record save: %w", err)
	}
	return nil
}

// Recent returns the most recently touched files, newest first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := db.conn.Query(`
		SELECT path, title, checksum, open_count, save_count, last_event, updated_at
		FROM files
		ORDER BY updated_at DESC, path ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Title, &e.Checksum, &e.OpenCount, &e.SaveCount, &e.LastEvent, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Forget removes path from the log.
func (db *DB) Forget(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("history: forget: %w", err)
	}
	return nil
}
