package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const tempPattern = ".hyprtext-tmp-*"

// Disk implements Provider on the local file system. Paths are absolute and
// not confined to a root directory.
type Disk struct {
	fileMode fs.FileMode
}

// NewDisk creates a Disk provider. New files are created with mode 0644.
func NewDisk() *Disk {
	return &Disk{fileMode: 0o644}
}

// Canonical returns the absolute, cleaned form of path. It is the key used to
// detect that two paths name the same document.
func Canonical(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Read returns the raw bytes of a file.
func (d *Disk) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Stat describes the file at path.
func (d *Disk) Stat(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return info, nil
}

// Write atomically writes content: tmp file → fsync → rename. The mode of an
// existing file is carried over to the replacement.
func (d *Disk) Write(path string, content []byte) error {
	if path == "" {
		return errors.New("storage: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	mode := d.fileMode
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("storage: %s is a directory", path)
		}
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
