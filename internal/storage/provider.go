// Package storage defines the file-system abstraction used for documents and
// the session snapshot.
package storage

import "io/fs"

// Provider is the interface for file operations on absolute paths.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path, creating parent directories.
	Write(path string, content []byte) error
	// Stat describes the file at path.
	Stat(path string) (fs.FileInfo, error)
}
