// Package apperr holds the sentinel errors shared by the session, persistence
// and host layers.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoActiveDocument  = errors.New("no active document")
	ErrNoTargetPath      = errors.New("no target path")
	ErrTargetIsDirectory = errors.New("target is a directory")
	ErrFileRead          = errors.New("file read failed")
	ErrFileWrite         = errors.New("file write failed")
	ErrConfigCorrupt     = errors.New("config corrupt")
	ErrNotMarkdown       = errors.New("not a markdown document")
)
