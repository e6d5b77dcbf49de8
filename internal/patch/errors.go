package patch

import (
	"errors"
	"fmt"
)

// ErrEmptyFragment is returned when the replacement fragment is empty after
// whitespace trimming. Callers are expected to catch this condition before
// reaching the applier, so hitting it here usually means a suggestion was
// passed through without extraction.
var ErrEmptyFragment = errors.New("replacement fragment is empty")

// FileAccessError indicates the target file could not be opened or read.
// Nothing has been written when this is returned.
type FileAccessError struct {
	Path string
	Err  error
}

// Error implements the error interface for FileAccessError
func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot access %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error
func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// OutOfRangeError indicates the requested line does not exist in the target
// file. Nothing has been written when this is returned.
type OutOfRangeError struct {
	Path  string
	Line  int
	Total int
}

// Error implements the error interface for OutOfRangeError
func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("line %d is out of range for %s (%d lines)", e.Line, e.Path, e.Total)
}

// BackupFailedError indicates the pre-write backup could not be created.
// The target file is untouched when this is returned.
type BackupFailedError struct {
	Path       string
	BackupPath string
	Err        error
}

// Error implements the error interface for BackupFailedError
func (e *BackupFailedError) Error() string {
	return fmt.Sprintf("failed to back up %s to %s: %v", e.Path, e.BackupPath, e.Err)
}

// Unwrap returns the underlying filesystem error
func (e *BackupFailedError) Unwrap() error {
	return e.Err
}

// WriteFailure indicates the rewritten content could not be written to the
// target file. The backup named in BackupPath was created before the write
// started and remains on disk as the recovery path.
type WriteFailure struct {
	Path       string
	BackupPath string
	Err        error
}

// Error implements the error interface for WriteFailure
func (e *WriteFailure) Error() string {
	return fmt.Sprintf("failed to write %s: %v (original preserved at %s)", e.Path, e.Err, e.BackupPath)
}

// Unwrap returns the underlying filesystem error
func (e *WriteFailure) Unwrap() error {
	return e.Err
}
