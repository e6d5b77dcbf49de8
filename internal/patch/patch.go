// Package patch rewrites a window of lines in a source file with a literal
// replacement fragment, keeping a full backup of the original alongside it.
// The window covers the reported line plus a few lines of context on each
// side, and the backup is written before the target file is touched and is
// never removed, not even on success.
package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vantorre/redline/internal/loggy"
)

const (
	// BackupSuffix is appended to the target path to form the backup path
	BackupSuffix = ".backup"

	// DefaultContextLines is how many lines on each side of the target
	// line are replaced along with it
	DefaultContextLines = 3
)

// Option adjusts how a fragment is applied
type Option func(*settings)

type settings struct {
	contextLines int
}

// WithContextLines sets the number of lines on each side of the target line
// that are replaced along with it. Negative values are treated as zero.
func WithContextLines(n int) Option {
	return func(s *settings) {
		if n < 0 {
			n = 0
		}
		s.contextLines = n
	}
}

// Result describes a successfully applied fragment
type Result struct {
	Path       string `json:"path"`
	BackupPath string `json:"backup_path"`
	StartLine  int    `json:"start_line"` // first replaced line, 1-indexed
	EndLine    int    `json:"end_line"`   // last replaced line, 1-indexed
	Message    string `json:"message"`
}

var (
	pathLocksMu sync.Mutex
	pathLocks   = make(map[string]*sync.Mutex)
)

// lockForPath returns the mutex serializing writes to a file. Locks are
// keyed by absolute path so concurrent fixes against the same file cannot
// race each other.
func lockForPath(path string) *sync.Mutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	pathLocksMu.Lock()
	defer pathLocksMu.Unlock()

	mu, ok := pathLocks[abs]
	if !ok {
		mu = &sync.Mutex{}
		pathLocks[abs] = mu
	}
	return mu
}

// Apply replaces a window of lines around the 1-indexed target line of the
// file at path with the given fragment. The original file is copied verbatim
// to path+BackupSuffix before anything is modified, and the backup write
// must succeed before the target is touched.
func Apply(path string, line int, fragment string, opts ...Option) (*Result, error) {
	s := settings{contextLines: DefaultContextLines}
	for _, opt := range opts {
		opt(&s)
	}

	if strings.TrimSpace(fragment) == "" {
		return nil, ErrEmptyFragment
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &FileAccessError{Path: path, Err: errors.New("is a directory")}
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}

	lines := splitLines(string(original))
	total := len(lines)
	if line < 1 || line > total {
		return nil, &OutOfRangeError{Path: path, Line: line, Total: total}
	}

	start := line - 1 - s.contextLines
	if start < 0 {
		start = 0
	}
	end := line - 1 + s.contextLines + 1
	if end > total {
		end = total
	}

	backupPath := path + BackupSuffix
	if err := os.WriteFile(backupPath, original, info.Mode().Perm()); err != nil {
		return nil, &BackupFailedError{Path: path, BackupPath: backupPath, Err: err}
	}

	var content strings.Builder
	for _, l := range lines[:start] {
		content.WriteString(l)
	}
	content.WriteString(normalizeFragment(fragment, dominantTerminator(string(original))))
	for _, l := range lines[end:] {
		content.WriteString(l)
	}

	if err := os.WriteFile(path, []byte(content.String()), info.Mode().Perm()); err != nil {
		return nil, &WriteFailure{Path: path, BackupPath: backupPath, Err: err}
	}

	loggy.Debug("applied suggestion",
		"path", path,
		"backup", backupPath,
		"start_line", start+1,
		"end_line", end,
		"context_lines", s.contextLines,
	)

	return &Result{
		Path:       path,
		BackupPath: backupPath,
		StartLine:  start + 1,
		EndLine:    end,
		Message:    fmt.Sprintf("Applied suggestion to %s (backup saved to %s)", path, backupPath),
	}, nil
}

// splitLines splits content into lines with their original terminators
// attached. A trailing unterminated line counts as a line; a trailing
// terminator does not add an empty one.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}

	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i+1])
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

// dominantTerminator picks the line ending for replacement lines based on
// which one the file already uses most.
func dominantTerminator(content string) string {
	crlf := strings.Count(content, "\r\n")
	lf := strings.Count(content, "\n") - crlf
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}

// normalizeFragment rewrites the fragment so every line, including the last,
// ends with the given terminator.
func normalizeFragment(fragment, eol string) string {
	normalized := strings.ReplaceAll(fragment, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString(eol)
	}
	return b.String()
}
