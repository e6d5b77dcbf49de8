// Package workspace discovers reviewable source files under a directory
// and detects their language for prompt labeling.
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/vantorre/redline/internal/loggy"
)

// sampleSize is how much of a file is read for content-based language
// detection.
const sampleSize = 8 * 1024

// skippedDirs are directory names never descended into: VCS metadata,
// dependency trees and build output.
var skippedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".idea":        true,
	".vscode":      true,
}

// Scanner finds source files and detects languages
type Scanner struct {
	logger *loggy.Logger
}

// NewScanner creates a Scanner
func NewScanner(logger *loggy.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// FindSourceFiles walks dir and returns up to max reviewable source files
// in deterministic (sorted) order. Hitting the cap truncates the list
// rather than failing. Hidden files, vendored trees and non-code files
// are skipped.
func (s *Scanner) FindSourceFiles(dir string, max int) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("accessing directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != dir && (skippedDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if s.isReviewable(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Strings(files)

	if max > 0 && len(files) > max {
		s.logger.Warn("truncating file list at cap", "found", len(files), "cap", max)
		files = files[:max]
	}

	return files, nil
}

// DetectLanguage determines the programming language of a file, reading a
// small content sample and falling back to the extension. Unknown files
// return an empty string.
func (s *Scanner) DetectLanguage(path string) string {
	sample, err := readSample(path, sampleSize)
	if err != nil {
		s.logger.Debug("cannot sample file for language detection", "path", path, "error", err)
		sample = nil
	}

	lang := enry.GetLanguage(filepath.Base(path), sample)
	if lang == "" {
		lang, _ = enry.GetLanguageByExtension(path)
	}
	return lang
}

// isReviewable reports whether a file looks like reviewable source code:
// a detectable programming language that is neither vendored, generated,
// binary, nor pure data/markup.
func (s *Scanner) isReviewable(path string) bool {
	if enry.IsVendor(path) || enry.IsDotFile(path) {
		return false
	}

	sample, err := readSample(path, sampleSize)
	if err != nil {
		return false
	}
	if enry.IsBinary(sample) {
		return false
	}
	if enry.IsGenerated(path, sample) {
		return false
	}

	lang := enry.GetLanguage(filepath.Base(path), sample)
	if lang == "" {
		lang, _ = enry.GetLanguageByExtension(path)
	}
	if lang == "" {
		return false
	}

	// Pure data (JSON, YAML) and prose (Markdown) are excluded.
	return enry.GetLanguageType(lang) == enry.Programming
}

// readSample reads up to n bytes from the head of a file
func readSample(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}
