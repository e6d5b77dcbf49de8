// Package results archives review records as timestamped JSON files so a
// run's output survives the process and can be listed later.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/review"
)

// maxNameLen bounds the sanitized label so deep paths cannot push the
// filename past filesystem limits.
const maxNameLen = 100

// Store writes and lists archived review records
type Store struct {
	dir    string
	logger *loggy.Logger
}

// NewStore creates a results store rooted at dir
func NewStore(dir string, logger *loggy.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the directory records are archived in
func (s *Store) Dir() string {
	return s.dir
}

// Saved is one archived record together with its file metadata
type Saved struct {
	Name    string         `json:"filename"`
	Path    string         `json:"-"`
	ModTime time.Time      `json:"-"`
	Record  *review.Record `json:"results"`
}

// Save writes the record as pretty-printed JSON named after what was
// reviewed and the current UTC time, and returns the file path.
func (s *Store) Save(rec *review.Record) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	label := rec.FilePath
	if label == "" {
		label = "code"
	}

	name := fmt.Sprintf("review_%s_%s.json",
		sanitizeName(label),
		time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing results file: %w", err)
	}

	s.logger.Debug("archived review record", "path", path, "source", rec.Source)
	return path, nil
}

// List returns up to limit archived records, newest first. Files that no
// longer parse are skipped, not fatal.
func (s *Store) List(limit int) ([]*Saved, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading results directory: %w", err)
	}

	var saved []*Saved
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "review_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable results file", "path", path, "error", err)
			continue
		}

		var rec review.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			s.logger.Warn("skipping unparseable results file", "path", path, "error", err)
			continue
		}

		saved = append(saved, &Saved{
			Name:    name,
			Path:    path,
			ModTime: info.ModTime(),
			Record:  &rec,
		})
	}

	sort.Slice(saved, func(i, j int) bool {
		return saved[i].ModTime.After(saved[j].ModTime)
	})

	if limit > 0 && len(saved) > limit {
		saved = saved[:limit]
	}
	return saved, nil
}

// sanitizeName keeps letters and digits and folds everything else to an
// underscore, matching the archived-filename convention.
func sanitizeName(label string) string {
	var b strings.Builder
	for _, r := range label {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	name := b.String()
	if len(name) > maxNameLen {
		name = name[len(name)-maxNameLen:]
	}
	if name == "" {
		name = "code"
	}
	return name
}
