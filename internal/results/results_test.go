package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/review"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), loggy.NewNoopLogger())
}

func TestSave(t *testing.T) {
	store := testStore(t)

	rec := &review.Record{
		Summary:      "One bug",
		FilePath:     "src/app/main.py",
		OverallScore: 6,
		Source:       review.SourceModel,
		Issues: []*review.Issue{
			{Type: review.IssueTypeBug, Severity: review.IssueSeverityHigh, Line: 3, Message: "oops"},
		},
	}

	path, err := store.Save(rec)
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "review_src_app_main_py_"), "got %s", name)
	assert.True(t, strings.HasSuffix(name, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded review.Record
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "One bug", loaded.Summary)
	assert.Equal(t, 6.0, loaded.OverallScore)
	require.Len(t, loaded.Issues, 1)
	assert.Equal(t, review.IssueSeverityHigh, loaded.Issues[0].Severity)
}

func TestSaveDefaultsEmptyLabel(t *testing.T) {
	store := testStore(t)

	path, err := store.Save(&review.Record{Summary: "pasted", Source: review.SourceModel})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "review_code_"))
}

func TestListNewestFirst(t *testing.T) {
	store := testStore(t)

	var paths []string
	for _, label := range []string{"a.py", "b.py", "c.py"} {
		path, err := store.Save(&review.Record{FilePath: label, Summary: "reviewed " + label, Source: review.SourceModel})
		require.NoError(t, err)
		paths = append(paths, path)
	}

	// Spread modification times so the order is unambiguous.
	now := time.Now()
	for i, path := range paths {
		age := time.Duration(len(paths)-i) * time.Hour
		require.NoError(t, os.Chtimes(path, now.Add(-age), now.Add(-age)))
	}

	saved, err := store.List(2)
	require.NoError(t, err)

	require.Len(t, saved, 2)
	assert.Equal(t, "c.py", saved[0].Record.FilePath)
	assert.Equal(t, "b.py", saved[1].Record.FilePath)
}

func TestListSkipsCorruptFiles(t *testing.T) {
	store := testStore(t)

	_, err := store.Save(&review.Record{FilePath: "good.py", Source: review.SourceModel})
	require.NoError(t, err)

	corrupt := filepath.Join(store.Dir(), "review_bad_20240101-000000.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0644))
	// Unrelated files are ignored entirely.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("hi"), 0644))

	saved, err := store.List(0)
	require.NoError(t, err)

	require.Len(t, saved, 1)
	assert.Equal(t, "good.py", saved[0].Record.FilePath)
}

func TestListMissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"), loggy.NewNoopLogger())

	saved, err := store.List(10)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "main_py", sanitizeName("main.py"))
	assert.Equal(t, "src_lib_util_go", sanitizeName("src/lib/util.go"))
	assert.Equal(t, "multiple_files", sanitizeName("multiple files"))
	assert.Equal(t, "code", sanitizeName(""))

	long := sanitizeName(strings.Repeat("x/", 200) + "deep.py")
	assert.LessOrEqual(t, len(long), maxNameLen)
	assert.True(t, strings.HasSuffix(long, "deep_py"))
}
