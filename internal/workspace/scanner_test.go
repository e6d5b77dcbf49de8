package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantorre/redline/internal/loggy"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFindSourceFiles(t *testing.T) {
	dir := t.TempDir()
	scanner := NewScanner(loggy.NewNoopLogger())

	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, dir, "util.py", "def add(a, b):\n    return a + b\n")
	writeFile(t, dir, "sub/handler.go", "package sub\n")
	writeFile(t, dir, "README.md", "# readme\n")
	writeFile(t, dir, "data.json", `{"a": 1}`)
	writeFile(t, dir, ".hidden.go", "package hidden\n")
	writeFile(t, dir, ".git/config", "[core]\n")
	writeFile(t, dir, "node_modules/pkg/index.js", "module.exports = {}\n")
	writeFile(t, dir, "vendor/dep/dep.go", "package dep\n")

	files, err := scanner.FindSourceFiles(dir, 0)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}

	assert.Equal(t, []string{"main.go", "sub/handler.go", "util.py"}, names)
}

func TestFindSourceFilesCap(t *testing.T) {
	dir := t.TempDir()
	scanner := NewScanner(loggy.NewNoopLogger())

	writeFile(t, dir, "a.go", "package a\n")
	writeFile(t, dir, "b.go", "package b\n")
	writeFile(t, dir, "c.go", "package c\n")

	files, err := scanner.FindSourceFiles(dir, 2)
	require.NoError(t, err)
	require.Len(t, files, 2, "the list is truncated at the cap, not an error")
	assert.Equal(t, filepath.Join(dir, "a.go"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.go"), files[1])
}

func TestFindSourceFilesNotADirectory(t *testing.T) {
	dir := t.TempDir()
	scanner := NewScanner(loggy.NewNoopLogger())
	path := writeFile(t, dir, "file.go", "package main\n")

	_, err := scanner.FindSourceFiles(path, 0)
	assert.Error(t, err)

	_, err = scanner.FindSourceFiles(filepath.Join(dir, "missing"), 0)
	assert.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	dir := t.TempDir()
	scanner := NewScanner(loggy.NewNoopLogger())

	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"main.go", "package main\n\nfunc main() {}\n", "Go"},
		{"script.py", "import os\n\nprint(os.getcwd())\n", "Python"},
		{"app.js", "const x = 1;\nconsole.log(x);\n", "JavaScript"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, tc.name, tc.content)
			assert.Equal(t, tc.want, scanner.DetectLanguage(path))
		})
	}
}

func TestDetectLanguageMissingFileFallsBackToExtension(t *testing.T) {
	scanner := NewScanner(loggy.NewNoopLogger())
	assert.Equal(t, "Go", scanner.DetectLanguage("/nonexistent/thing.go"))
}
