package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantorre/redline/internal/config"
	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/patch"
	"github.com/vantorre/redline/internal/results"
	"github.com/vantorre/redline/internal/review"
	"github.com/vantorre/redline/internal/workspace"
)

// fixedCapability always answers with the same scripted response
type fixedCapability struct {
	configured bool
	response   string
	err        error
}

func (f *fixedCapability) Invoke(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func (f *fixedCapability) Configured() bool { return f.configured }
func (f *fixedCapability) ModelID() string  { return "test-model" }

func newTestServer(t *testing.T, capability review.Capability) *Server {
	t.Helper()

	logger := loggy.NewNoopLogger()
	cfg := config.New()
	cfg.Bedrock.ModelID = "test-model"
	cfg.Review = config.ReviewConfig{
		ContextLines: 3,
		MaxFiles:     50,
		ResultsDir:   t.TempDir(),
	}

	scanner := workspace.NewScanner(logger)
	store := results.NewStore(cfg.Review.ResultsDir, logger)
	reviews := review.NewService(capability, scanner, nil, store, nil, cfg, logger)

	return New(reviews, scanner, store, nil, cfg, logger)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["bedrock_initialized"])
	assert.Equal(t, "test-model", body["model"])
}

func TestHealthNotConfigured(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{configured: false})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["bedrock_initialized"])
}

func TestReviewCodeEndpoint(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{
		configured: true,
		response:   `{"summary": "looks fine", "issues": [], "missing_docstrings": [], "overall_score": 9}`,
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/review/code", map[string]any{
		"code":     "print('hi')",
		"language": "Python",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var record review.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, 9.0, record.OverallScore)
	assert.Equal(t, review.PastedCodeLabel, record.FilePath)
	assert.Equal(t, review.SourceModel, record.Source)
}

func TestReviewCodeRequiresCode(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/review/code", map[string]any{"code": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "code is required")
}

func TestReviewFilePathEndpoint(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(target, []byte("package main\n"), 0644))

	srv := newTestServer(t, &fixedCapability{
		configured: true,
		response:   `{"summary": "ok", "issues": [], "missing_docstrings": [], "overall_score": 8}`,
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/review/file-path", map[string]any{
		"file_path": target,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var record review.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, target, record.FilePath)
}

func TestReviewDirectoryEmpty(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/review/directory", map[string]any{
		"dir_path": t.TempDir(),
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "no reviewable source files")
}

func TestReviewMultipleEndpoint(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.go", "b.go"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("package x\n"), 0644))
		paths = append(paths, p)
	}

	srv := newTestServer(t, &fixedCapability{
		configured: true,
		response:   `{"summary": "ok", "issues": [], "missing_docstrings": [], "overall_score": 7}`,
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/review/multiple", map[string]any{
		"file_paths": paths,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var record review.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, 2, record.FilesAnalyzed)
	assert.Equal(t, review.AggregateLabel, record.FilePath)
}

func TestReviewGitBadRepo(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/review/git", map[string]any{
		"repo_path": t.TempDir(),
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestApplyFixEndpoint(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.py")

	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("line%d", i))
	}
	original := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0644))

	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/fix/apply", map[string]any{
		"file_path":     target,
		"line":          5,
		"suggestion":    "Replace it:\n```suggestion\nfixed_line()\n```",
		"context_lines": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp applyFixResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, target+patch.BackupSuffix, resp.BackupPath)

	patched, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "line1\nfixed_line()\nline9\nline10\n", string(patched))

	backup, err := os.ReadFile(resp.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, original, string(backup))
}

func TestApplyFixMissingFile(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/fix/apply", map[string]any{
		"file_path":  filepath.Join(t.TempDir(), "missing.py"),
		"line":       1,
		"suggestion": "```suggestion\nx = 2\n```",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyFixNoFragment(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.py")
	require.NoError(t, os.WriteFile(target, []byte("x = 1\n"), 0644))

	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/fix/apply", map[string]any{
		"file_path":  target,
		"line":       1,
		"suggestion": "just rename the variable",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListResults(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{
		configured: true,
		response:   `{"summary": "ok", "issues": [], "missing_docstrings": [], "overall_score": 8}`,
	})

	// Archive one record through the pipeline, then list it back
	reviewRec := doJSON(t, srv.Handler(), http.MethodPost, "/api/review/code", map[string]any{
		"code": "x = 1",
	})
	require.Equal(t, http.StatusOK, reviewRec.Code)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/results?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []json.RawMessage `json:"results"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestListResultsBadLimit(t *testing.T) {
	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/results?limit=zero", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("notes\n"), 0644))

	srv := newTestServer(t, &fixedCapability{configured: true})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/files/list?dir="+dir, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Files []string `json:"files"`
		Count int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, filepath.Join(dir, "main.go"), body.Files[0])
}
