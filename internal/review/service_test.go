package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantorre/redline/internal/config"
	"github.com/vantorre/redline/internal/extractor"
	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/patch"
	"github.com/vantorre/redline/internal/workspace"
)

// fakeCapability is a scripted Capability double. Responses are served in
// order; after they run out the last one repeats.
type fakeCapability struct {
	configured bool
	responses  []string
	err        error
	prompts    []string
}

func (f *fakeCapability) Invoke(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeCapability) Configured() bool { return f.configured }
func (f *fakeCapability) ModelID() string  { return "test-model" }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Review = config.ReviewConfig{
		ContextLines: 3,
		MaxFiles:     50,
		ResultsDir:   t.TempDir(),
	}
	return cfg
}

func newTestService(t *testing.T, capability Capability) *Service {
	t.Helper()
	logger := loggy.NewNoopLogger()
	svc := NewService(capability, workspace.NewScanner(logger), nil, nil, nil, testConfig(t), logger)
	svc.DisablePersistence()
	return svc
}

func modelResponse(score float64, issues string) string {
	return fmt.Sprintf(`{"summary": "reviewed", "issues": [%s], "missing_docstrings": [], "overall_score": %g}`, issues, score)
}

func TestReviewCodeNotConfigured(t *testing.T) {
	svc := newTestService(t, &fakeCapability{configured: false})

	rec := svc.ReviewCode(context.Background(), "print('hi')", "", "Python")

	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "not initialized")
	assert.Equal(t, PastedCodeLabel, rec.FilePath)
	assert.Empty(t, rec.Issues)
}

func TestReviewCodeSuccess(t *testing.T) {
	fake := &fakeCapability{
		configured: true,
		responses: []string{modelResponse(8.5,
			`{"type": "bug", "severity": "high", "line": 2, "message": "off by one", "suggestion": ""}`)},
	}
	svc := newTestService(t, fake)

	rec := svc.ReviewCode(context.Background(), "x = 1\ny = 2\n", "snippet.py", "Python")

	require.True(t, rec.Usable())
	assert.Equal(t, SourceModel, rec.Source)
	assert.Equal(t, 8.5, rec.OverallScore)
	assert.Equal(t, "snippet.py", rec.FilePath)
	require.Len(t, rec.Issues, 1)
	assert.Equal(t, IssueSeverityHigh, rec.Issues[0].Severity)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "snippet.py, Python")
	assert.Contains(t, fake.prompts[0], "ONLY valid JSON")
}

func TestReviewCodeCapabilityFailure(t *testing.T) {
	svc := newTestService(t, &fakeCapability{
		configured: true,
		err:        errors.New("ThrottlingException: slow down"),
	})

	rec := svc.ReviewCode(context.Background(), "code", "file.go", "Go")

	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "ThrottlingException")
}

func TestReviewCodeUndecodableFallsBack(t *testing.T) {
	raw := "I could not produce JSON, sorry."
	svc := newTestService(t, &fakeCapability{configured: true, responses: []string{raw}})

	rec := svc.ReviewCode(context.Background(), "code", "file.go", "Go")

	require.False(t, rec.Failed(), "fallback is a degraded success, never an error")
	assert.True(t, rec.Degraded())
	assert.Equal(t, extractor.FallbackScore, rec.OverallScore)
	assert.Equal(t, raw, rec.RawResponse)
}

func TestReviewCodeEmptyResponse(t *testing.T) {
	svc := newTestService(t, &fakeCapability{configured: true, responses: []string{""}})

	rec := svc.ReviewCode(context.Background(), "code", "file.go", "Go")

	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "no content")
}

func TestReviewDiffPrompt(t *testing.T) {
	fake := &fakeCapability{configured: true, responses: []string{modelResponse(9, "")}}
	svc := newTestService(t, fake)

	rec := svc.ReviewDiff(context.Background(), "@@ -1 +1 @@\n-a\n+b\n", "main.go")

	require.True(t, rec.Usable())
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "unified diff")
}

func TestReviewFileUnreadable(t *testing.T) {
	svc := newTestService(t, &fakeCapability{configured: true})

	rec := svc.ReviewFile(context.Background(), filepath.Join(t.TempDir(), "missing.go"))

	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "cannot read file")
}

func TestReviewFilesAggregation(t *testing.T) {
	// Three files: scored 8, scored 6, and one unreadable (excluded).
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.go")
	fileB := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(fileA, []byte("package a\n"), 0644))
	require.NoError(t, os.WriteFile(fileB, []byte("package b\n"), 0644))
	missing := filepath.Join(dir, "missing.go")

	fake := &fakeCapability{
		configured: true,
		responses: []string{
			modelResponse(8, `{"type": "style", "severity": "low", "line": 1, "message": "nit"}`),
			modelResponse(6, ""),
		},
	}
	svc := newTestService(t, fake)

	agg := svc.ReviewFiles(context.Background(), []string{fileA, fileB, missing})

	assert.Equal(t, 7.0, agg.OverallScore)
	assert.Equal(t, 2, agg.FilesAnalyzed)
	assert.Equal(t, 3, agg.FilesRequested)
	assert.Equal(t, AggregateLabel, agg.FilePath)
	require.Len(t, agg.Issues, 1)
	assert.Equal(t, fileA, agg.Issues[0].FilePath, "aggregated issues are tagged with their origin")
}

func TestReviewFilesCapTruncates(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("package x\n"), 0644))
		paths = append(paths, p)
	}

	fake := &fakeCapability{configured: true, responses: []string{modelResponse(7, "")}}
	svc := newTestService(t, fake)
	svc.cfg.Review.MaxFiles = 2

	agg := svc.ReviewFiles(context.Background(), paths)

	assert.Equal(t, 2, agg.FilesAnalyzed)
	assert.Equal(t, 3, agg.FilesRequested)
	assert.Len(t, fake.prompts, 2)
}

func TestReviewDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))

	svc := newTestService(t, &fakeCapability{configured: true, responses: []string{modelResponse(9, "")}})

	rec, err := svc.ReviewDirectory(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Equal(t, dir, rec.FilePath, "directory aggregates are labeled with the directory path")
	assert.Equal(t, 1, rec.FilesAnalyzed)
}

func TestReviewDirectoryEmpty(t *testing.T) {
	svc := newTestService(t, &fakeCapability{configured: true})

	_, err := svc.ReviewDirectory(context.Background(), t.TempDir(), 0)
	assert.ErrorContains(t, err, "no reviewable source files")
}

func TestApplyFixEndToEnd(t *testing.T) {
	// A 10-line file, issue at line 5 with a ```suggestion fence, context 3
	// -> a 4-line file and a 10-line backup.
	dir := t.TempDir()
	target := filepath.Join(dir, "target.py")

	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("line%d", i))
	}
	original := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0644))

	rec := &Record{
		Summary: "one fix",
		Issues: []*Issue{{
			Type:       IssueTypeBug,
			Severity:   IssueSeverityHigh,
			Line:       5,
			Message:    "broken line",
			Suggestion: "Replace it:\n```suggestion\nfixed_line()\n```",
		}},
		OverallScore: 6,
		FilePath:     target,
		Source:       SourceModel,
	}

	svc := newTestService(t, &fakeCapability{configured: true})

	result, err := svc.ApplyFix(context.Background(), rec, 0, 3)
	require.NoError(t, err)

	assert.Equal(t, target, result.Path)
	assert.Equal(t, target+patch.BackupSuffix, result.BackupPath)

	patched, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "line1\nfixed_line()\nline9\nline10\n", string(patched))

	backup, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, original, string(backup), "backup must be byte-identical to the pre-fix file")
}

func TestApplyFixRefusals(t *testing.T) {
	svc := newTestService(t, &fakeCapability{configured: true})
	ctx := context.Background()

	t.Run("failed record", func(t *testing.T) {
		rec := NewErrorRecord("x.go", "capability down")
		_, err := svc.ApplyFix(ctx, rec, 0, 3)
		assert.ErrorContains(t, err, "failed review")
	})

	t.Run("index out of range", func(t *testing.T) {
		rec := &Record{Source: SourceModel, Issues: []*Issue{}}
		_, err := svc.ApplyFix(ctx, rec, 0, 3)
		assert.ErrorContains(t, err, "out of range")
	})

	t.Run("no suggestion fragment", func(t *testing.T) {
		rec := &Record{
			Source:   SourceModel,
			FilePath: "x.go",
			Issues:   []*Issue{{Line: 1, Suggestion: "just use a better name"}},
		}
		_, err := svc.ApplyFix(ctx, rec, 0, 3)
		assert.ErrorIs(t, err, extractor.ErrNoSuggestion)
	})

	t.Run("synthetic path", func(t *testing.T) {
		rec := &Record{
			Source:   SourceModel,
			FilePath: PastedCodeLabel,
			Issues:   []*Issue{{Line: 1, Suggestion: "```suggestion\nx = 2\n```"}},
		}
		_, err := svc.ApplyFix(ctx, rec, 0, 3)
		assert.ErrorContains(t, err, "no applicable file path")
	})
}
