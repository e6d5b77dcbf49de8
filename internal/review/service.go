package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/vantorre/redline/internal/bedrock"
	"github.com/vantorre/redline/internal/config"
	"github.com/vantorre/redline/internal/extractor"
	"github.com/vantorre/redline/internal/git"
	"github.com/vantorre/redline/internal/github"
	"github.com/vantorre/redline/internal/history"
	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/patch"
	"github.com/vantorre/redline/internal/results"
	"github.com/vantorre/redline/internal/workspace"
)

// PastedCodeLabel is the synthetic FilePath used when reviewing code that
// was not read from a file.
const PastedCodeLabel = "pasted_code"

// Capability is the text-generation capability reviews are delegated to.
// bedrock.Client satisfies it; tests substitute a double.
type Capability interface {
	// Invoke submits a prompt and returns the raw response text
	Invoke(ctx context.Context, prompt string) (string, error)

	// Configured reports whether the capability can be invoked at all
	Configured() bool

	// ModelID identifies the underlying model
	ModelID() string
}

// Service runs the review pipeline: prompt construction, capability
// invocation, normalization, aggregation, persistence, and fix
// application.
type Service struct {
	capability Capability
	normalizer *extractor.Normalizer
	scanner    *workspace.Scanner
	github     *github.Service
	store      *results.Store
	runs       history.Repository
	cfg        *config.Config
	logger     *loggy.Logger

	persist bool
}

// NewService creates a review service. github may be nil when no PR source
// is configured; store and runs may be nil to disable persistence.
func NewService(
	capability Capability,
	scanner *workspace.Scanner,
	githubService *github.Service,
	store *results.Store,
	runs history.Repository,
	cfg *config.Config,
	logger *loggy.Logger,
) *Service {
	return &Service{
		capability: capability,
		normalizer: extractor.NewNormalizer(logger),
		scanner:    scanner,
		github:     githubService,
		store:      store,
		runs:       runs,
		cfg:        cfg,
		logger:     logger,
		persist:    true,
	}
}

// DisablePersistence turns off the results sink and history recording for
// subsequent reviews.
func (s *Service) DisablePersistence() {
	s.persist = false
}

// Configured reports whether the underlying capability can be invoked
func (s *Service) Configured() bool {
	return s.capability.Configured()
}

// ModelID identifies the model reviews are delegated to
func (s *Service) ModelID() string {
	return s.capability.ModelID()
}

// ReviewCode reviews a piece of code text. label identifies what is being
// reviewed (a path or a synthetic name; empty defaults to "pasted_code")
// and language is the source language when known.
func (s *Service) ReviewCode(ctx context.Context, code, label, language string) *Record {
	if label == "" {
		label = PastedCodeLabel
	}
	return s.runReview(ctx, code, label, language, false)
}

// ReviewDiff reviews unified diff text. Diffs flow through the same
// pipeline as file content; only the prompt differs.
func (s *Service) ReviewDiff(ctx context.Context, diff, label string) *Record {
	return s.runReview(ctx, diff, label, "", true)
}

// ReviewFile reads and reviews a single file. Read failures produce an
// error record, not a panic or a hard error.
func (s *Service) ReviewFile(ctx context.Context, path string) *Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return s.finish(NewErrorRecord(path, fmt.Sprintf("cannot read file: %v", err)))
	}
	if !utf8.Valid(data) {
		return s.finish(NewErrorRecord(path, "file is not valid UTF-8 text"))
	}

	language := s.scanner.DetectLanguage(path)
	return s.runReview(ctx, string(data), path, language, false)
}

// ReviewFiles reviews multiple files sequentially and aggregates the
// results. One file's failure does not abort the batch: it is logged,
// kept as an error record, and excluded from the aggregate score. The
// list is truncated at the configured cap rather than failing.
func (s *Service) ReviewFiles(ctx context.Context, paths []string) *Record {
	records, requested := s.reviewEach(ctx, paths, s.cfg.Review.MaxFiles)
	return s.finish(Aggregate(records, requested))
}

// reviewEach runs the best-effort per-file loop shared by the batch
// drivers, applying the file cap by truncation.
func (s *Service) reviewEach(ctx context.Context, paths []string, max int) ([]*Record, int) {
	requested := len(paths)
	if max > 0 && len(paths) > max {
		s.logger.Warn("truncating batch at file cap", "requested", requested, "cap", max)
		paths = paths[:max]
	}

	var records []*Record
	for _, path := range paths {
		rec := s.ReviewFile(ctx, path)
		if rec.Failed() {
			s.logger.Warn("file review failed, continuing batch", "path", path, "error", rec.Error)
		}
		records = append(records, rec)
	}

	return records, requested
}

// ReviewDirectory discovers source files under dir and reviews them as a
// batch. The aggregate is labeled with the directory path. maxFiles
// overrides the configured cap when positive.
func (s *Service) ReviewDirectory(ctx context.Context, dir string, maxFiles int) (*Record, error) {
	if maxFiles <= 0 {
		maxFiles = s.cfg.Review.MaxFiles
	}

	files, err := s.scanner.FindSourceFiles(dir, maxFiles)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no reviewable source files under %s", dir)
	}

	records, requested := s.reviewEach(ctx, files, maxFiles)
	agg := Aggregate(records, requested)
	agg.FilePath = dir
	return s.finish(agg), nil
}

// ReviewRepo reviews the changes between two revisions of a local
// repository, one diff review per changed file.
func (s *Service) ReviewRepo(ctx context.Context, repoPath, base, head string) (*Record, error) {
	gitService := git.NewService(s.logger)
	if err := gitService.Open(repoPath); err != nil {
		return nil, err
	}

	files, err := gitService.Diff(base, head)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no reviewable changes between %s and %s", base, head)
	}

	var records []*Record
	for _, file := range files {
		records = append(records, s.ReviewDiff(ctx, file.Patch, file.Path))
	}

	return s.finish(Aggregate(records, len(files))), nil
}

// ReviewStaged reviews the files currently staged in a local repository.
// Staged files are reviewed as whole files, not patches, since the index
// may hold partial hunks the tree diff cannot represent cheaply.
func (s *Service) ReviewStaged(ctx context.Context, repoPath string) (*Record, error) {
	gitService := git.NewService(s.logger)
	if err := gitService.Open(repoPath); err != nil {
		return nil, err
	}

	paths, err := gitService.StagedFiles()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("no staged changes to review")
	}

	for i, p := range paths {
		paths[i] = filepath.Join(repoPath, p)
	}
	return s.ReviewFiles(ctx, paths), nil
}

// ReviewPullRequest fetches a GitHub pull request by "owner/repo#N"
// reference and reviews its per-file patches.
func (s *Service) ReviewPullRequest(ctx context.Context, ref string) (*Record, error) {
	if s.github == nil {
		return nil, errors.New("github source not configured")
	}

	owner, repo, number, err := github.ParseRef(ref)
	if err != nil {
		return nil, err
	}

	pr, err := s.github.FetchPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	if len(pr.Files) == 0 {
		return nil, fmt.Errorf("%s has no reviewable files", pr.Label())
	}

	var records []*Record
	for _, file := range pr.Files {
		records = append(records, s.ReviewDiff(ctx, file.Patch, file.Path))
	}

	agg := Aggregate(records, len(pr.Files))
	agg.FilePath = pr.Label()
	return s.finish(agg), nil
}

// ApplyFix extracts the code fragment from one issue's suggestion and
// splices it into the target file. Error records are refused outright;
// extraction failures surface as extractor.ErrNoSuggestion and the patch
// applier is never reached.
func (s *Service) ApplyFix(ctx context.Context, rec *Record, issueIndex, contextLines int) (*patch.Result, error) {
	if rec == nil || rec.Failed() {
		return nil, errors.New("cannot apply a fix from a failed review")
	}
	if issueIndex < 0 || issueIndex >= len(rec.Issues) {
		return nil, fmt.Errorf("issue index %d out of range (%d issues)", issueIndex, len(rec.Issues))
	}

	issue := rec.Issues[issueIndex]

	fragment, err := extractor.ExtractSuggestionCode(issue.Suggestion)
	if err != nil {
		return nil, err
	}

	path := issue.FilePath
	if path == "" {
		path = rec.FilePath
	}
	if path == "" || path == AggregateLabel || path == PastedCodeLabel {
		return nil, fmt.Errorf("issue has no applicable file path (%q)", path)
	}

	if contextLines <= 0 {
		contextLines = s.cfg.Review.ContextLines
	}

	result, err := patch.Apply(path, issue.Line, fragment, patch.WithContextLines(contextLines))
	if err != nil {
		return nil, err
	}

	s.logger.Info("applied suggestion",
		"path", result.Path,
		"backup", result.BackupPath,
		"issue", issue.Message)

	return result, nil
}

// runReview builds the prompt, invokes the capability, and normalizes the
// response. Capability unavailability and invocation failures both become
// error records; undecodable responses become fallback records.
func (s *Service) runReview(ctx context.Context, code, label, language string, diffMode bool) *Record {
	if !s.capability.Configured() {
		return s.finish(NewErrorRecord(label, bedrock.ErrNotConfigured.Error()))
	}

	prompt, err := BuildReviewPrompt(code, &PromptOptions{
		Label:    label,
		Language: language,
		DiffMode: diffMode,
	})
	if err != nil {
		return s.finish(NewErrorRecord(label, fmt.Sprintf("building prompt: %v", err)))
	}

	raw, err := s.capability.Invoke(ctx, prompt)
	if err != nil {
		return s.finish(NewErrorRecord(label, err.Error()))
	}
	if raw == "" {
		return s.finish(NewErrorRecord(label, "model returned no content"))
	}

	out := s.normalizer.Normalize(raw)
	rec := NewRecord(out, label)

	s.logger.Debug("review complete",
		"label", label,
		"source", rec.Source,
		"issues", len(rec.Issues),
		"score", rec.OverallScore)

	return s.finish(rec)
}

// finish archives a record in the results sink and the history store.
// Persistence failures are logged warnings, never review failures.
func (s *Service) finish(rec *Record) *Record {
	if !s.persist {
		return rec
	}

	if s.store != nil {
		if _, err := s.store.Save(rec); err != nil {
			s.logger.Warn("failed to archive review record", "error", err)
		}
	}
	if s.runs != nil {
		if err := s.runs.SaveRun(context.Background(), history.NewRun(rec)); err != nil {
			s.logger.Warn("failed to record review run", "error", err)
		}
	}
	return rec
}
