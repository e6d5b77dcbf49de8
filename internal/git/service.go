package git

import (
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/vantorre/redline/internal/loggy"
)

// Service provides diff operations against one opened repository
type Service struct {
	logger *loggy.Logger
	repo   *gogit.Repository
	path   string
}

// NewService creates a Git service. Open must be called before any diff
// operation.
func NewService(logger *loggy.Logger) *Service {
	return &Service{logger: logger}
}

// Open opens the repository at repoPath
func (s *Service) Open(repoPath string) error {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("opening git repo at %s: %w", repoPath, err)
	}

	s.repo = repo
	s.path = repoPath
	return nil
}

// IsRepo reports whether path contains a Git repository
func IsRepo(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

func (s *Service) ensureRepo() error {
	if s.repo == nil {
		return fmt.Errorf("git repository not opened")
	}
	return nil
}

// Diff compares two revisions (branch names, tags, or commit hashes) and
// returns per-file unified patches. Deleted files carry no patch body
// worth reviewing and are skipped, as are files whose patch is binary.
func (s *Service) Diff(base, head string) ([]ChangedFile, error) {
	if err := s.ensureRepo(); err != nil {
		return nil, err
	}

	baseCommit, err := s.resolveCommit(base)
	if err != nil {
		return nil, fmt.Errorf("resolving base revision %q: %w", base, err)
	}
	headCommit, err := s.resolveCommit(head)
	if err != nil {
		return nil, fmt.Errorf("resolving head revision %q: %w", head, err)
	}

	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading base tree: %w", err)
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading head tree: %w", err)
	}

	changes, err := baseTree.Diff(headTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	var files []ChangedFile
	for _, change := range changes {
		file, ok, err := s.processChange(change)
		if err != nil {
			s.logger.Warn("skipping undiffable change",
				"from", change.From.Name, "to", change.To.Name, "error", err)
			continue
		}
		if ok {
			files = append(files, file)
		}
	}

	s.logger.Debug("computed revision diff",
		"base", base, "head", head, "files", len(files))

	return files, nil
}

// resolveCommit resolves a revision string to its commit object
func (s *Service) resolveCommit(rev string) (*object.Commit, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, err
	}
	return s.repo.CommitObject(*hash)
}

// processChange converts one tree change into a ChangedFile. The second
// return value is false for changes that should not be reviewed.
func (s *Service) processChange(change *object.Change) (ChangedFile, bool, error) {
	changeType := classifyChange(change)
	if changeType == ChangeTypeDeleted {
		return ChangedFile{}, false, nil
	}

	patch, err := change.Patch()
	if err != nil {
		return ChangedFile{}, false, fmt.Errorf("generating patch: %w", err)
	}

	for _, fp := range patch.FilePatches() {
		if fp.IsBinary() {
			return ChangedFile{}, false, nil
		}
	}

	file := ChangedFile{
		Path:       change.To.Name,
		ChangeType: changeType,
		Patch:      patch.String(),
	}
	if change.From.Name != "" && change.From.Name != change.To.Name {
		file.OldPath = change.From.Name
	}

	return file, true, nil
}

// classifyChange maps a tree change onto added, modified, or deleted
func classifyChange(change *object.Change) ChangeType {
	switch {
	case change.From.TreeEntry.Hash.IsZero():
		return ChangeTypeAdded
	case change.To.TreeEntry.Hash.IsZero():
		return ChangeTypeDeleted
	default:
		return ChangeTypeModified
	}
}

// StagedFiles lists paths with staged (index) changes, sorted, excluding
// deletions.
func (s *Service) StagedFiles() ([]string, error) {
	if err := s.ensureRepo(); err != nil {
		return nil, err
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("getting worktree status: %w", err)
	}

	var paths []string
	for path, fileStatus := range status {
		switch fileStatus.Staging {
		case gogit.Unmodified, gogit.Untracked, gogit.Deleted:
			continue
		}
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths, nil
}
