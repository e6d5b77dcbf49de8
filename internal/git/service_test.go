package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantorre/redline/internal/loggy"
)

// initTestRepo creates a repository with one initial commit
func initTestRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	writeAndCommit(t, repo, dir, "README.md", "# test repo\n", "initial commit")
	return dir, repo
}

func writeAndCommit(t *testing.T, repo *gogit.Repository, dir, name, content, message string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	_, err = worktree.Add(name)
	require.NoError(t, err)

	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestOpen(t *testing.T) {
	dir, _ := initTestRepo(t)

	service := NewService(loggy.NewNoopLogger())
	require.NoError(t, service.Open(dir))

	assert.True(t, IsRepo(dir))
	assert.False(t, IsRepo(t.TempDir()))
}

func TestDiffRequiresOpen(t *testing.T) {
	service := NewService(loggy.NewNoopLogger())

	_, err := service.Diff("HEAD~1", "HEAD")
	assert.ErrorContains(t, err, "not opened")

	_, err = service.StagedFiles()
	assert.ErrorContains(t, err, "not opened")
}

func TestDiff(t *testing.T) {
	dir, repo := initTestRepo(t)

	base := writeAndCommit(t, repo, dir, "main.go",
		"package main\n\nfunc main() {\n\tprintln(\"v1\")\n}\n", "add main")
	head := writeAndCommit(t, repo, dir, "main.go",
		"package main\n\nfunc main() {\n\tprintln(\"v2\")\n}\n", "change main")

	service := NewService(loggy.NewNoopLogger())
	require.NoError(t, service.Open(dir))

	files, err := service.Diff(base, head)
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "main.go", files[0].Path)
	assert.Equal(t, ChangeTypeModified, files[0].ChangeType)
	assert.Contains(t, files[0].Patch, "-\tprintln(\"v1\")")
	assert.Contains(t, files[0].Patch, "+\tprintln(\"v2\")")
}

func TestDiffAddedFile(t *testing.T) {
	dir, repo := initTestRepo(t)

	head, err := repo.Head()
	require.NoError(t, err)
	base := head.Hash().String()

	next := writeAndCommit(t, repo, dir, "new.go", "package new\n", "add new file")

	service := NewService(loggy.NewNoopLogger())
	require.NoError(t, service.Open(dir))

	files, err := service.Diff(base, next)
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "new.go", files[0].Path)
	assert.Equal(t, ChangeTypeAdded, files[0].ChangeType)
	assert.Contains(t, files[0].Patch, "+package new")
}

func TestDiffBadRevision(t *testing.T) {
	dir, _ := initTestRepo(t)

	service := NewService(loggy.NewNoopLogger())
	require.NoError(t, service.Open(dir))

	_, err := service.Diff("no-such-ref", "HEAD")
	assert.ErrorContains(t, err, "resolving base revision")
}

func TestStagedFiles(t *testing.T) {
	dir, repo := initTestRepo(t)

	service := NewService(loggy.NewNoopLogger())
	require.NoError(t, service.Open(dir))

	paths, err := service.StagedFiles()
	require.NoError(t, err)
	assert.Empty(t, paths)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "staged.go"), []byte("package staged\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unstaged.go"), []byte("package unstaged\n"), 0644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("staged.go")
	require.NoError(t, err)

	paths, err = service.StagedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"staged.go"}, paths)
}
