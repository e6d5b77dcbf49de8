package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vantorre/redline/internal/config"
	"github.com/vantorre/redline/internal/loggy"
)

// PullRequest is the subset of PR data the review pipeline consumes
type PullRequest struct {
	Owner  string   `json:"owner"`
	Repo   string   `json:"repo"`
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Author string   `json:"author,omitempty"`
	Files  []PRFile `json:"files"`
}

// Label returns the canonical "owner/repo#N" form of the pull request
func (pr *PullRequest) Label() string {
	return fmt.Sprintf("%s/%s#%d", pr.Owner, pr.Repo, pr.Number)
}

// PRFile is one changed file in a pull request with its unified patch
type PRFile struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Patch  string `json:"patch,omitempty"`
}

// Service provides pull-request retrieval
type Service struct {
	client *Client
	logger *loggy.Logger
}

// NewService creates a GitHub service
func NewService(cfg config.GitHubConfig, logger *loggy.Logger) (*Service, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Service{client: client, logger: logger}, nil
}

// ParseRef parses an "owner/repo#N" pull-request reference
func ParseRef(ref string) (owner, repo string, number int, err error) {
	repoPart, numPart, found := strings.Cut(ref, "#")
	if !found {
		return "", "", 0, fmt.Errorf("invalid PR reference %q: expected owner/repo#number", ref)
	}

	owner, repo, found = strings.Cut(repoPart, "/")
	if !found || owner == "" || repo == "" {
		return "", "", 0, fmt.Errorf("invalid PR reference %q: expected owner/repo#number", ref)
	}

	number, err = strconv.Atoi(numPart)
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("invalid PR number in %q", ref)
	}

	return owner, repo, number, nil
}

// FetchPullRequest retrieves a pull request and its per-file patches.
// Files without a patch body (binary, or too large for the API to inline)
// are skipped.
func (s *Service) FetchPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, err := s.client.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR %s/%s#%d: %w", owner, repo, number, err)
	}

	commitFiles, err := s.client.ListPullRequestFiles(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("listing files for PR %s/%s#%d: %w", owner, repo, number, err)
	}

	result := &PullRequest{
		Owner:  owner,
		Repo:   repo,
		Number: number,
		Title:  pr.GetTitle(),
		Author: pr.GetUser().GetLogin(),
	}

	for _, cf := range commitFiles {
		if cf.GetStatus() == "removed" || cf.GetPatch() == "" {
			continue
		}
		result.Files = append(result.Files, PRFile{
			Path:   cf.GetFilename(),
			Status: cf.GetStatus(),
			Patch:  cf.GetPatch(),
		})
	}

	s.logger.Debug("fetched pull request",
		"pr", result.Label(), "files", len(result.Files))

	return result, nil
}
