// Package github fetches pull-request patches so they can be reviewed
// exactly like local diffs.
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v59/github"
	"golang.org/x/oauth2"

	"github.com/vantorre/redline/internal/config"
)

// defaultAPIURL is the public GitHub API endpoint
const defaultAPIURL = "https://api.github.com"

// Client wraps the go-github client
type Client struct {
	client *gh.Client
}

// NewClient creates a GitHub API client. An empty token yields an
// anonymous client, which works for public repositories at a low rate
// limit.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout

	client := gh.NewClient(httpClient)
	if cfg.APIURL != "" && cfg.APIURL != defaultAPIURL {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.APIURL, cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise API URL: %w", err)
		}
	}

	return &Client{client: client}, nil
}

// GetPullRequest gets a pull request by number
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*gh.PullRequest, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must be provided")
	}

	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	return pr, err
}

// ListPullRequestFiles gets all files in a pull request, following
// pagination.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*gh.CommitFile, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must be provided")
	}

	opts := &gh.ListOptions{PerPage: 100}
	var all []*gh.CommitFile
	for {
		files, resp, err := c.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}
