package sandbox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/ziadkadry99/repo-convert/internal/api"
)

const blobType = "blob"

// GitHubSource reads and searches repositories through the GitHub REST API.
type GitHubSource struct {
	MaxFileSize int64
	client      *gh.Client
}

// NewGitHubSource creates a source against api.github.com. Authentication
// is left to hc; see auth.GitHubHTTPClient. A nil hc means anonymous,
// rate-limited access.
func NewGitHubSource(hc *http.Client, maxFileSize int64) *GitHubSource {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &GitHubSource{
		MaxFileSize: maxFileSize,
		client:      gh.NewClient(hc),
	}
}

// SetBaseURL points the source at another API root, such as a GitHub
// Enterprise server.
func (s *GitHubSource) SetBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimRight(raw, "/") + "/")
	if err != nil {
		return fmt.Errorf("parsing github url: %w", err)
	}
	s.client.BaseURL = u
	return nil
}

// Tree lists the blobs on the default branch.
func (s *GitHubSource) Tree(ctx context.Context, ref RepoRef) ([]api.TreeFile, error) {
	repo, resp, err := s.client.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, githubError(resp, ref.String(), ErrRepoNotFound, err)
	}
	branch := repo.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}

	tree, resp, err := s.client.Git.GetTree(ctx, ref.Owner, ref.Name, branch, true)
	if err != nil {
		return nil, githubError(resp, ref.String(), ErrRepoNotFound, err)
	}

	files := make([]api.TreeFile, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != blobType {
			continue
		}
		files = append(files, api.TreeFile{
			Path: entry.GetPath(),
			Type: blobType,
			Size: int64(entry.GetSize()),
			SHA:  entry.GetSHA(),
		})
	}
	return files, nil
}

// File downloads and decodes one file.
func (s *GitHubSource) File(ctx context.Context, ref RepoRef, filePath string) ([]byte, error) {
	fileContent, _, resp, err := s.client.Repositories.GetContents(
		ctx, ref.Owner, ref.Name, strings.Trim(filePath, "/"),
		&gh.RepositoryContentGetOptions{},
	)
	if err != nil {
		return nil, githubError(resp, filePath, ErrFileNotFound, err)
	}
	if fileContent == nil || (fileContent.GetType() != "" && fileContent.GetType() != "file") {
		return nil, fmt.Errorf("%s: %w", filePath, ErrFileNotFound)
	}
	if s.MaxFileSize > 0 && int64(fileContent.GetSize()) > s.MaxFileSize {
		return nil, fmt.Errorf("%s: %w", filePath, ErrFileTooLarge)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filePath, err)
	}
	return []byte(content), nil
}

// Search runs a repository search, most starred first.
func (s *GitHubSource) Search(ctx context.Context, params SearchParams, limit int) ([]api.Repository, error) {
	q := params.Query()
	if q == "" {
		return nil, nil
	}

	result, _, err := s.client.Search.Repositories(ctx, q, &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("searching github for %q: %w", q, err)
	}

	repos := make([]api.Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, api.Repository{
			ID:              strconv.FormatInt(r.GetID(), 10),
			FullName:        r.GetFullName(),
			HTMLURL:         r.GetHTMLURL(),
			Description:     r.GetDescription(),
			Language:        r.GetLanguage(),
			StargazersCount: r.GetStargazersCount(),
		})
	}
	if len(repos) > limit && limit > 0 {
		repos = repos[:limit]
	}
	return repos, nil
}

// githubError maps a 404 onto notFound and wraps everything else.
func githubError(resp *gh.Response, what string, notFound, err error) error {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", what, notFound)
	}
	return fmt.Errorf("github %s: %w", what, err)
}
