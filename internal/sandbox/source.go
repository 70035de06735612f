package sandbox

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/walker"
)

var (
	// ErrInvalidRepoURL is returned for anything that is not a
	// https://github.com/<owner>/<repo> URL.
	ErrInvalidRepoURL = errors.New("invalid GitHub repository URL")
	// ErrRepoNotFound is returned when the source has no such repository.
	ErrRepoNotFound = errors.New("repository not found")
	// ErrFileNotFound is returned when the repository has no such file.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileTooLarge is returned for files above the size limit.
	ErrFileTooLarge = errors.New("file too large to convert")
)

// RepoRef identifies a GitHub repository.
type RepoRef struct {
	Owner string
	Name  string
}

// URL returns the canonical repository URL.
func (r RepoRef) URL() string {
	return "https://github.com/" + r.Owner + "/" + r.Name
}

func (r RepoRef) String() string { return r.Owner + "/" + r.Name }

// ParseRepoURL extracts owner and repository from a GitHub URL. Trailing
// path segments such as /tree/main are ignored.
func ParseRepoURL(raw string) (RepoRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return RepoRef{}, ErrInvalidRepoURL
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return RepoRef{}, ErrInvalidRepoURL
	}
	if host := strings.ToLower(u.Host); host != "github.com" && host != "www.github.com" {
		return RepoRef{}, ErrInvalidRepoURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, ErrInvalidRepoURL
	}
	ref := RepoRef{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}
	if !validSegment(ref.Owner) || !validSegment(ref.Name) {
		return RepoRef{}, ErrInvalidRepoURL
	}
	return ref, nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `\`)
}

// RepoSource lists, reads and searches repositories.
type RepoSource interface {
	Tree(ctx context.Context, ref RepoRef) ([]api.TreeFile, error)
	File(ctx context.Context, ref RepoRef, filePath string) ([]byte, error)
	Search(ctx context.Context, params SearchParams, limit int) ([]api.Repository, error)
}

// LocalSource serves repositories checked out under Root/<owner>/<repo>.
type LocalSource struct {
	Root        string
	MaxFileSize int64
}

// NewLocalSource creates a LocalSource rooted at root.
func NewLocalSource(root string, maxFileSize int64) *LocalSource {
	return &LocalSource{Root: root, MaxFileSize: maxFileSize}
}

func (s *LocalSource) repoDir(ref RepoRef) string {
	return filepath.Join(s.Root, ref.Owner, ref.Name)
}

// Tree lists the text files of a local repository.
func (s *LocalSource) Tree(ctx context.Context, ref RepoRef) ([]api.TreeFile, error) {
	dir := s.repoDir(ref)
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%s: %w", ref, ErrRepoNotFound)
	}

	files, err := walker.Walk(walker.WalkerConfig{RootDir: dir, MaxFileSize: s.MaxFileSize})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", ref, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := make([]api.TreeFile, 0, len(files))
	for _, f := range files {
		tree = append(tree, api.TreeFile{Path: f.RelPath, Type: "blob", Size: f.Size})
	}
	return tree, nil
}

// File reads one file of a local repository.
func (s *LocalSource) File(ctx context.Context, ref RepoRef, filePath string) ([]byte, error) {
	clean := path.Clean("/" + filepath.ToSlash(filePath))[1:]
	if clean == "" || strings.HasPrefix(clean, "../") {
		return nil, fmt.Errorf("%s: %w", filePath, ErrFileNotFound)
	}
	full := filepath.Join(s.repoDir(ref), filepath.FromSlash(clean))

	st, err := os.Stat(full)
	if err != nil || !st.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", filePath, ErrFileNotFound)
	}
	if s.MaxFileSize > 0 && st.Size() > s.MaxFileSize {
		return nil, fmt.Errorf("%s: %w", filePath, ErrFileTooLarge)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	return data, nil
}

// Search matches the local repositories against params. A keyword matches
// the full name or the README summary, case-insensitively; a language
// matches the most common language of the repository's files.
func (s *LocalSource) Search(ctx context.Context, params SearchParams, limit int) ([]api.Repository, error) {
	if params.Query() == "" {
		return nil, nil
	}

	owners, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.Root, err)
	}

	var repos []api.Repository
	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}
		names, err := os.ReadDir(filepath.Join(s.Root, owner.Name()))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", owner.Name(), err)
		}
		for _, name := range names {
			if !name.IsDir() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ref := RepoRef{Owner: owner.Name(), Name: name.Name()}
			repo := s.describe(ref)
			if params.matches(repo) {
				repos = append(repos, repo)
			}
		}
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].FullName < repos[j].FullName })
	if limit > 0 && len(repos) > limit {
		repos = repos[:limit]
	}
	return repos, nil
}

func (s *LocalSource) describe(ref RepoRef) api.Repository {
	dir := s.repoDir(ref)
	return api.Repository{
		ID:          strconv.FormatUint(uint64(crc32.ChecksumIEEE([]byte(ref.String()))), 10),
		FullName:    ref.String(),
		HTMLURL:     ref.URL(),
		Description: readmeSummary(dir),
		Language:    dominantLanguage(dir, s.MaxFileSize),
	}
}

// readmeSummary returns the first prose line of the repository README.
func readmeSummary(dir string) string {
	for _, name := range []string{"README.md", "README", "readme.md"} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				return line
			}
		}
		return ""
	}
	return ""
}

func dominantLanguage(dir string, maxFileSize int64) string {
	files, err := walker.Walk(walker.WalkerConfig{RootDir: dir, MaxFileSize: maxFileSize})
	if err != nil {
		return ""
	}
	counts := make(map[string]int)
	best := ""
	for _, f := range files {
		lang := walker.DetectLanguage(f.RelPath)
		if lang == walker.UnknownLanguage {
			continue
		}
		counts[lang]++
		if counts[lang] > counts[best] || (counts[lang] == counts[best] && lang < best) {
			best = lang
		}
	}
	return best
}
