package sandbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/auth"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    RepoRef
		wantErr bool
	}{
		{raw: "https://github.com/acme/tool", want: RepoRef{"acme", "tool"}},
		{raw: "  https://github.com/acme/tool/  ", want: RepoRef{"acme", "tool"}},
		{raw: "https://github.com/acme/tool.git", want: RepoRef{"acme", "tool"}},
		{raw: "https://github.com/acme/tool/tree/main/src", want: RepoRef{"acme", "tool"}},
		{raw: "https://www.github.com/acme/tool", want: RepoRef{"acme", "tool"}},
		{raw: "https://gitlab.com/acme/tool", wantErr: true},
		{raw: "https://github.com/acme", wantErr: true},
		{raw: "github.com/acme/tool", wantErr: true},
		{raw: "ftp://github.com/acme/tool", wantErr: true},
		{raw: "https://github.com/../tool", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRepoURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRepoURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepoRefURL(t *testing.T) {
	assert.Equal(t, "https://github.com/acme/tool", RepoRef{"acme", "tool"}.URL())
}

func TestLocalSource_FileTooLarge(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "acme", "big")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.go"), make([]byte, 64), 0o644))

	src := NewLocalSource(root, 32)
	_, err := src.File(context.Background(), RepoRef{"acme", "big"}, "big.go")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLocalSource_EmptyRepository(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "acme", "empty"), 0o755))

	files, err := NewLocalSource(root, 0).Tree(context.Background(), RepoRef{"acme", "empty"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func newGitHubStub(t *testing.T) *GitHubSource {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/tool", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"default_branch": "trunk"})
	})
	mux.HandleFunc("/repos/acme/tool/git/trees/trunk", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		w.Write([]byte(`{"tree":[
			{"path":"src","type":"tree","sha":"t1"},
			{"path":"src/app.py","type":"blob","size":12,"sha":"b1"},
			{"path":"README.md","type":"blob","size":5,"sha":"b2"}
		]}`))
	})
	mux.HandleFunc("/repos/acme/tool/contents/src/app.py", func(w http.ResponseWriter, r *http.Request) {
		enc := base64.StdEncoding.EncodeToString([]byte("print('hi')\n"))
		json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"size":     12,
			"encoding": "base64",
			"content":  enc[:8] + "\n" + enc[8:],
		})
	})
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "router language:go", q.Get("q"))
		assert.Equal(t, "stars", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("order"))
		assert.Equal(t, "2", q.Get("per_page"))
		w.Write([]byte(`{"total_count":2,"items":[
			{"id":101,"full_name":"acme/mux","html_url":"https://github.com/acme/mux","description":"router","language":"Go","stargazers_count":50},
			{"id":102,"full_name":"acme/chi","html_url":"https://github.com/acme/chi","language":"Go","stargazers_count":20}
		]}`))
	})
	mux.HandleFunc("/repos/acme/tool/contents/huge.bin", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"type": "file", "size": 2_000_000})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	src := NewGitHubSource(auth.GitHubHTTPClient(context.Background(), "gh-secret", 0), 1_000_000)
	require.NoError(t, src.SetBaseURL(srv.URL))
	return src
}

func TestGitHubSource_TreeBlobsOnly(t *testing.T) {
	src := newGitHubStub(t)

	files, err := src.Tree(context.Background(), RepoRef{"acme", "tool"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "src/app.py", files[0].Path)
	assert.Equal(t, int64(12), files[0].Size)
	assert.Equal(t, "README.md", files[1].Path)
}

func TestGitHubSource_FileDecodesBase64(t *testing.T) {
	src := newGitHubStub(t)

	data, err := src.File(context.Background(), RepoRef{"acme", "tool"}, "src/app.py")
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))
}

func TestGitHubSource_Errors(t *testing.T) {
	src := newGitHubStub(t)
	ctx := context.Background()

	_, err := src.File(ctx, RepoRef{"acme", "tool"}, "huge.bin")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = src.File(ctx, RepoRef{"acme", "tool"}, "missing.go")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = src.Tree(ctx, RepoRef{"acme", "gone"})
	assert.ErrorIs(t, err, ErrRepoNotFound)
}

func TestGitHubSource_SearchByStars(t *testing.T) {
	src := newGitHubStub(t)

	repos, err := src.Search(context.Background(), SearchParams{Keywords: []string{"router"}, Languages: []string{"go"}}, 2)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, api.Repository{
		ID:              "101",
		FullName:        "acme/mux",
		HTMLURL:         "https://github.com/acme/mux",
		Description:     "router",
		Language:        "Go",
		StargazersCount: 50,
	}, repos[0])
	assert.Equal(t, "102", repos[1].ID)
	assert.Empty(t, repos[1].Description)
}

func TestGitHubSource_SearchEmptyQuery(t *testing.T) {
	src := newGitHubStub(t)

	repos, err := src.Search(context.Background(), SearchParams{Keywords: []string{" "}}, 10)
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestLocalSource_Search(t *testing.T) {
	src := NewLocalSource("../../testdata/repos", 1_000_000)
	ctx := context.Background()

	repos, err := src.Search(ctx, SearchParams{Keywords: []string{"FIXTURE"}}, 10)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "acme/sample", repos[0].FullName)
	assert.Equal(t, "https://github.com/acme/sample", repos[0].HTMLURL)
	assert.Equal(t, "Fixture repository served by the sandbox tests.", repos[0].Description)
	assert.Equal(t, "go", repos[0].Language)
	assert.NotEmpty(t, repos[0].ID)

	repos, err = src.Search(ctx, SearchParams{Keywords: []string{"sample"}, Languages: []string{"Python"}}, 10)
	require.NoError(t, err)
	assert.Empty(t, repos)

	repos, err = src.Search(ctx, SearchParams{Languages: []string{"Go"}}, 10)
	require.NoError(t, err)
	assert.Len(t, repos, 1)
}

func TestLocalSource_SearchLimitAndOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta-tool", "alpha-tool", "beta-tool"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "acme", name), 0o755))
	}

	repos, err := NewLocalSource(root, 0).Search(context.Background(), SearchParams{Keywords: []string{"tool"}}, 2)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "acme/alpha-tool", repos[0].FullName)
	assert.Equal(t, "acme/beta-tool", repos[1].FullName)
}
