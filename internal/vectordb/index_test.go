package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/embeddings"
)

func sampleRepos() []api.Repository {
	return []api.Repository{
		{ID: "1", FullName: "acme/router", HTMLURL: "https://github.com/acme/router", Description: "fast http router", Language: "Go", StargazersCount: 900},
		{ID: "2", FullName: "acme/sqlite", HTMLURL: "https://github.com/acme/sqlite", Description: "embedded database engine", Language: "C", StargazersCount: 40},
		{ID: "3", FullName: "acme/plots", HTMLURL: "https://github.com/acme/plots", Description: "charts for notebooks", Language: "Python", StargazersCount: 7},
	}
}

func newIndex(t *testing.T, dir string) *RepoIndex {
	t.Helper()
	idx, err := NewRepoIndex(embeddings.NewHashEmbedder(1024), dir)
	require.NoError(t, err)
	return idx
}

func TestRepoIndex_QueryRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")
	require.NoError(t, idx.Upsert(ctx, sampleRepos()))

	matches, err := idx.Query(ctx, "http router", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	top := matches[0]
	assert.Equal(t, "1", top.ID)
	assert.Equal(t, "acme/router", top.FullName)
	assert.Equal(t, "https://github.com/acme/router", top.HTMLURL)
	assert.Equal(t, "Go", top.Language)
	assert.Equal(t, 900, top.StargazersCount)
	assert.Greater(t, top.Similarity, matches[1].Similarity)
}

func TestRepoIndex_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")
	require.NoError(t, idx.Upsert(ctx, sampleRepos()))

	renamed := sampleRepos()[0]
	renamed.StargazersCount = 1000
	require.NoError(t, idx.Upsert(ctx, []api.Repository{renamed}))
	assert.Equal(t, 3, idx.Count())

	matches, err := idx.Query(ctx, "router", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1000, matches[0].StargazersCount)
}

func TestRepoIndex_TopKClampedToCount(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")

	matches, err := idx.Query(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	require.NoError(t, idx.Upsert(ctx, sampleRepos()[:2]))
	matches, err = idx.Query(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestRepoIndex_SkipsReposWithoutID(t *testing.T) {
	idx := newIndex(t, "")
	require.NoError(t, idx.Upsert(context.Background(), []api.Repository{{FullName: "nobody/anon"}}))
	assert.Zero(t, idx.Count())
}

func TestRepoIndex_Persists(t *testing.T) {
	dir := t.TempDir()
	idx := newIndex(t, dir)
	require.NoError(t, idx.Upsert(context.Background(), sampleRepos()))

	reopened := newIndex(t, dir)
	assert.Equal(t, 3, reopened.Count())

	matches, err := reopened.Query(context.Background(), "notebooks charts", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "acme/plots", matches[0].FullName)
}
