package sandbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/embeddings"
	"github.com/ziadkadry99/repo-convert/internal/llm"
	"github.com/ziadkadry99/repo-convert/internal/vectordb"
)

// scriptedProvider replies with a fixed completion and records requests.
type scriptedProvider struct {
	content string
	err     error
	reqs    []llm.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.reqs = append(p.reqs, req)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.content, FinishReason: "stop"}, nil
}

// fixedSource returns canned search results.
type fixedSource struct {
	LocalSource
	repos  []api.Repository
	params []SearchParams
}

func (s *fixedSource) Search(_ context.Context, params SearchParams, limit int) ([]api.Repository, error) {
	s.params = append(s.params, params)
	if len(s.repos) > limit {
		return s.repos[:limit], nil
	}
	return s.repos, nil
}

func TestSearchParamsQuery(t *testing.T) {
	p := SearchParams{Keywords: []string{"web", " ", "router"}, Languages: []string{"Go", "Rust"}}
	assert.Equal(t, "web router language:Go language:Rust", p.Query())
	assert.Empty(t, SearchParams{}.Query())
}

func TestKeywordExtractor_FunctionCall(t *testing.T) {
	p := &scriptedProvider{content: `{"keywords":["router","http"],"languages":["go"]}`}

	params, err := NewKeywordExtractor(p, "gpt-4o-mini").Extract(context.Background(), "a fast http router in go")
	require.NoError(t, err)
	assert.Equal(t, SearchParams{Keywords: []string{"router", "http"}, Languages: []string{"go"}}, params)

	require.Len(t, p.reqs, 1)
	req := p.reqs[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.NotNil(t, req.Function)
	assert.Equal(t, "extract_params", req.Function.Name)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"keywords": {"type": "array", "items": {"type": "string"}},
			"languages": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["keywords", "languages"]
	}`, string(req.Function.Parameters))
	assert.Equal(t, "a fast http router in go", req.Messages[len(req.Messages)-1].Content)
}

func TestKeywordExtractor_FallsBackToQueryWords(t *testing.T) {
	for name, content := range map[string]string{
		"text reply":     "plain text",
		"empty keywords": `{"keywords":[],"languages":["go"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := &scriptedProvider{content: content}
			params, err := NewKeywordExtractor(p, "m").Extract(context.Background(), "web  router")
			require.NoError(t, err)
			assert.Equal(t, SearchParams{Keywords: []string{"web", "router"}}, params)
		})
	}
}

func TestKeywordExtractor_ProviderError(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := NewKeywordExtractor(&scriptedProvider{err: boom}, "m").Extract(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestSearcher_IndexAccumulates(t *testing.T) {
	ctx := context.Background()
	index, err := vectordb.NewRepoIndex(embeddings.NewHashEmbedder(1024), "")
	require.NoError(t, err)

	source := &fixedSource{repos: []api.Repository{
		{ID: "1", FullName: "acme/router", Description: "http router", Language: "Go"},
	}}
	provider := &scriptedProvider{content: `{"keywords":["router"],"languages":[]}`}
	searcher := NewSearcher(NewKeywordExtractor(provider, "m"), source, index)

	resp, err := searcher.Search(ctx, "http router")
	require.NoError(t, err)
	assert.Equal(t, []string{"router"}, resp.Keywords)
	assert.Equal(t, []string{}, resp.Languages)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "acme/router", resp.Matches[0].FullName)
	assert.Equal(t, []SearchParams{{Keywords: []string{"router"}, Languages: []string{}}}, source.params)

	// A later search that finds something else still ranks what earlier
	// searches indexed.
	source.repos = []api.Repository{{ID: "2", FullName: "acme/plots", Description: "charts", Language: "Python"}}
	resp, err = searcher.Search(ctx, "http router")
	require.NoError(t, err)
	require.Len(t, resp.GitHubResults, 1)
	assert.Equal(t, "acme/plots", resp.GitHubResults[0].FullName)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "acme/router", resp.Matches[0].FullName)
}

func TestSearcher_SourceErrorStops(t *testing.T) {
	index, err := vectordb.NewRepoIndex(embeddings.NewHashEmbedder(64), "")
	require.NoError(t, err)
	provider := &scriptedProvider{content: `{"keywords":["x"],"languages":[]}`}
	searcher := NewSearcher(NewKeywordExtractor(provider, "m"), NewLocalSource("/nonexistent/repos", 0), index)

	_, err = searcher.Search(context.Background(), "x")
	assert.Error(t, err)
	assert.Zero(t, index.Count())
}
