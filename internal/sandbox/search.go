package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/llm"
	"github.com/ziadkadry99/repo-convert/internal/vectordb"
)

const (
	// SearchSourceLimit is how many repositories a search pulls from the
	// source before ranking.
	SearchSourceLimit = 10
	// SearchTopK is how many ranked matches a search returns.
	SearchTopK = 5
)

const extractPrompt = "Extract search parameters from this query about code. Return a JSON with 'keywords' and 'languages'."

var extractFunction = &llm.Function{
	Name:        "extract_params",
	Description: "Extract search parameters",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"keywords": {"type": "array", "items": {"type": "string"}},
			"languages": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["keywords", "languages"]
	}`),
}

// SearchParams is a structured repository search.
type SearchParams struct {
	Keywords  []string `json:"keywords"`
	Languages []string `json:"languages"`
}

// Query renders params in GitHub search syntax.
func (p SearchParams) Query() string {
	parts := make([]string, 0, len(p.Keywords)+len(p.Languages))
	for _, k := range p.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, k)
		}
	}
	for _, l := range p.Languages {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, "language:"+l)
		}
	}
	return strings.Join(parts, " ")
}

func (p SearchParams) matches(r api.Repository) bool {
	if len(p.Languages) > 0 {
		ok := false
		for _, l := range p.Languages {
			if strings.EqualFold(strings.TrimSpace(l), r.Language) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(p.Keywords) == 0 {
		return true
	}
	hay := strings.ToLower(r.FullName + " " + r.Description)
	for _, k := range p.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(hay, k) {
			return true
		}
	}
	return false
}

// KeywordExtractor turns a natural-language query into SearchParams with
// an LLM function call.
type KeywordExtractor struct {
	provider llm.Provider
	model    string
}

// NewKeywordExtractor creates an extractor using provider and model.
func NewKeywordExtractor(provider llm.Provider, model string) *KeywordExtractor {
	return &KeywordExtractor{provider: provider, model: model}
}

// Extract asks the model for keywords and languages. A reply that is not
// usable falls back to the words of the query.
func (e *KeywordExtractor) Extract(ctx context.Context, query string) (SearchParams, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: extractPrompt},
			{Role: llm.RoleUser, Content: query},
		},
		Function: extractFunction,
	})
	if err != nil {
		return SearchParams{}, fmt.Errorf("extracting search parameters: %w", err)
	}

	var params SearchParams
	if err := json.Unmarshal([]byte(resp.Content), &params); err != nil || len(params.Keywords) == 0 {
		logger.WithField("provider", e.provider.Name()).Debug("no structured search parameters, using query words")
		return SearchParams{Keywords: strings.Fields(query)}, nil
	}
	return params, nil
}

// Searcher finds repositories for a free-text query: it extracts search
// parameters, searches the source, indexes the hits and ranks everything
// indexed so far against the query.
type Searcher struct {
	extractor *KeywordExtractor
	source    RepoSource
	index     *vectordb.RepoIndex
}

// NewSearcher creates a Searcher.
func NewSearcher(extractor *KeywordExtractor, source RepoSource, index *vectordb.RepoIndex) *Searcher {
	return &Searcher{extractor: extractor, source: source, index: index}
}

// Search runs the full search pipeline for query.
func (s *Searcher) Search(ctx context.Context, query string) (*api.SearchResponse, error) {
	params, err := s.extractor.Extract(ctx, query)
	if err != nil {
		return nil, err
	}

	found, err := s.source.Search(ctx, params, SearchSourceLimit)
	if err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, found); err != nil {
		return nil, err
	}
	matches, err := s.index.Query(ctx, query, SearchTopK)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"query":   query,
		"found":   len(found),
		"matches": len(matches),
	}).Info("search completed")

	resp := &api.SearchResponse{
		Query:         query,
		Keywords:      params.Keywords,
		Languages:     params.Languages,
		Matches:       matches,
		GitHubResults: found,
	}
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	if resp.Languages == nil {
		resp.Languages = []string{}
	}
	if resp.Matches == nil {
		resp.Matches = []api.SearchMatch{}
	}
	if resp.GitHubResults == nil {
		resp.GitHubResults = []api.Repository{}
	}
	return resp, nil
}
