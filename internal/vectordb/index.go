// Package vectordb keeps the repositories seen by searches in a chromem-go
// collection and ranks them against free-text queries.
package vectordb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/embeddings"
)

const collectionName = "repositories"

// Metadata keys stored with every repository document.
const (
	metaFullName    = "full_name"
	metaHTMLURL     = "html_url"
	metaDescription = "description"
	metaLanguage    = "language"
	metaStars       = "stargazers_count"
)

// RepoIndex is a semantic index of repositories keyed by repository ID.
type RepoIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewRepoIndex opens the index. An empty persistDir keeps it in memory;
// otherwise it is stored compressed under persistDir.
func NewRepoIndex(embedder embeddings.Embedder, persistDir string) (*RepoIndex, error) {
	var db *chromem.DB
	if persistDir == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(persistDir, true)
		if err != nil {
			return nil, fmt.Errorf("opening vector store at %s: %w", persistDir, err)
		}
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", collectionName, err)
	}
	return &RepoIndex{db: db, collection: col}, nil
}

// Upsert embeds repos and stores them. A repository already in the index is
// replaced.
func (x *RepoIndex) Upsert(ctx context.Context, repos []api.Repository) error {
	if len(repos) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(repos))
	for _, r := range repos {
		if r.ID == "" {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:      r.ID,
			Content: documentText(r),
			Metadata: map[string]string{
				metaFullName:    r.FullName,
				metaHTMLURL:     r.HTMLURL,
				metaDescription: r.Description,
				metaLanguage:    r.Language,
				metaStars:       strconv.Itoa(r.StargazersCount),
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}

	if err := x.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("indexing %d repositories: %w", len(docs), err)
	}
	return nil
}

// Query returns up to topK repositories ranked by similarity to text.
func (x *RepoIndex) Query(ctx context.Context, text string, topK int) ([]api.SearchMatch, error) {
	n := min(topK, x.collection.Count())
	if n <= 0 || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	results, err := x.collection.Query(ctx, text, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying repositories: %w", err)
	}

	matches := make([]api.SearchMatch, 0, len(results))
	for _, res := range results {
		stars, _ := strconv.Atoi(res.Metadata[metaStars])
		matches = append(matches, api.SearchMatch{
			Repository: api.Repository{
				ID:              res.ID,
				FullName:        res.Metadata[metaFullName],
				HTMLURL:         res.Metadata[metaHTMLURL],
				Description:     res.Metadata[metaDescription],
				Language:        res.Metadata[metaLanguage],
				StargazersCount: stars,
			},
			Similarity: res.Similarity,
		})
	}
	return matches, nil
}

// Count returns the number of indexed repositories.
func (x *RepoIndex) Count() int { return x.collection.Count() }

func documentText(r api.Repository) string {
	var b strings.Builder
	b.WriteString(r.FullName)
	if r.Description != "" {
		b.WriteString(": ")
		b.WriteString(r.Description)
	}
	if r.Language != "" {
		b.WriteString(" (")
		b.WriteString(r.Language)
		b.WriteString(")")
	}
	return b.String()
}
