// Package embeddings turns repository descriptions and search queries into
// vectors for the semantic search index.
package embeddings

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// Embedder generates text embeddings.
type Embedder interface {
	// Embed generates one embedding per text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the length of the embedding vectors.
	Dimensions() int

	// Name identifies the embedding model.
	Name() string
}

// ToChromemFunc adapts an Embedder to chromem-go, which embeds one text at
// a time.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		results, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(results) != 1 {
			return nil, fmt.Errorf("%s returned %d embeddings for one text", e.Name(), len(results))
		}
		return results[0], nil
	}
}
