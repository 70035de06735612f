package embeddings

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i] * b[i])
	}
	return sum
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	vecs, err := e.Embed(context.Background(), []string{"HTTP router", "http  ROUTER!"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 64)
	assert.Equal(t, vecs[0], vecs[1])
	assert.InDelta(t, 1.0, norm(vecs[0]), 1e-5)
}

func TestHashEmbedder_SharedWordsAreCloser(t *testing.T) {
	e := NewHashEmbedder(1024)
	vecs, err := e.Embed(context.Background(), []string{"web router", "fast web router in go", "matrix algebra"})
	require.NoError(t, err)
	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]))
}

func TestHashEmbedder_EmptyTextIsUnitVector(t *testing.T) {
	e := NewHashEmbedder(0)
	assert.Equal(t, DefaultHashDimensions, e.Dimensions())

	vecs, err := e.Embed(context.Background(), []string{"  "})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, norm(vecs[0]), 1e-6)
}

func TestToChromemFunc(t *testing.T) {
	fn := ToChromemFunc(NewHashEmbedder(32))
	vec, err := fn(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 32)
}

func TestOpenAIEmbedder_Batches(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		batches = append(batches, len(req.Input))

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": []float32{float32(i), 1}}
		}
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	e := NewOpenAIEmbedderWithConfig(cfg, ModelTextEmbedding3Small)
	assert.Equal(t, 1536, e.Dimensions())

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = "line\nbreak"
	}
	vecs, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vecs, 150)
	assert.Equal(t, []int{100, 50}, batches)
}
