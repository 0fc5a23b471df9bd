package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"disease-detector/internal/catalog"
)

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder("clinical", 128)
	a, err := e.Embed(context.Background(), []string{"fever and chills"})
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), []string{"fever and chills"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a[0], 128)

	other, err := NewHashingEmbedder("pubmed", 128).Embed(context.Background(), []string{"fever and chills"})
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestHashingEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	vecs, err := NewHashingEmbedder("s", 16).Embed(context.Background(), []string{""})
	require.NoError(t, err)
	for _, v := range vecs[0] {
		assert.Zero(t, v)
	}
}

func TestEmbeddingScorer_DescriptionScoresHighest(t *testing.T) {
	cat := testCatalog(t)
	s := NewEmbeddingScorer("clinical", NewHashingEmbedder("clinical", 0))
	require.NoError(t, s.Load(context.Background(), cat))

	flu, _ := cat.Get("Flu")
	v, err := s.Score(context.Background(), catalog.Description(flu), cat)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, v["Flu"], 1e-6)
	for name, score := range v {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, v["Flu"], name)
	}
}

func TestEmbeddingScorer_NotLoaded(t *testing.T) {
	s := NewEmbeddingScorer("clinical", NewHashingEmbedder("clinical", 0))
	_, err := s.Score(context.Background(), "fever", testCatalog(t))
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestInferenceEmbedder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := make([][]float32, len(req.Inputs))
		for i := range req.Inputs {
			out[i] = []float32{float32(i + 1), 0}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}))
	t.Cleanup(server.Close)

	e := NewInferenceEmbedder(server.URL, "bio-clinical", "secret", zap.NewNop())
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {2, 0}}, vecs)
	assert.Equal(t, "bio-clinical", e.ModelID())
}

func TestInferenceEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model overloaded"}`, http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	e := NewInferenceEmbedder(server.URL, "m", "", zap.NewNop())
	_, err := e.Embed(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestOpenAIEmbedder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": []float32{0, 1}},
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0}},
			},
			"usage": map[string]any{"prompt_tokens": 4, "total_tokens": 4},
		})
	}))
	t.Cleanup(server.Close)

	e, err := NewOpenAIEmbedder("test-key", server.URL+"/v1", "", 0)
	require.NoError(t, err)
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
	assert.Equal(t, "text-embedding-3-small", e.ModelID())
}

func TestGeminiEmbedder_RequiresKey(t *testing.T) {
	_, err := NewGeminiEmbedder(context.Background(), "", "", "", 0)
	assert.Error(t, err)
}
