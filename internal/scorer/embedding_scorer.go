package scorer

import (
	"context"
	"fmt"
	"math"
	"sync"

	"disease-detector/internal/catalog"
)

// EmbeddingScorer scores by cosine similarity between the embedded query and
// each disease's embedded description.
type EmbeddingScorer struct {
	name     string
	embedder Embedder

	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewEmbeddingScorer 创建基于向量相似度的评分器
func NewEmbeddingScorer(name string, embedder Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{name: name, embedder: embedder}
}

// Name 评分器名称
func (s *EmbeddingScorer) Name() string { return s.name }

// ModelID is the backing embedding model.
func (s *EmbeddingScorer) ModelID() string { return s.embedder.ModelID() }

// Load embeds every disease description once.
func (s *EmbeddingScorer) Load(ctx context.Context, cat *catalog.Catalog) error {
	profiles := cat.Profiles()
	texts := make([]string, len(profiles))
	for i, p := range profiles {
		texts[i] = catalog.Description(p)
	}

	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed disease descriptions: %w", err)
	}
	if len(vecs) != len(profiles) {
		return fmt.Errorf("embed disease descriptions: got %d vectors for %d diseases", len(vecs), len(profiles))
	}

	vectors := make(map[string][]float32, len(profiles))
	for i, p := range profiles {
		if len(vecs[i]) == 0 {
			return fmt.Errorf("empty embedding for %q", p.Name)
		}
		vectors[p.Name] = vecs[i]
	}

	s.mu.Lock()
	s.vectors = vectors
	s.mu.Unlock()
	return nil
}

// Score embeds text and compares it with every loaded disease vector.
// Negative similarity maps to 0.
func (s *EmbeddingScorer) Score(ctx context.Context, text string, cat *catalog.Catalog) (catalog.ScoreVector, error) {
	s.mu.RLock()
	vectors := s.vectors
	s.mu.RUnlock()
	if vectors == nil {
		return nil, ErrNotReady
	}

	vecs, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed query: unexpected response shape")
	}
	query := vecs[0]

	out := catalog.NewScoreVector(cat)
	for name := range out {
		dv, ok := vectors[name]
		if !ok {
			return nil, fmt.Errorf("disease %q was not loaded", name)
		}
		if len(dv) != len(query) {
			return nil, fmt.Errorf("dimension mismatch for %q: %d != %d", name, len(dv), len(query))
		}
		out[name] = clamp01(cosine32(query, dv))
	}
	return out, nil
}

func cosine32(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
