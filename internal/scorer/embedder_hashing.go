package scorer

import (
	"context"
	"hash/fnv"
	"math"

	"disease-detector/internal/textproc"
)

// DefaultHashingDimensions is the HashingEmbedder vector size when unset.
const DefaultHashingDimensions = 512

// HashingEmbedder is an offline, deterministic embedder using signed feature
// hashing over word stems, stem bigrams and character trigrams. The seed
// selects the embedding space, so differently seeded instances disagree the
// way distinct models do.
type HashingEmbedder struct {
	seed string
	dims int
}

// NewHashingEmbedder 创建本地哈希向量器
func NewHashingEmbedder(seed string, dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &HashingEmbedder{seed: seed, dims: dims}
}

// ModelID 模型标识
func (e *HashingEmbedder) ModelID() string { return "hashing:" + e.seed }

// Embed never fails unless ctx is done.
func (e *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *HashingEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dims)
	tokens := textproc.PhraseTokens(text)
	for i, tok := range tokens {
		e.add(vec, "w:"+tok, 1)
		if i > 0 {
			e.add(vec, "b:"+tokens[i-1]+" "+tok, 0.5)
		}
		padded := "^" + tok + "$"
		for j := 0; j+3 <= len(padded); j++ {
			e.add(vec, "c:"+padded[j:j+3], 0.25)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

func (e *HashingEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(e.seed))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}
