package scorer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"disease-detector/internal/catalog"
)

// Embedding backends selectable per model slot.
const (
	ProviderHashing   = "hashing"
	ProviderInference = "inference"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// ModelConfig 单个模型槽位配置
type ModelConfig struct {
	Name       string
	Provider   string
	Model      string
	URL        string
	APIKey     string
	Weight     float64
	Dimensions int
}

// NewEmbedder builds the embedding backend named by cfg.Provider.
func NewEmbedder(ctx context.Context, cfg ModelConfig, logger *zap.Logger) (Embedder, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderHashing:
		return NewHashingEmbedder(cfg.Name+"/"+cfg.Model, cfg.Dimensions), nil
	case ProviderInference, "tei":
		if cfg.URL == "" {
			return nil, fmt.Errorf("model %s: inference provider requires a URL", cfg.Name)
		}
		return NewInferenceEmbedder(cfg.URL, cfg.Model, cfg.APIKey, logger), nil
	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg.APIKey, cfg.URL, cfg.Model, cfg.Dimensions)
	case ProviderGemini:
		return NewGeminiEmbedder(ctx, cfg.APIKey, cfg.URL, cfg.Model, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("model %s: unknown embedding provider %q", cfg.Name, cfg.Provider)
	}
}

// BuildInstance wraps cfg in an Instance. A backend that cannot be
// constructed still yields an Instance; it turns FAILED on Load so the
// failure shows up in health output instead of aborting start-up.
func BuildInstance(ctx context.Context, cfg ModelConfig, timeout time.Duration, logger *zap.Logger) *Instance {
	embedder, err := NewEmbedder(ctx, cfg, logger)
	if err != nil {
		return NewInstance(&brokenScorer{name: cfg.Name, err: err}, cfg.Weight, logger,
			WithTimeout(timeout), WithModelID(cfg.Model))
	}
	return NewInstance(NewEmbeddingScorer(cfg.Name, embedder), cfg.Weight, logger, WithTimeout(timeout))
}

type brokenScorer struct {
	name string
	err  error
}

func (b *brokenScorer) Name() string { return b.name }

func (b *brokenScorer) Load(context.Context, *catalog.Catalog) error { return b.err }

func (b *brokenScorer) Score(context.Context, string, *catalog.Catalog) (catalog.ScoreVector, error) {
	return nil, b.err
}
