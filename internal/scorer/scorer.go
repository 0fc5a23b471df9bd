// Package scorer wraps embedding models as per-disease similarity scorers and
// tracks their load lifecycle.
package scorer

import (
	"context"
	"errors"

	"disease-detector/internal/catalog"
)

var (
	// ErrNotReady 模型未就绪
	ErrNotReady = errors.New("model not ready")
	// ErrTimeout 模型调用超时
	ErrTimeout = errors.New("model call timed out")
)

// Scorer produces a per-disease affinity in [0,1] for a symptom text.
// Implementations must be safe for concurrent Score calls once Load returned.
type Scorer interface {
	Name() string
	Load(ctx context.Context, cat *catalog.Catalog) error
	Score(ctx context.Context, text string, cat *catalog.Catalog) (catalog.ScoreVector, error)
}

// Embedder maps texts to dense vectors in one embedding space.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}

// Outcome is the result of one scorer call: either a complete score vector
// or the reason the scorer could not produce one.
type Outcome struct {
	Model  string
	Vector catalog.ScoreVector
	Reason error
}

// Available wraps a successful score vector.
func Available(model string, v catalog.ScoreVector) Outcome {
	return Outcome{Model: model, Vector: v}
}

// Unavailable records why a scorer produced no data.
func Unavailable(model string, reason error) Outcome {
	if reason == nil {
		reason = ErrNotReady
	}
	return Outcome{Model: model, Reason: reason}
}

// OK reports whether the outcome carries a score vector.
func (o Outcome) OK() bool {
	return o.Reason == nil && o.Vector != nil
}
