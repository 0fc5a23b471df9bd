package scorer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type embedRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

// InferenceEmbedder calls a text-embeddings-inference server
// (POST /embed, {"inputs": [...]} -> [[...], ...]).
type InferenceEmbedder struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

// NewInferenceEmbedder 创建远程推理服务客户端
func NewInferenceEmbedder(baseURL, model, apiKey string, logger *zap.Logger) *InferenceEmbedder {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(1 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InferenceEmbedder{httpClient: client, model: model, logger: logger}
}

// ModelID 模型标识
func (e *InferenceEmbedder) ModelID() string { return e.model }

// Embed sends all texts in one request.
func (e *InferenceEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	resp, err := e.httpClient.R().
		SetContext(ctx).
		SetBody(embedRequest{Inputs: texts, Truncate: true}).
		SetResult(&out).
		Post("/embed")
	if err != nil {
		return nil, fmt.Errorf("call inference server: %w", err)
	}
	if resp.IsError() {
		e.logger.Error("Inference server returned error",
			zap.String("model", e.model),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("inference server error: status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("inference server returned %d embeddings for %d inputs", len(out), len(texts))
	}
	return out, nil
}
