package httpapi

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"disease-detector/internal/scorer"
	"disease-detector/internal/telemetry"
)

// ModelStatus reports scorer readiness; *scorer.Pool implements it.
type ModelStatus interface {
	ReadyNames() []string
	Health() []scorer.ModelHealth
}

// Stats is the in-process prediction statistics source; *telemetry.Collector
// implements it.
type Stats interface {
	HasData() bool
	Snapshot(modelsLoaded int) telemetry.Performance
	PrometheusText(modelsLoaded int) string
}

// MonitoringHandler 健康检查、Prometheus 指标与性能统计
type MonitoringHandler struct {
	models ModelStatus
	stats  Stats
	logger *zap.Logger
}

func NewMonitoringHandler(models ModelStatus, stats Stats, logger *zap.Logger) *MonitoringHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitoringHandler{models: models, stats: stats, logger: logger}
}

type healthResponse struct {
	Status       string               `json:"status"`
	ModelsLoaded int                  `json:"models_loaded"`
	ModelNames   []string             `json:"model_names"`
	EnsembleMode bool                 `json:"ensemble_mode"`
	Models       []scorer.ModelHealth `json:"models"`
}

// Health GET /health
func (h *MonitoringHandler) Health(w http.ResponseWriter, r *http.Request) {
	names := h.models.ReadyNames()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "healthy",
		ModelsLoaded: len(names),
		ModelNames:   names,
		EnsembleMode: len(names) > 1,
		Models:       h.models.Health(),
	})
}

// Metrics GET /metrics
func (h *MonitoringHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, h.stats.PrometheusText(len(h.models.ReadyNames()))); err != nil {
		h.logger.Warn("Failed to write metrics", zap.Error(err))
	}
}

// Performance GET /api/performance
func (h *MonitoringHandler) Performance(w http.ResponseWriter, r *http.Request) {
	if !h.stats.HasData() {
		writeError(w, http.StatusNotFound, "No statistics available")
		return
	}
	writeJSON(w, http.StatusOK, h.stats.Snapshot(len(h.models.ReadyNames())))
}
