package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"disease-detector/internal/ensemble"
	"disease-detector/internal/service"
)

// NoViableMessage is returned with an empty prediction list.
const NoViableMessage = "No matching conditions found. Please describe your symptoms in more detail."

// PredictionHandler 预测接口 Handler
type PredictionHandler struct {
	predictor service.Predictor
	logger    *zap.Logger
}

// NewPredictionHandler 创建预测 Handler
func NewPredictionHandler(predictor service.Predictor, logger *zap.Logger) *PredictionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionHandler{predictor: predictor, logger: logger}
}

type predictRequest struct {
	Symptoms  string `json:"symptoms"`
	PatientID string `json:"patient_id"`
}

type predictResponse struct {
	Predictions       []ensemble.Result `json:"predictions"`
	InputSymptoms     string            `json:"input_symptoms"`
	ModelsUsed        []string          `json:"models_used"`
	ModelsUnavailable map[string]string `json:"models_unavailable,omitempty"`
	HistoryApplied    []string          `json:"history_applied,omitempty"`
	Message           string            `json:"message,omitempty"`
}

// Predict POST /predict
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := readBodyJSON(r, MaxBodyBytes, &req); err != nil {
		h.logger.Warn("Invalid prediction request body", zap.Error(err))
		writeBodyError(w, err)
		return
	}

	pred, err := h.predictor.Predict(r.Context(), req.Symptoms, req.PatientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := predictResponse{
		Predictions:       pred.Results,
		InputSymptoms:     req.Symptoms,
		ModelsUsed:        pred.ModelsUsed,
		ModelsUnavailable: pred.ModelsUnavailable,
		HistoryApplied:    pred.HistoryApplied,
	}
	if resp.Predictions == nil {
		resp.Predictions = []ensemble.Result{}
	}
	if pred.NoViable {
		resp.Message = NoViableMessage
	}
	writeJSON(w, http.StatusOK, resp)
}
