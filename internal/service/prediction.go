package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"disease-detector/internal/ensemble"
	"disease-detector/internal/models"
	"disease-detector/internal/repository"
	"disease-detector/internal/telemetry"
	"disease-detector/internal/textproc"
)

const logSymptomsMax = 100

// Predictor 预测服务接口（HTTP 层与 CLI 共用）
type Predictor interface {
	Predict(ctx context.Context, symptoms, patientID string) (*ensemble.Prediction, error)
}

// PredictionService runs the engine, records the top result in the
// patient's history and emits one telemetry event per request that passed
// validation.
type PredictionService struct {
	engine   *ensemble.Engine
	repo     repository.PatientRepository
	observer telemetry.Observer
	logger   *zap.Logger
	now      func() time.Time
}

// NewPredictionService 创建预测服务. repo and observer may be nil.
func NewPredictionService(engine *ensemble.Engine, repo repository.PatientRepository, observer telemetry.Observer, logger *zap.Logger) *PredictionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{
		engine:   engine,
		repo:     repo,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// Predict 执行一次疾病预测
func (s *PredictionService) Predict(ctx context.Context, symptoms, patientID string) (*ensemble.Prediction, error) {
	start := s.now()
	patientID = strings.TrimSpace(patientID)

	s.logger.Info("Prediction request received",
		zap.String("patient_id", logPatient(patientID)),
		zap.String("symptoms", truncate(symptoms, logSymptomsMax)),
	)

	pred, err := s.engine.Predict(ctx, ensemble.Query{Text: symptoms, PatientID: patientID})
	if err != nil {
		var verr *textproc.ValidationError
		if errors.As(err, &verr) {
			s.logger.Warn("Prediction request rejected", zap.String("reason", verr.Message))
			return nil, err
		}
		s.emit(ctx, telemetry.NewEvent(false, 0, s.now().Sub(start), "", patientID))
		s.logger.Error("Prediction failed",
			zap.String("patient_id", logPatient(patientID)),
			zap.Error(err),
		)
		return nil, err
	}

	top, ok := pred.Top()
	if ok && patientID != "" {
		s.recordHistory(ctx, patientID, symptoms, top)
	}

	duration := s.now().Sub(start)
	if ok {
		s.emit(ctx, telemetry.NewEvent(true, top.Confidence/100, duration, top.Disease, patientID))
		s.logger.Info("Prediction completed",
			zap.String("patient_id", logPatient(patientID)),
			zap.String("disease", top.Disease),
			zap.Float64("confidence", top.Confidence),
			zap.Duration("duration", duration),
		)
	} else {
		s.emit(ctx, telemetry.NewEvent(true, 0, duration, "", patientID))
		s.logger.Info("Prediction found no viable condition",
			zap.String("patient_id", logPatient(patientID)),
			zap.Duration("duration", duration),
		)
	}
	return pred, nil
}

// recordHistory failures are logged; the prediction is still returned.
func (s *PredictionService) recordHistory(ctx context.Context, patientID, symptoms string, top ensemble.Result) {
	if s.repo == nil {
		return
	}
	rec := &models.HistoryRecord{
		PatientID:        patientID,
		Symptoms:         symptoms,
		PredictedDisease: top.Disease,
		Confidence:       top.Confidence / 100,
	}
	if err := s.repo.AppendHistory(ctx, rec); err != nil {
		s.logger.Error("Error saving prediction to history",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}
}

func (s *PredictionService) emit(ctx context.Context, e telemetry.Event) {
	if s.observer == nil {
		return
	}
	if err := s.observer.Observe(ctx, e); err != nil {
		s.logger.Warn("Failed to record telemetry", zap.Error(err))
	}
}

func logPatient(patientID string) string {
	if patientID == "" {
		return "anonymous"
	}
	return patientID
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
