package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"disease-detector/internal/models"
	"disease-detector/internal/repository"
	"disease-detector/internal/textproc"
)

// ErrPatientIDRequired 注册时缺少 patient_id
var ErrPatientIDRequired = &textproc.ValidationError{Field: "patient_id", Message: "Patient ID is required"}

// PatientDetail 患者信息及最近诊断历史
type PatientDetail struct {
	models.Patient
	History []models.HistoryRecord `json:"history"`
}

// PatientService 患者服务
type PatientService struct {
	repo         repository.PatientRepository
	historyLimit int
	logger       *zap.Logger
}

// NewPatientService 创建患者服务. historyLimit bounds the records returned
// by Get and History; exports are unbounded.
func NewPatientService(repo repository.PatientRepository, historyLimit int, logger *zap.Logger) *PatientService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientService{repo: repo, historyLimit: historyLimit, logger: logger}
}

// Register 注册患者
func (s *PatientService) Register(ctx context.Context, patientID, name string) (*models.Patient, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrPatientIDRequired
	}
	p, err := s.repo.CreatePatient(ctx, patientID, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	s.logger.Info("Patient registered", zap.String("patient_id", p.PatientID))
	return p, nil
}

// Get returns the patient with its most recent history.
func (s *PatientService) Get(ctx context.Context, patientID string) (*PatientDetail, error) {
	p, err := s.repo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, patientID, s.historyLimit)
	if err != nil {
		return nil, err
	}
	return &PatientDetail{Patient: *p, History: history}, nil
}

// History 最近诊断历史；未注册的患者返回空列表
func (s *PatientService) History(ctx context.Context, patientID string) ([]models.HistoryRecord, error) {
	return s.repo.ListHistory(ctx, patientID, s.historyLimit)
}

// ClearHistory deletes every record of a registered patient.
func (s *PatientService) ClearHistory(ctx context.Context, patientID string) (int64, error) {
	return s.repo.ClearHistory(ctx, patientID)
}

// ExportHistory returns the patient and its complete history for export.
func (s *PatientService) ExportHistory(ctx context.Context, patientID string) (*PatientDetail, error) {
	p, err := s.repo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, patientID, 0)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Patient history exported",
		zap.String("patient_id", patientID),
		zap.Int("records", len(history)),
	)
	return &PatientDetail{Patient: *p, History: history}, nil
}
