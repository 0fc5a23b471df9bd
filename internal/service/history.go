package service

import (
	"context"
	"fmt"

	"disease-detector/internal/repository"
)

// DefaultHistoryLimit 参与历史加权的最近记录数
const DefaultHistoryLimit = 10

// RepositoryHistory adapts the patient store to ensemble.HistorySource.
type RepositoryHistory struct {
	repo  repository.PatientRepository
	limit int
}

// NewRepositoryHistory reads at most limit recent records per lookup.
func NewRepositoryHistory(repo repository.PatientRepository, limit int) *RepositoryHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &RepositoryHistory{repo: repo, limit: limit}
}

// PriorDiseases returns the distinct diseases of the patient's recent
// history, newest first. Unknown patients simply have no history.
func (h *RepositoryHistory) PriorDiseases(ctx context.Context, patientID string) ([]string, error) {
	records, err := h.repo.ListHistory(ctx, patientID, h.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior diseases: %w", err)
	}
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.PredictedDisease == "" {
			continue
		}
		if _, ok := seen[rec.PredictedDisease]; ok {
			continue
		}
		seen[rec.PredictedDisease] = struct{}{}
		names = append(names, rec.PredictedDisease)
	}
	return names, nil
}
