package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"disease-detector/internal/common/config"
	"disease-detector/internal/common/database"
	"disease-detector/internal/models"
)

func setupSQLiteRepo(t *testing.T) *SQLPatientRepository {
	t.Helper()
	db, err := database.NewSQLiteDB(&config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "patients.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewSQLitePatientRepository(db, zap.NewNop())
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestSQLite_PatientLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)

	p, err := repo.CreatePatient(ctx, "P001", "Ada")
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	_, err = repo.CreatePatient(ctx, "P001", "Someone Else")
	assert.ErrorIs(t, err, ErrPatientExists)

	got, err := repo.GetPatient(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Second)

	_, err = repo.GetPatient(ctx, "P404")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestSQLite_History(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)
	_, err := repo.CreatePatient(ctx, "P001", "")
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, disease := range []string{"Flu", "Strep Throat", "Strep Throat"} {
		require.NoError(t, repo.AppendHistory(ctx, &models.HistoryRecord{
			PatientID:        "P001",
			Symptoms:         "symptoms",
			PredictedDisease: disease,
			Confidence:       0.5 + float64(i)/10,
			CreatedAt:        base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := repo.ListHistory(ctx, "P001", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Strep Throat", all[0].PredictedDisease)
	assert.InDelta(t, 0.7, all[0].Confidence, 1e-9)
	assert.Equal(t, "Flu", all[2].PredictedDisease)

	limited, err := repo.ListHistory(ctx, "P001", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	n, err := repo.ClearHistory(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	all, err = repo.ListHistory(ctx, "P001", 0)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.ClearHistory(ctx, "P404")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}
