package httpapi

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"disease-detector/internal/models"
)

func TestGenerateHistoryExcel(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	patient := models.Patient{PatientID: "P001", Name: "Ada", CreatedAt: created}
	history := []models.HistoryRecord{
		{PatientID: "P001", Symptoms: "fever, chills", PredictedDisease: "Flu", Confidence: 0.92, CreatedAt: created.Add(time.Hour)},
		{PatientID: "P001", Symptoms: "sneezing", PredictedDisease: "Allergies", Confidence: 1, CreatedAt: created},
	}

	data, err := generateHistoryExcel(patient, history)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{historySheetName, patientSheetName}, f.GetSheetList())

	rows, err := f.GetRows(historySheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, historyHeaders, rows[0])
	assert.Equal(t, "2024-03-01 10:30:00", rows[1][0])
	assert.Equal(t, "Flu", rows[1][2])
	assert.Equal(t, "Allergies", rows[2][2])

	id, err := f.GetCellValue(patientSheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "P001", id)
}

func TestGenerateHistoryExcel_Empty(t *testing.T) {
	data, err := generateHistoryExcel(models.Patient{PatientID: "P002"}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(historySheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "P_01", safeFilename("P/01"))
	assert.Equal(t, "patient", safeFilename(""))
}
