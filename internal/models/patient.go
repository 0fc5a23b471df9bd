package models

import (
	"time"
)

// Patient 患者（对应 patients 表）
type Patient struct {
	ID        int64     `json:"-" db:"id"`
	PatientID string    `json:"patient_id" db:"patient_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HistoryRecord 诊断历史（对应 medical_history 表）
type HistoryRecord struct {
	ID               int64     `json:"-" db:"id"`
	PatientID        string    `json:"patient_id" db:"patient_id"`
	Symptoms         string    `json:"symptoms" db:"symptoms"`
	PredictedDisease string    `json:"predicted_disease" db:"predicted_disease"`
	Confidence       float64   `json:"confidence" db:"confidence"` // fraction 0-1
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
