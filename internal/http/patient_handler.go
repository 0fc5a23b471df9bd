package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"disease-detector/internal/service"
)

// PatientHandler 患者管理 Handler
type PatientHandler struct {
	patients *service.PatientService
	logger   *zap.Logger
}

// NewPatientHandler 创建患者管理 Handler
func NewPatientHandler(patients *service.PatientService, logger *zap.Logger) *PatientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientHandler{patients: patients, logger: logger}
}

type registerRequest struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
}

// Register POST /patient/register
func (h *PatientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readBodyJSON(r, MaxBodyBytes, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	p, err := h.patients.Register(r.Context(), req.PatientID, req.Name)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			h.logger.Error("Register patient failed", zap.Error(err))
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Patient registered successfully",
		"patient_id": p.PatientID,
	})
}

// Get GET /patient/{id}
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request, patientID string) {
	detail, err := h.patients.Get(r.Context(), patientID)
	if err != nil {
		h.logFailure("Get patient failed", patientID, err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// History GET /patient/{id}/history
func (h *PatientHandler) History(w http.ResponseWriter, r *http.Request, patientID string) {
	history, err := h.patients.History(r.Context(), patientID)
	if err != nil {
		h.logFailure("Get patient history failed", patientID, err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"patient_id": patientID,
		"history":    history,
	})
}

// ClearHistory DELETE /patient/{id}/history
func (h *PatientHandler) ClearHistory(w http.ResponseWriter, r *http.Request, patientID string) {
	n, err := h.patients.ClearHistory(r.Context(), patientID)
	if err != nil {
		h.logFailure("Clear patient history failed", patientID, err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("Successfully cleared %d history record(s)", n),
		"patient_id":    patientID,
		"deleted_count": n,
	})
}

// ExportHistory GET /patient/{id}/history/export
func (h *PatientHandler) ExportHistory(w http.ResponseWriter, r *http.Request, patientID string) {
	detail, err := h.patients.ExportHistory(r.Context(), patientID)
	if err != nil {
		h.logFailure("Export patient history failed", patientID, err)
		writeDomainError(w, err)
		return
	}

	data, err := generateHistoryExcel(detail.Patient, detail.History)
	if err != nil {
		h.logger.Error("Failed to generate history workbook", zap.String("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("patient_%s_history_%s.xlsx", safeFilename(patientID), time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *PatientHandler) logFailure(msg, patientID string, err error) {
	if statusForError(err) != http.StatusInternalServerError {
		return
	}
	h.logger.Error(msg, zap.String("patient_id", patientID), zap.Error(err))
}

// safeFilename keeps letters, digits, '-' and '_'.
func safeFilename(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	if out == "" {
		return "patient"
	}
	return out
}

