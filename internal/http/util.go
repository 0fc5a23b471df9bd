package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"disease-detector/internal/ensemble"
	"disease-detector/internal/repository"
	"disease-detector/internal/textproc"
)

// MaxBodyBytes 请求体大小上限
const MaxBodyBytes int64 = 1 << 20

var (
	errBodyTooLarge = errors.New("request body too large")
	errInvalidJSON  = errors.New("invalid JSON body")
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// readBodyJSON decodes at most maxBytes of the body into out. An empty body
// leaves out untouched.
func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return err
	}
	if int64(len(body)) > maxBytes {
		return errBodyTooLarge
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return nil
}

// writeBodyError answers a readBodyJSON failure.
func writeBodyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, errInvalidJSON):
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	var verr *textproc.ValidationError
	var allErr *ensemble.AllModelsUnavailableError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrPatientNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrPatientExists):
		return http.StatusConflict
	case errors.As(err, &allErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing text for err.
func errorMessage(err error) string {
	var verr *textproc.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, repository.ErrPatientNotFound):
		return "Patient not found"
	case errors.Is(err, repository.ErrPatientExists):
		return "Patient ID already exists"
	default:
		return err.Error()
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), errorMessage(err))
}
