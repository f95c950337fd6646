package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vbonduro/wastenot/internal/domain"
	"github.com/vbonduro/wastenot/internal/photostore"
	"github.com/vbonduro/wastenot/internal/vision"
)

const maxJSONBody = 1 << 20 // 1 MB

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

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeServiceError maps service errors onto HTTP statuses. Internal details
// are logged rather than returned.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, photostore.ErrPhotoNotFound),
		errors.Is(err, photostore.ErrInvalidKey):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, vision.ErrNoFood):
		writeError(w, http.StatusUnprocessableEntity, "no food detected in image")
	default:
		s.logger.Error(op+" failed", "request_id", RequestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}
