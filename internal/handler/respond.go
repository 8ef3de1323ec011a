package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yourorg/taskboard/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses. Anything unmapped is
// a 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotOnTeam):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAlreadyAssigned),
		errors.Is(err, domain.ErrHasManager),
		errors.Is(err, domain.ErrInvalidManager):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
	}

	writeJSON(w, status, map[string]string{"error": message})
}
