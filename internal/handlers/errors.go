package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crossroads-game/crossroads/pkg/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError encodes a JSON error body with the given status.
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

// writeDomainError maps session errors to status codes. Anything unmapped is
// a generic server failure; generation-side errors never reach this point.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, logger, http.StatusNotFound, "Game session not found")
	case errors.Is(err, session.ErrNotOwner):
		writeError(w, logger, http.StatusForbidden, "Not authorized")
	case errors.Is(err, session.ErrSessionCompleted):
		writeError(w, logger, http.StatusConflict, "Game session is already completed")
	case errors.Is(err, session.ErrStageOrder):
		writeError(w, logger, http.StatusConflict, "Stage out of sequence")
	case errors.Is(err, session.ErrInvalidStage):
		writeError(w, logger, http.StatusBadRequest, "Stage number must be between 1 and 4")
	default:
		logger.Error("Unexpected error", "error", err)
		writeError(w, logger, http.StatusInternalServerError, "Server error")
	}
}
