package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crossroads-game/crossroads/internal/game"
	"github.com/crossroads-game/crossroads/internal/middleware"
	"github.com/crossroads-game/crossroads/pkg/session"
)

// advanceTimeout bounds a full stage advance, including generation and
// illustration planning. Detached from the request context so a dropped
// client connection cannot abort a half-finished stage write.
const advanceTimeout = 90 * time.Second

// StoryHandler serves stage advancement for game sessions.
type StoryHandler struct {
	processor *game.StageProcessor
	logger    *slog.Logger
}

func NewStoryHandler(processor *game.StageProcessor, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		processor: processor,
		logger:    logger,
	}
}

type GenerateStoryRequest struct {
	SessionID      string `json:"session_id"`
	StageNumber    int    `json:"stage_number"`
	SelectedChoice int    `json:"selected_choice"`
}

func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	callerID := middleware.UserID(r.Context())

	var req GenerateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID")
		return
	}
	if req.SelectedChoice < session.ChoiceNone || req.SelectedChoice > session.ChoiceSafe {
		writeError(w, h.logger, http.StatusBadRequest, "selected_choice must be 0, 1, or 2")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), advanceTimeout)
	defer cancel()

	result, err := h.processor.Advance(ctx, game.AdvanceRequest{
		SessionID:      sessionID,
		CallerID:       callerID,
		StageNumber:    req.StageNumber,
		SelectedChoice: req.SelectedChoice,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Stage advanced",
		"session_id", sessionID,
		"stage", result.StageNumber,
		"score", result.Score,
		"completed", result.Completed)

	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode story response", "error", err)
	}
}
