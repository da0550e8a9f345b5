package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/crossroads-game/crossroads/internal/game"
	"github.com/crossroads-game/crossroads/internal/middleware"
	"github.com/crossroads-game/crossroads/pkg/session"
)

// listLimit caps the number of sessions returned per user.
const listLimit = 10

// SessionHandler serves session creation, retrieval and listing.
type SessionHandler struct {
	processor *game.StageProcessor
	logger    *slog.Logger
}

func NewSessionHandler(processor *game.StageProcessor, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		processor: processor,
		logger:    logger,
	}
}

type CreateSessionRequest struct {
	UserName      string `json:"user_name"`
	UserAge       int    `json:"user_age"`
	UserInterests string `json:"user_interests,omitempty"`
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Path after the collection root. Empty means the collection itself.
	path := strings.TrimPrefix(r.URL.Path, "/v1/game/sessions")
	path = strings.Trim(path, "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case path == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case path != "" && r.Method == http.MethodGet:
		h.handleGet(w, r, path)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserID(r.Context())

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" {
		writeError(w, h.logger, http.StatusBadRequest, "user_name is required")
		return
	}
	if req.UserAge < 0 {
		writeError(w, h.logger, http.StatusBadRequest, "user_age must not be negative")
		return
	}

	s, err := h.processor.CreateSession(r.Context(), callerID, req.UserName, req.UserAge, req.UserInterests)
	if err != nil {
		h.logger.Error("Failed to create game session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create game session")
		return
	}

	h.logger.Info("Game session created", "session_id", s.ID, "user_name", s.PlayerName)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(s); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleGet(w http.ResponseWriter, r *http.Request, idStr string) {
	callerID := middleware.UserID(r.Context())

	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID")
		return
	}

	s, err := h.processor.GetSession(r.Context(), id, callerID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := json.NewEncoder(w).Encode(s); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserID(r.Context())

	sessions, err := h.processor.ListSessions(r.Context(), callerID, listLimit)
	if err != nil {
		h.logger.Error("Failed to list game sessions", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list game sessions")
		return
	}

	if sessions == nil {
		sessions = []*session.Session{}
	}
	if err := json.NewEncoder(w).Encode(sessions); err != nil {
		h.logger.Error("Failed to encode session list", "error", err)
	}
}
