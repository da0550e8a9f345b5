package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossroads-game/crossroads/internal/game"
	"github.com/crossroads-game/crossroads/internal/middleware"
	"github.com/crossroads-game/crossroads/internal/storage"
	"github.com/crossroads-game/crossroads/pkg/images"
	"github.com/crossroads-game/crossroads/pkg/session"
)

func newTestProcessor() (*game.StageProcessor, *storage.MockStorage) {
	logger := testLogger()
	st := storage.NewMockStorage()
	planner := images.NewPlanner(nil, logger)
	return game.NewStageProcessor(st, nil, planner, logger), st
}

func doRequest(handler http.Handler, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rr := httptest.NewRecorder()
	middleware.RequireUser(handler).ServeHTTP(rr, req)
	return rr
}

func TestSessionHandler_Create(t *testing.T) {
	processor, _ := newTestProcessor()
	handler := NewSessionHandler(processor, testLogger())

	tests := []struct {
		name           string
		userID         string
		body           interface{}
		expectedStatus int
	}{
		{
			name:   "valid request",
			userID: "user-1",
			body: CreateSessionRequest{
				UserName:      "Riley",
				UserAge:       14,
				UserInterests: "skateboarding",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing user identity",
			userID:         "",
			body:           CreateSessionRequest{UserName: "Riley", UserAge: 14},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty name",
			userID:         "user-1",
			body:           CreateSessionRequest{UserName: "   ", UserAge: 14},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative age",
			userID:         "user-1",
			body:           CreateSessionRequest{UserName: "Riley", UserAge: -1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "age zero is allowed",
			userID:         "user-1",
			body:           CreateSessionRequest{UserName: "Newborn", UserAge: 0},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed body",
			userID:         "user-1",
			body:           "not json at all",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(handler, http.MethodPost, "/v1/game/sessions", tt.userID, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			if tt.expectedStatus == http.StatusCreated {
				reqBody := tt.body.(CreateSessionRequest)
				var s session.Session
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&s))
				assert.Equal(t, reqBody.UserName, s.PlayerName)
				assert.Equal(t, reqBody.UserAge, s.PlayerAge)
				assert.Equal(t, "user-1", s.OwnerID)
				assert.Zero(t, s.Score)
				assert.False(t, s.Completed)
				assert.Empty(t, s.Stages)
			}
		})
	}
}

func TestSessionHandler_Get(t *testing.T) {
	processor, _ := newTestProcessor()
	handler := NewSessionHandler(processor, testLogger())

	created, err := processor.CreateSession(t.Context(), "user-1", "Riley", 14, "")
	require.NoError(t, err)

	t.Run("owner can fetch", func(t *testing.T) {
		rr := doRequest(handler, http.MethodGet, "/v1/game/sessions/"+created.ID.String(), "user-1", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var s session.Session
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&s))
		assert.Equal(t, created.ID, s.ID)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		rr := doRequest(handler, http.MethodGet, "/v1/game/sessions/"+created.ID.String(), "user-2", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		rr := doRequest(handler, http.MethodGet, "/v1/game/sessions/0f0e7b66-1111-2222-3333-444455556666", "user-1", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed session id", func(t *testing.T) {
		rr := doRequest(handler, http.MethodGet, "/v1/game/sessions/not-a-uuid", "user-1", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSessionHandler_List(t *testing.T) {
	processor, _ := newTestProcessor()
	handler := NewSessionHandler(processor, testLogger())

	// More sessions than the listing cap, plus one for another user.
	for i := 0; i < listLimit+3; i++ {
		_, err := processor.CreateSession(t.Context(), "user-1", "Riley", 14, "")
		require.NoError(t, err)
	}
	_, err := processor.CreateSession(t.Context(), "user-2", "Sam", 20, "")
	require.NoError(t, err)

	rr := doRequest(handler, http.MethodGet, "/v1/game/sessions", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var sessions []*session.Session
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sessions))
	assert.Len(t, sessions, listLimit)
	for _, s := range sessions {
		assert.Equal(t, "user-1", s.OwnerID)
	}
}

func TestSessionHandler_ListEmpty(t *testing.T) {
	processor, _ := newTestProcessor()
	handler := NewSessionHandler(processor, testLogger())

	rr := doRequest(handler, http.MethodGet, "/v1/game/sessions", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	processor, _ := newTestProcessor()
	handler := NewSessionHandler(processor, testLogger())

	rr := doRequest(handler, http.MethodDelete, "/v1/game/sessions", "user-1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
