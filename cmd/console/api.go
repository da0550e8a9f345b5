package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/crossroads-game/crossroads/internal/game"
	"github.com/crossroads-game/crossroads/internal/handlers"
	"github.com/crossroads-game/crossroads/pkg/session"
)

// apiClient wraps the game API, attaching the caller identity to every
// request.
type apiClient struct {
	baseURL string
	userID  string
	client  *http.Client
}

func (a *apiClient) testConnection() bool {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (a *apiClient) do(method, path string, payload interface{}) ([]byte, int, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequest(method, a.baseURL+path, &buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", a.userID)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func apiError(body []byte, status int) error {
	var errorResp handlers.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}

func (a *apiClient) createSession(name string, age int, interests string) (*session.Session, error) {
	body, status, err := a.do(http.MethodPost, "/v1/game/sessions", handlers.CreateSessionRequest{
		UserName:      name,
		UserAge:       age,
		UserInterests: interests,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, apiError(body, status)
	}

	var s session.Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &s, nil
}

func (a *apiClient) getSession(id uuid.UUID) (*session.Session, error) {
	body, status, err := a.do(http.MethodGet, "/v1/game/sessions/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(body, status)
	}

	var s session.Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &s, nil
}

func (a *apiClient) generateStory(id uuid.UUID, stageNumber, selectedChoice int) (*game.StageResult, error) {
	body, status, err := a.do(http.MethodPost, "/v1/game/generate-story", handlers.GenerateStoryRequest{
		SessionID:      id.String(),
		StageNumber:    stageNumber,
		SelectedChoice: selectedChoice,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(body, status)
	}

	var result game.StageResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse story response: %w", err)
	}
	return &result, nil
}
