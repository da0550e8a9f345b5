package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/crossroads-game/crossroads/internal/services"
	"github.com/crossroads-game/crossroads/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := testLogger()

	tests := []struct {
		name               string
		setupStorage       func() storage.Storage
		setupLLM           func() services.LLMService
		expectedStatus     int
		expectedHealth     string
		expectedStorage    string
		expectedGeneration string
	}{
		{
			name: "all healthy",
			setupStorage: func() storage.Storage {
				return storage.NewMockStorage()
			},
			setupLLM: func() services.LLMService {
				return services.NewMockLLMAPI()
			},
			expectedStatus:     http.StatusOK,
			expectedHealth:     "healthy",
			expectedStorage:    "healthy",
			expectedGeneration: "healthy",
		},
		{
			name: "unhealthy storage",
			setupStorage: func() storage.Storage {
				mockStorage := storage.NewMockStorage()
				mockStorage.SetPingError(errors.New("connection failed"))
				return mockStorage
			},
			setupLLM: func() services.LLMService {
				return services.NewMockLLMAPI()
			},
			expectedStatus:     http.StatusServiceUnavailable,
			expectedHealth:     "degraded",
			expectedStorage:    "unhealthy",
			expectedGeneration: "healthy",
		},
		{
			name: "unhealthy generation keeps service up",
			setupStorage: func() storage.Storage {
				return storage.NewMockStorage()
			},
			setupLLM: func() services.LLMService {
				mockLLM := services.NewMockLLMAPI()
				mockLLM.PingFunc = func(ctx context.Context) error {
					return errors.New("provider unreachable")
				}
				return mockLLM
			},
			expectedStatus:     http.StatusOK,
			expectedHealth:     "healthy",
			expectedStorage:    "healthy",
			expectedGeneration: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStorage(), tt.setupLLM(), logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedHealth, response.Status)
			}
			if response.Service != "crossroads" {
				t.Errorf("Expected service 'crossroads', got '%s'", response.Service)
			}
			if got := response.Components["storage"]; got != tt.expectedStorage {
				t.Errorf("Expected storage component '%s', got '%v'", tt.expectedStorage, got)
			}
			if got := response.Components["generation"]; got != tt.expectedGeneration {
				t.Errorf("Expected generation component '%s', got '%v'", tt.expectedGeneration, got)
			}
		})
	}
}

func TestHealthHandler_NilLLM(t *testing.T) {
	handler := NewHealthHandler(storage.NewMockStorage(), nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got := response.Components["generation"]; got != "disabled" {
		t.Errorf("Expected generation component 'disabled', got '%v'", got)
	}
}
