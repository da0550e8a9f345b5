package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	DefaultGeminiModel       = "gemini-2.0-flash-exp"
	DefaultGeminiTemperature = 0.7
	DefaultGeminiMaxTokens   = 1024

	geminiRequestTimeout = 30 * time.Second
)

// GeminiService implements LLMService for the Google Gemini API.
type GeminiService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Ensure GeminiService implements LLMService
var _ LLMService = (*GeminiService)(nil)

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiService creates a new Gemini API service.
func NewGeminiService(apiKey string, modelName string, logger *slog.Logger) *GeminiService {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   geminiBaseURL,
		httpClient: &http.Client{
			Timeout: geminiRequestTimeout,
		},
		logger: logger,
	}
}

// Ping verifies the API key by fetching the configured model's metadata.
func (g *GeminiService) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/models/%s", g.baseURL, g.modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini ping returned status %d", resp.StatusCode)
	}
	return nil
}

// GenerateText sends a single-turn generateContent request and returns the
// model's text. Transport errors, non-200 responses, and API errors all map
// to ErrGenerationUnavailable; context deadlines map to ErrGenerationTimeout.
func (g *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	geminiReq := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: &geminiGenConfig{
			Temperature:     DefaultGeminiTemperature,
			MaxOutputTokens: DefaultGeminiMaxTokens,
		},
	}

	reqBody, err := json.Marshal(geminiReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", ErrGenerationUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("Gemini request failed", "status", resp.StatusCode, "body_length", len(body))
		return "", fmt.Errorf("%w: status %d", ErrGenerationUnavailable, resp.StatusCode)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrGenerationUnavailable, err)
	}

	if geminiResp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", ErrGenerationUnavailable, geminiResp.Error.Message)
	}

	if len(geminiResp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrGenerationUnavailable)
	}

	var responseText string
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		responseText += part.Text
	}

	return responseText, nil
}
