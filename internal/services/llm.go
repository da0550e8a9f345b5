package services

import (
	"context"
	"errors"
)

var (
	// ErrGenerationUnavailable indicates the text backend could not be
	// reached or refused the request (network, auth, quota). Callers
	// recover via the fallback story bank; players never see this.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")

	// ErrGenerationTimeout indicates the backend did not answer within the
	// request deadline. Treated identically to ErrGenerationUnavailable.
	ErrGenerationTimeout = errors.New("generation backend timed out")
)

// LLMService defines the interface for the generative text backend.
type LLMService interface {
	// GenerateText sends one prompt and returns the raw model output.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Ping verifies the backend credential and connectivity.
	Ping(ctx context.Context) error
}
