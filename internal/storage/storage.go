package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/crossroads-game/crossroads/pkg/session"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the storage connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the storage connection
	Close() error
}

// Storage defines the interface for game session persistence
type Storage interface {
	HealthChecker
	Closer

	// SaveSession persists a session, replacing any previous version
	SaveSession(ctx context.Context, s *session.Session) error

	// LoadSession retrieves a session by ID
	// Returns nil if the session doesn't exist
	LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error)

	// ListSessions returns the owner's most recent sessions, newest first,
	// bounded by limit
	ListSessions(ctx context.Context, ownerID string, limit int) ([]*session.Session, error)

	// DeleteSession removes a session by ID
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
