package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/crossroads-game/crossroads/pkg/session"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*session.Session
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*session.Session),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on save with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession mocks saving a session
func (m *MockStorage) SaveSession(ctx context.Context, s *session.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	copied := *s
	copied.Stages = append([]session.StageRecord(nil), s.Stages...)
	m.sessions[s.ID] = &copied
	return nil
}

// LoadSession mocks loading a session
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.sessions[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	copied := *s
	copied.Stages = append([]session.StageRecord(nil), s.Stages...)
	return &copied, nil
}

// ListSessions mocks the newest-first owner listing
func (m *MockStorage) ListSessions(ctx context.Context, ownerID string, limit int) ([]*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*session.Session
	for _, s := range m.sessions {
		if s.OwnerID == ownerID {
			copied := *s
			copied.Stages = append([]session.StageRecord(nil), s.Stages...)
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteSession mocks deleting a session
func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
