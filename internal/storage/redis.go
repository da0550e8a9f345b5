package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/crossroads-game/crossroads/pkg/session"
)

// ownerIndexMax bounds the per-owner recency index; listings never return
// more than this many sessions.
const ownerIndexMax = 50

// RedisStorage implements the Storage interface using Redis. Sessions are
// stored as JSON under session:<uuid>, with a per-owner recency index list
// for the newest-first listing.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func ownerKey(ownerID string) string {
	return "user_sessions:" + ownerID
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// SaveSession writes the full session as one JSON value, so a stage append
// and its score/completion updates land atomically or not at all. First-time
// saves also push the ID onto the owner's recency index.
func (r *RedisStorage) SaveSession(ctx context.Context, s *session.Session) error {
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal session", "uuid", s.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(s.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}

	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save session", "uuid", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	if exists == 0 {
		idx := ownerKey(s.OwnerID)
		pipe := r.client.Pipeline()
		pipe.LPush(ctx, idx, s.ID.String())
		pipe.LTrim(ctx, idx, 0, ownerIndexMax-1)
		if _, err := pipe.Exec(ctx); err != nil {
			r.logger.Error("Failed to index session for owner", "uuid", s.ID, "owner", s.OwnerID, "error", err)
			return fmt.Errorf("failed to index session: %w", err)
		}
	}

	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	cmd := r.client.Get(ctx, sessionKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Debug("Session not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(cmd.Val()), &s); err != nil {
		r.logger.Error("Failed to unmarshal session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &s, nil
}

// ListSessions walks the owner's recency index. IDs whose session has been
// deleted are skipped.
func (r *RedisStorage) ListSessions(ctx context.Context, ownerID string, limit int) ([]*session.Session, error) {
	if limit <= 0 || limit > ownerIndexMax {
		limit = ownerIndexMax
	}

	ids, err := r.client.LRange(ctx, ownerKey(ownerID), 0, int64(limit)-1).Result()
	if err != nil {
		r.logger.Error("Failed to read owner session index", "owner", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*session.Session, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			r.logger.Warn("Skipping malformed session ID in owner index", "owner", ownerID, "id", idStr)
			continue
		}
		s, err := r.LoadSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if s != nil {
			sessions = append(sessions, s)
		}
	}

	return sessions, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete session", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
