package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

const sessionKeyPrefix = "session:"

// SessionCache persists ProcessingContext snapshots in Redis under a
// "session:<id>" key with a TTL, the same key-prefix-plus-expiry shape the
// teacher's BlacklistService uses for its own Redis keys. This lets a long
// batch survive a process restart mid-image without losing in-flight
// phase results; core/context.Manager remains the source of truth while a
// session is live, this is only a recovery path.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache builds a cache against client with the given per-session
// TTL (defaulting to one hour).
func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &SessionCache{client: client, ttl: ttl}
}

// Save snapshots a context's current state.
func (s *SessionCache) Save(ctx context.Context, pctx *models.ProcessingContext) error {
	encoded, err := json.Marshal(pctx)
	if err != nil {
		return fmt.Errorf("sessioncache: encoding context: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+pctx.SessionID, encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("sessioncache: saving context: %w", err)
	}
	return nil
}

// Load recovers a previously saved context, returning ok=false if no
// snapshot exists (expired or never saved).
func (s *SessionCache) Load(ctx context.Context, sessionID string) (*models.ProcessingContext, bool, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sessioncache: loading context: %w", err)
	}

	var pctx models.ProcessingContext
	if err := json.Unmarshal([]byte(raw), &pctx); err != nil {
		return nil, false, fmt.Errorf("sessioncache: decoding context: %w", err)
	}
	return &pctx, true, nil
}

// Remove deletes a session's snapshot, mirroring Manager.Remove's
// every-exit-path cleanup for the recovery copy.
func (s *SessionCache) Remove(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("sessioncache: removing context: %w", err)
	}
	return nil
}
