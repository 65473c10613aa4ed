package redis

// Package redis provides a Redis-backed verification session store for
// multi-process deployments (pair it with a passphrase-derived token key so
// every process can validate every token).

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guildgate/guildgate/internal/domain/verify"
	"github.com/guildgate/guildgate/internal/ports"
)

// SessionStore is a Redis-based verification session store. TTL semantics
// follow the session's ExpiresAt.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "verify:session:",
	}
}

// Save stores a session with a TTL derived from its expiry.
func (s *SessionStore) Save(ctx context.Context, sess verify.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

// Get returns the session for id, or ports.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (verify.Session, error) {
	if id == "" {
		return verify.Session{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return verify.Session{}, ports.ErrSessionNotFound
		}
		return verify.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess verify.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return verify.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Redis TTL should have evicted expired records already; re-check so a
	// lagging eviction never revives a stale binding.
	if time.Now().After(sess.ExpiresAt) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return verify.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return verify.Session{}, ports.ErrSessionNotFound
	}

	return sess, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}
