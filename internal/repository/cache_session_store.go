package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendWatch/internal/domain/models"
	"TrendWatch/internal/domain/repository"
	pkgcache "TrendWatch/pkg/cache"

	"github.com/google/uuid"
)

const sessionKeyPrefix = "session"

// CacheSessionStore keeps sessions in a cache.Service under random tokens.
// Each successful Get extends the session by ttl.
type CacheSessionStore struct {
	cache pkgcache.Service
	ttl   time.Duration
}

// NewCacheSessionStore creates a session store.
func NewCacheSessionStore(c pkgcache.Service, ttl time.Duration) repository.SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CacheSessionStore{cache: c, ttl: ttl}
}

func (s *CacheSessionStore) Create(ctx context.Context, id models.Identity) (string, error) {
	token := uuid.NewString()
	if err := s.cache.Set(ctx, sessionKey(token), id, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *CacheSessionStore) Get(ctx context.Context, token string) (models.Identity, error) {
	if _, err := uuid.Parse(token); err != nil {
		return models.Identity{}, models.ErrSessionNotFound
	}

	var id models.Identity
	if err := s.cache.Get(ctx, sessionKey(token), &id); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return models.Identity{}, models.ErrSessionNotFound
		}
		return models.Identity{}, fmt.Errorf("load session: %w", err)
	}

	_, _ = s.cache.Expire(ctx, sessionKey(token), s.ttl)
	return id, nil
}

func (s *CacheSessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.cache.Delete(ctx, sessionKey(token))
}

func sessionKey(token string) string {
	return pkgcache.GenerateKey(sessionKeyPrefix, token)
}
