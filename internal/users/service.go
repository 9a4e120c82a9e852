// Package users loads the user listing from the row store.
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/ashureev/taskpilot/internal/store"
)

// CacheKey is the redis key holding the serialized listing.
const CacheKey = "users:all"

// Cache is the subset of the redis wrapper the loader needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service reads the full users table, optionally through a cache.
type Service struct {
	repo  store.Repository
	cache Cache
	ttl   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables read-through caching for ttl. A zero ttl leaves caching off.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil && ttl > 0 {
			s.cache = c
			s.ttl = ttl
		}
	}
}

// NewService creates a users loader.
func NewService(repo store.Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every user record unmodified, including the password hash.
// Redaction is the caller's job (see domain.UserRecord.View).
func (s *Service) List(ctx context.Context) ([]domain.UserRecord, error) {
	if s.cache != nil {
		if data, _ := s.cache.Get(ctx, CacheKey); data != nil {
			var cached []domain.UserRecord
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			slog.Warn("discarding undecodable users cache entry", "key", CacheKey)
		}
	}

	records, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(records); err == nil {
			_ = s.cache.Set(ctx, CacheKey, data, s.ttl)
		}
	}
	return records, nil
}

// Views lists users projected onto their non-sensitive columns.
func (s *Service) Views(ctx context.Context) ([]domain.UserView, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.UserView, len(records))
	for i := range records {
		views[i] = records[i].View()
	}
	return views, nil
}
