package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hospital-portal/utils"
)

// ErrNoSession is returned when no flag is stored for a session id.
var ErrNoSession = errors.New("no session")

// Store persists the session flag: the logged-in user's email, keyed by
// session id.
type Store interface {
	Get(ctx context.Context, id string) (string, error)
	Set(ctx context.Context, id, email string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type RedisStore struct {
	cache  utils.RedisClient
	prefix string
}

// NewRedisStore keeps flags under "<prefix>:<session id>".
func NewRedisStore(cache utils.RedisClient, prefix string) *RedisStore {
	return &RedisStore{cache: cache, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (string, error) {
	email, err := s.cache.GetFromCache(ctx, s.key(id))
	if errors.Is(err, utils.ErrCacheMiss) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if email == "" {
		return "", ErrNoSession
	}
	return email, nil
}

func (s *RedisStore) Set(ctx context.Context, id, email string, ttl time.Duration) error {
	if err := s.cache.SetToCache(ctx, s.key(id), email, ttl); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.DeleteFromCache(ctx, s.key(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type entry struct {
	email   string
	expires time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return "", ErrNoSession
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.entries, id)
		return "", ErrNoSession
	}
	return e.email, nil
}

func (s *MemoryStore) Set(ctx context.Context, id, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{email: email}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.entries[id] = e
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
