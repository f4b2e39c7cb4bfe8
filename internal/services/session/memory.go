package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Good enough for a single
// replica and for local development without redis.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(defaultTTL, 10*time.Minute)}
}

func (m *MemoryStore) Save(_ context.Context, sid string, s Session, ttl time.Duration) error {
	m.cache.Set(sessionKey(sid), s, ttl)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sid string) (Session, error) {
	v, ok := m.cache.Get(sessionKey(sid))
	if !ok {
		return Session{}, ErrNotFound
	}
	return v.(Session), nil
}

func (m *MemoryStore) Delete(_ context.Context, sid string) error {
	m.cache.Delete(sessionKey(sid))
	return nil
}
