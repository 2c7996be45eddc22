package session

import (
	"context"
	"sync"
	"time"

	"arenabook/internal/models"
)

// MemoryStore is the in-process fallback used when Redis is unavailable.
// Sessions held here die with the process, which is acceptable for the
// failover window.
type MemoryStore struct {
	sessions   sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

type sessionEntry struct {
	session   *models.Session
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl}
}

func (m *MemoryStore) Get(ctx context.Context, token string) (*models.Session, error) {
	val, ok := m.sessions.Load(token)
	if !ok {
		return nil, nil
	}
	entry := val.(*sessionEntry)
	if time.Now().After(entry.expiresAt) {
		m.sessions.Delete(token)
		return nil, nil
	}
	return entry.session, nil
}

func (m *MemoryStore) Set(ctx context.Context, session *models.Session) error {
	m.sessions.Store(session.Token, &sessionEntry{
		session:   session,
		expiresAt: time.Now().Add(m.ttl),
	})
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.sessions.Delete(token)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (m *MemoryStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := m.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	m.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
