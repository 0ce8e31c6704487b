package blocklist

import (
	"context"
	"sync"
)

// Blocklist is the shared set of revoked token identifiers. Revoke is
// idempotent; a jti stays revoked for the lifetime of the backing store.
type Blocklist interface {
	Revoke(ctx context.Context, jti string) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Memory keeps revoked jtis in a mutex-guarded set. Entries are never
// removed, so revocation lasts for the process lifetime.
type Memory struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{revoked: make(map[string]struct{})}
}

func (m *Memory) Revoke(_ context.Context, jti string) error {
	m.mu.Lock()
	m.revoked[jti] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	_, ok := m.revoked[jti]
	m.mu.RUnlock()
	return ok, nil
}
