// Package localstate persists small string values on the client side, most
// importantly the bearer token. Presence of TokenKey is the only persisted
// session indicator.
package localstate

import (
	"context"
	"sync"
)

const TokenKey = "token"

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory keeps values for the lifetime of the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Token returns the persisted token, or "" when none is stored.
func Token(ctx context.Context, s Store) (string, error) {
	v, ok, err := s.Get(ctx, TokenKey)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}
