package editsession

import (
	"context"
	"sync"

	"github.com/alexedwards/scs/v2"
)

// MemoryStorage is an in-process Storage, used by the CLI and tests.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemoryStorage) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// SessionStorage reads and writes the browser session loaded by scs.
// The request context must have passed through SessionManager.LoadAndSave.
type SessionStorage struct {
	sm *scs.SessionManager
}

func NewSessionStorage(sm *scs.SessionManager) SessionStorage {
	return SessionStorage{sm: sm}
}

func (s SessionStorage) Get(ctx context.Context, key string) (string, error) {
	return s.sm.GetString(ctx, key), nil
}

func (s SessionStorage) Put(ctx context.Context, key, value string) error {
	s.sm.Put(ctx, key, value)
	return nil
}
