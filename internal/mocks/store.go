package mocks

import (
	"context"
	"sync"

	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
)

// MockFailingStore wraps a store and fails chosen writes.
type MockFailingStore struct {
	storage.Store

	mu       sync.Mutex
	failures map[string][]error // key -> errors returned by the next Set calls
}

func NewMockFailingStore(next storage.Store) *MockFailingStore {
	return &MockFailingStore{
		Store:    next,
		failures: make(map[string][]error),
	}
}

// FailNextSet makes the next Set on key return err without writing.
func (m *MockFailingStore) FailNextSet(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures[key] = append(m.failures[key], err)
}

func (m *MockFailingStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	if queued := m.failures[key]; len(queued) > 0 {
		err := queued[0]
		m.failures[key] = queued[1:]
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	return m.Store.Set(ctx, key, value)
}
