package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
)

// DefaultQuota matches the usual per-origin localStorage budget.
const DefaultQuota = 5 << 20

// Store keeps documents in a map. Sizes are counted as len(key)+len(value).
type Store struct {
	mu     sync.Mutex
	values map[string][]byte
	quota  int // 0 = unlimited
	used   int
}

func NewStore() *Store {
	return NewStoreWithQuota(DefaultQuota)
}

func NewStoreWithQuota(quota int) *Store {
	return &Store{
		values: make(map[string][]byte),
		quota:  quota,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used
	if old, ok := s.values[key]; ok {
		used -= len(key) + len(old)
	}
	used += len(key) + len(value)

	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("%w: %d of %d bytes", storage.ErrQuotaExceeded, used, s.quota)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	s.used = used
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.values[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.values, key)
	}
	return nil
}

// Used reports how many bytes are currently stored.
func (s *Store) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}
