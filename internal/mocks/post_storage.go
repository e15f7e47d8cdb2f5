package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/Luiz-altf4/Rose-Forum/internal/post"
	"github.com/Luiz-altf4/Rose-Forum/models"
)

// MockPostLookup answers post lookups from an in-memory map.
type MockPostLookup struct {
	posts map[string]models.Post
	mu    sync.Mutex
}

func NewMockPostLookup(posts ...models.Post) *MockPostLookup {
	m := &MockPostLookup{
		posts: make(map[string]models.Post),
	}
	for _, p := range posts {
		m.posts[p.ID] = p
	}
	return m
}

func (m *MockPostLookup) Add(p models.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts[p.ID] = p
}

func (m *MockPostLookup) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.posts, id)
}

func (m *MockPostLookup) Get(ctx context.Context, id string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return models.Post{}, fmt.Errorf("%w: %s", post.ErrNotFound, id)
	}
	return p, nil
}
