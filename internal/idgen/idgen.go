package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type Generator interface {
	NewID() string
}

// UUID generates random version 4 identifiers.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence produces predictable ids ("prefix-1", "prefix-2", ...).
type Sequence struct {
	mu     sync.Mutex
	prefix string
	nextID int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix, nextID: 1}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("%s-%d", s.prefix, s.nextID)
	s.nextID++
	return id
}
