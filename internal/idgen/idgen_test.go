package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUID_NewID(t *testing.T) {
	gen := UUID{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.NewID()
		assert.Len(t, id, 36)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSequence_NewID(t *testing.T) {
	t.Run("Ids are sequential", func(t *testing.T) {
		seq := NewSequence("post")
		assert.Equal(t, "post-1", seq.NewID())
		assert.Equal(t, "post-2", seq.NewID())
	})

	t.Run("Concurrent callers never share an id", func(t *testing.T) {
		seq := NewSequence("c")
		var mu sync.Mutex
		seen := make(map[string]bool)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := seq.NewID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Len(t, seen, 50)
	})
}
