package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/mocks"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage/memory"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := NewRepository(store, zap.NewNop())
	savedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return savedAt }

	t.Run("Nothing stored", func(t *testing.T) {
		_, ok, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Empty draft is refused", func(t *testing.T) {
		_, err := repo.Save(ctx, models.Draft{Title: " ", Content: "", Category: "arte"})
		assert.ErrorIs(t, err, ErrEmptyDraft)

		_, found, err := store.Get(ctx, storage.DraftKey)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Save and load", func(t *testing.T) {
		saved, err := repo.Save(ctx, models.Draft{Title: "Rascunho", Tags: "go, rust"})
		require.NoError(t, err)
		assert.Equal(t, savedAt, saved.SavedAt)

		loaded, ok, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, saved, loaded)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		_, err := repo.Save(ctx, models.Draft{Content: "Só conteúdo"})
		require.NoError(t, err)

		loaded, _, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded.Title)
		assert.Equal(t, "Só conteúdo", loaded.Content)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, repo.Clear(ctx))
		_, ok, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAutoSaver(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves only the latest state after a burst", func(t *testing.T) {
		repo := NewRepository(memory.NewStore(), nil)
		saver := NewAutoSaver(repo, 20*time.Millisecond, nil)
		defer saver.Stop()

		saver.Touch(models.Draft{Title: "R"})
		saver.Touch(models.Draft{Title: "Ro"})
		saver.Touch(models.Draft{Title: "Ros"})

		assert.Eventually(t, func() bool {
			d, ok, err := repo.Load(ctx)
			return err == nil && ok && d.Title == "Ros"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("Flush saves immediately", func(t *testing.T) {
		repo := NewRepository(memory.NewStore(), nil)
		saver := NewAutoSaver(repo, time.Hour, nil)

		assert.False(t, saver.Flush())
		saver.Touch(models.Draft{Title: "Agora"})
		assert.True(t, saver.Flush())

		d, ok, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Agora", d.Title)
	})

	t.Run("Stop drops the pending save", func(t *testing.T) {
		repo := NewRepository(memory.NewStore(), nil)
		saver := NewAutoSaver(repo, 10*time.Millisecond, nil)

		saver.Touch(models.Draft{Title: "Nunca"})
		saver.Stop()
		time.Sleep(40 * time.Millisecond)

		_, ok, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Empty draft is skipped quietly", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		repo := NewRepository(memory.NewStore(), nil)
		saver := NewAutoSaver(repo, time.Hour, zap.New(core))

		saver.Touch(models.Draft{})
		assert.True(t, saver.Flush())

		_, ok, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, logs.FilterMessage("skipping autosave of empty draft").Len())
	})

	t.Run("Failed save is reported", func(t *testing.T) {
		store := mocks.NewMockFailingStore(memory.NewStore())
		repo := NewRepository(store, nil)
		saver := NewAutoSaver(repo, time.Hour, nil)

		store.FailNextSet(storage.DraftKey, errors.New("backend down"))
		saver.Touch(models.Draft{Title: "Perdido"})
		assert.True(t, saver.Flush())
		assert.ErrorIs(t, saver.Err(), storage.ErrStorageFailure)

		saver.Touch(models.Draft{Title: "Salvo"})
		assert.True(t, saver.Flush())
		assert.NoError(t, saver.Err())
	})

	t.Run("Default delay", func(t *testing.T) {
		saver := NewAutoSaver(NewRepository(memory.NewStore(), nil), 0, nil)
		assert.NotNil(t, saver.debounce)
		assert.Equal(t, 5*time.Second, DefaultAutosaveDelay)
	})
}
