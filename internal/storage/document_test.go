package storage_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type item struct {
	Name string `json:"name"`
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestDocument_LoadSave(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	doc := storage.NewDocument[[]item](store, "items", zap.NewNop())

	t.Run("Missing key yields empty collection", func(t *testing.T) {
		items, found, err := doc.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, items)
	})

	t.Run("Save then load", func(t *testing.T) {
		require.NoError(t, doc.Save(ctx, []item{{Name: "a"}, {Name: "b"}}))

		items, found, err := doc.Load(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []item{{Name: "a"}, {Name: "b"}}, items)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, doc.Remove(ctx))
		_, found, err := doc.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestDocument_CorruptDataFailsSoft(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, "items", []byte(`{not json`)))

	core, logs := observer.New(zap.WarnLevel)
	doc := storage.NewDocument[[]item](store, "items", zap.New(core))

	items, found, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, items)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "discarding undecodable document", entry.Message)
	assert.Equal(t, "items", entry.ContextMap()["key"])
}

func TestDocument_WriteFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("Quota exceeded is a storage failure", func(t *testing.T) {
		store := memory.NewStoreWithQuota(16)
		doc := storage.NewDocument[[]item](store, "items", nil)

		err := doc.Save(ctx, []item{{Name: "this will not fit in sixteen bytes"}})
		assert.ErrorIs(t, err, storage.ErrStorageFailure)
		assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

		_, found, err := doc.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Unencodable value is a storage failure", func(t *testing.T) {
		store := new(MockStore)
		doc := storage.NewDocument[float64](store, "n", nil)

		err := doc.Save(ctx, math.Inf(1))
		assert.ErrorIs(t, err, storage.ErrStorageFailure)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Backend write error", func(t *testing.T) {
		store := new(MockStore)
		backendErr := errors.New("disk full")
		store.On("Set", ctx, "items", mock.Anything).Return(backendErr)
		doc := storage.NewDocument[[]item](store, "items", nil)

		err := doc.Save(ctx, []item{{Name: "x"}})
		assert.ErrorIs(t, err, storage.ErrStorageFailure)
		assert.ErrorIs(t, err, backendErr)
		store.AssertExpectations(t)
	})

	t.Run("Backend read error is returned", func(t *testing.T) {
		store := new(MockStore)
		backendErr := errors.New("connection refused")
		store.On("Get", ctx, "items").Return(nil, false, backendErr)
		doc := storage.NewDocument[[]item](store, "items", nil)

		_, _, err := doc.Load(ctx)
		assert.ErrorIs(t, err, backendErr)
	})
}
