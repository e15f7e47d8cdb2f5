package metrics

import (
	"context"
	"testing"

	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedStore(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	store := NewInstrumentedStore(memory.NewStoreWithQuota(32), reg)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("value")))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	err = store.Set(ctx, "k", make([]byte, 64))
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	require.NoError(t, store.Remove(ctx, "k"))

	assert.Equal(t, 1.0, testutil.ToFloat64(store.operations.WithLabelValues("get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(store.operations.WithLabelValues("get", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(store.operations.WithLabelValues("set", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(store.operations.WithLabelValues("set", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(store.operations.WithLabelValues("remove", "ok")))

	count, err := testutil.GatherAndCount(reg, "roseforum_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestInstrumentedStore_NilRegistry(t *testing.T) {
	store := NewInstrumentedStore(memory.NewStore(), nil)
	assert.NoError(t, store.Set(context.Background(), "k", []byte("v")))
}
