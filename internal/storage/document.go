package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Document is a typed JSON value kept under a single key.
type Document[T any] struct {
	store Store
	key   string
	log   *zap.Logger
}

func NewDocument[T any](store Store, key string, log *zap.Logger) *Document[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Document[T]{store: store, key: key, log: log}
}

func (d *Document[T]) Key() string {
	return d.key
}

// Load returns the stored value. A missing key or an undecodable value
// yields the zero value with found == false; only backend errors are returned.
func (d *Document[T]) Load(ctx context.Context) (T, bool, error) {
	var value T

	raw, ok, err := d.store.Get(ctx, d.key)
	if err != nil {
		return value, false, fmt.Errorf("could not read %s: %w", d.key, err)
	}
	if !ok {
		return value, false, nil
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		d.log.Warn("discarding undecodable document",
			zap.String("key", d.key),
			zap.Int("bytes", len(raw)),
			zap.Error(err),
		)
		var zero T
		return zero, false, nil
	}

	return value, true, nil
}

// Save encodes and writes the whole value.
func (d *Document[T]) Save(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: could not encode %s: %v", ErrStorageFailure, d.key, err)
	}

	if err := d.store.Set(ctx, d.key, data); err != nil {
		return fmt.Errorf("%w: could not write %s: %w", ErrStorageFailure, d.key, err)
	}
	return nil
}

func (d *Document[T]) Remove(ctx context.Context) error {
	if err := d.store.Remove(ctx, d.key); err != nil {
		return fmt.Errorf("%w: could not remove %s: %w", ErrStorageFailure, d.key, err)
	}
	return nil
}
