package repository

import (
	"context"
	"errors"
)

// ErrCollectionMissing is returned by a CollectionStore when nothing is stored under a key.
var ErrCollectionMissing = errors.New("collection not found")

// CollectionStore reads and replaces whole collections by key. Values are JSON encoded,
// so every backend hands callers a private copy.
type CollectionStore interface {
	Load(ctx context.Context, key string, dest interface{}) error
	Save(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}
