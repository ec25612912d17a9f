package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

// dashboardCachePattern matches every cached dashboard summary.
const dashboardCachePattern = "dashboard:*"

// BoardLock serialises read-modify-persist transactions over the board collections.
// Every service that writes collections shares one lock and invalidates the
// dashboard cache before releasing it. Readers that cache what they read hold
// the read lock until the cache write is done.
type BoardLock struct {
	sync.RWMutex
}

// NewBoardLock constructs a lock.
func NewBoardLock() *BoardLock {
	return &BoardLock{}
}

// Outcome reports the result of a mutation. A no-op returns Applied=false and no error.
type Outcome[T any] struct {
	Applied bool
	Value   *T
}

func applied[T any](value *T) Outcome[T] {
	return Outcome[T]{Applied: true, Value: value}
}

func noop[T any]() Outcome[T] {
	return Outcome[T]{}
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type mutationRecorder interface {
	RecordBoardMutation(operation string, applied bool)
}

// mutationHooks runs after every mutation: metrics always, cache invalidation when something changed.
type mutationHooks struct {
	cache   cacheInvalidator
	metrics mutationRecorder
	logger  *zap.Logger
}

func (h mutationHooks) done(ctx context.Context, operation string, changed bool) {
	if h.metrics != nil {
		h.metrics.RecordBoardMutation(operation, changed)
	}
	if !changed || h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, dashboardCachePattern); err != nil && h.logger != nil {
		h.logger.Warn("dashboard cache invalidation failed", zap.String("operation", operation), zap.Error(err))
	}
}

func storageError(err error, message string) error {
	return appErrors.Storage(err, message)
}

func defaultClock(clock func() time.Time) func() time.Time {
	if clock == nil {
		return func() time.Time { return time.Now().UTC() }
	}
	return clock
}
