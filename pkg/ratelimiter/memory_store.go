package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/eshtarek/storefront/pkg/cache"
)

// DefaultMaxKeys bounds the number of buckets a MemoryStore tracks.
const DefaultMaxKeys = 10_000

type tokenState struct {
	tokens     int
	lastRefill time.Time
}

// MemoryStore keeps buckets in process memory. Once MaxKeys clients are
// tracked, the least recently seen one is forgotten and starts over full.
type MemoryStore struct {
	mu      sync.Mutex
	buckets *cache.LRU[string, *tokenState]
	now     func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*memoryOptions)

type memoryOptions struct {
	maxKeys int
	now     func() time.Time
}

// WithMaxKeys bounds the number of tracked buckets. Non-positive values keep
// DefaultMaxKeys.
func WithMaxKeys(n int) MemoryStoreOption {
	return func(o *memoryOptions) {
		if n > 0 {
			o.maxKeys = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(o *memoryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	o := memoryOptions{maxKeys: DefaultMaxKeys, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		buckets: cache.New[string, *tokenState](o.maxKeys),
		now:     o.now,
	}
}

func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	st, ok := ms.buckets.Get(key)
	if !ok {
		st = &tokenState{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets.Put(key, st)
	}

	if n := min(int64(now.Sub(st.lastRefill)/cfg.RefillInterval), cfg.maxIntervals()); n > 0 {
		st.tokens = min(st.tokens+int(n)*cfg.RefillRate, cfg.Capacity)
		st.lastRefill = now
	}
	st.tokens -= tokens
	return st.tokens, st.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.buckets.Remove(key)
	return nil
}

// Len returns the number of tracked buckets.
func (ms *MemoryStore) Len() int {
	return ms.buckets.Len()
}
