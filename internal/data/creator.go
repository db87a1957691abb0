package data

import (
	"context"
	"sync"
)

// Creator builds a dataset on demand, typically once per run.
type Creator interface {
	Create(ctx context.Context) (Dataset, error)
}

// CreatorFunc adapts a function to the Creator interface.
type CreatorFunc func(ctx context.Context) (Dataset, error)

// Create implements Creator.
func (f CreatorFunc) Create(ctx context.Context) (Dataset, error) { return f(ctx) }

// CachingCreator builds the wrapped creator's dataset on first use and
// returns the cached dataset afterwards. A failed build is not cached,
// so the next call retries.
type CachingCreator struct {
	creator Creator

	mu     sync.Mutex
	cached Dataset
}

// NewCachingCreator wraps a creator with a one-shot cache.
func NewCachingCreator(creator Creator) *CachingCreator {
	if creator == nil {
		panic("caching creator requires a creator")
	}
	return &CachingCreator{creator: creator}
}

// Create implements Creator.
func (c *CachingCreator) Create(ctx context.Context) (Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil {
		return c.cached, nil
	}
	d, err := c.creator.Create(ctx)
	if err != nil {
		return nil, err
	}
	c.cached = d
	return d, nil
}
