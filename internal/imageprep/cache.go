package imageprep

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"

	"github.com/vbonduro/closet/internal/domain"
)

// CachedPreparer memoizes prepared images by a caller-chosen key. Outfit
// illustration attaches the same garments over and over, so re-encoding them
// on every request is wasted work.
type CachedPreparer struct {
	*Preparer
	cache *cache.Cache[domain.Image]
}

// NewCachedPreparer builds a cache bounded to maxBytes of prepared image data.
func NewCachedPreparer(p *Preparer, maxBytes int64) (*CachedPreparer, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &CachedPreparer{
		Preparer: p,
		cache:    cache.New[domain.Image](ristretto_store.NewRistretto(client)),
	}, nil
}

// PrepareKeyed returns the cached result for key, preparing and caching img on
// a miss. Failures are not cached.
func (c *CachedPreparer) PrepareKeyed(ctx context.Context, key string, img domain.Image) (domain.Image, error) {
	if cached, err := c.cache.Get(ctx, key); err == nil {
		return cached, nil
	}
	out, err := c.Prepare(img)
	if err != nil {
		return domain.Image{}, err
	}
	// ristretto may drop sets under contention; a dropped entry is just a miss later.
	_ = c.cache.Set(ctx, key, out, store.WithCost(int64(len(out.Data))))
	return out, nil
}
