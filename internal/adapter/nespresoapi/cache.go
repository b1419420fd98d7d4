package nespresoapi

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/nespreso-client/internal/domain"
)

// GridFetcher requests a gridded field.
type GridFetcher interface {
	FetchGrid(ctx context.Context, url string, req domain.GridRequest) ([]byte, error)
}

// CachedGridFetcher wraps a GridFetcher with an in-memory LRU cache of grid
// payloads. Failed requests are never cached.
type CachedGridFetcher struct {
	inner GridFetcher
	cache *lru.Cache[string, []byte]
	hits  prometheus.Counter
}

// NewCachedGridFetcher creates a cache decorator holding at most maxEntries
// payloads. hits may be nil.
func NewCachedGridFetcher(inner GridFetcher, maxEntries int, hits prometheus.Counter) (*CachedGridFetcher, error) {
	cache, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("grid cache: %w", err)
	}
	return &CachedGridFetcher{
		inner: inner,
		cache: cache,
		hits:  hits,
	}, nil
}

func (c *CachedGridFetcher) FetchGrid(ctx context.Context, url string, req domain.GridRequest) ([]byte, error) {
	key := gridKey(url, req)
	if body, ok := c.cache.Get(key); ok {
		if c.hits != nil {
			c.hits.Inc()
		}
		return body, nil
	}
	body, err := c.inner.FetchGrid(ctx, url, req)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, body)
	return body, nil
}

// gridKey identifies a query at full precision, unlike the rounded file name.
func gridKey(url string, req domain.GridRequest) string {
	key := fmt.Sprintf("%s|%s", url, req.Date)
	if req.BBox != nil {
		key += fmt.Sprintf("|bbox=%v", req.BBox.Values())
	}
	if req.Resolution != nil {
		key += fmt.Sprintf("|res=%v", *req.Resolution)
	}
	return key
}
