package reproject

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/observability"
)

// projection is a memoised Project outcome. Failures are cached too: the
// transform is deterministic, so a bad geometry stays bad.
type projection struct {
	point domain.Point
	err   error
}

// CachedProjector wraps a Projector with an LRU keyed by WKT text. Count
// files repeat the same segment geometry for every interval, so most
// lookups hit.
type CachedProjector struct {
	inner   domain.Projector
	cache   *lru.Cache[string, projection]
	metrics *observability.Metrics
}

// NewCachedProjector creates a cache decorator around a projector. metrics may be nil.
func NewCachedProjector(inner domain.Projector, maxEntries int, metrics *observability.Metrics) (*CachedProjector, error) {
	cache, err := lru.New[string, projection](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create projection cache: %w", err)
	}
	return &CachedProjector{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedProjector) Project(text string) (domain.Point, error) {
	if p, ok := c.cache.Get(text); ok {
		c.observe("hit")
		return p.point, p.err
	}
	c.observe("miss")

	point, err := c.inner.Project(text)
	c.cache.Add(text, projection{point: point, err: err})
	return point, err
}

// Len returns the number of cached geometries.
func (c *CachedProjector) Len() int {
	return c.cache.Len()
}

func (c *CachedProjector) observe(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.ProjectionCache.WithLabelValues(result).Inc()
}
