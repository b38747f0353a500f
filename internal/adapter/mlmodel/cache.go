package mlmodel

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
	"github.com/couchcryptid/crime-hotspot-service/internal/observability"
)

// CachedPredictor wraps a Predictor with a TTL cache keyed by the feature vector.
type CachedPredictor struct {
	inner   domain.Predictor
	cache   *gocache.Cache
	metrics *observability.Metrics
}

// NewCachedPredictor creates a cache decorator around a predictor. Entries
// expire after ttl.
func NewCachedPredictor(inner domain.Predictor, ttl time.Duration, metrics *observability.Metrics) *CachedPredictor {
	return &CachedPredictor{
		inner:   inner,
		cache:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedPredictor) Predict(ctx context.Context, f domain.PredictionFeatures) (float64, error) {
	key := cacheKey(f)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.PredictionCache.WithLabelValues("hit").Inc()
		return v.(float64), nil
	}
	c.metrics.PredictionCache.WithLabelValues("miss").Inc()

	rate, err := c.inner.Predict(ctx, f)
	if err != nil {
		return rate, err
	}
	c.cache.SetDefault(key, rate)
	return rate, nil
}

func cacheKey(f domain.PredictionFeatures) string {
	return fmt.Sprintf("%d|%d|%.4f|%d", f.Year, f.CityCode, f.Population, f.CrimeTypeCode)
}
