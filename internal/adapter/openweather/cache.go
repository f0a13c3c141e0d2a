package openweather

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/observability"
)

// CachedProvider wraps a WeatherProvider with an in-memory LRU cache whose
// entries expire after a fixed TTL.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedProvider) CurrentWeather(ctx context.Context, city string) (domain.WeatherReading, error) {
	now := c.clock.Now()
	if reading, ok := c.cache.get(city, now); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return reading, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	reading, err := c.inner.CurrentWeather(ctx, city)
	if err != nil {
		return reading, err
	}
	// Failures are not cached so the next request retries the provider.
	c.cache.put(city, reading, now, now.Add(c.ttl))
	return reading, nil
}

// lruCache holds readings in recency order, front first. Expired readings are
// dropped on lookup and before any live reading is evicted for space.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	byCity   map[string]*list.Element
}

type cached struct {
	city    string
	reading domain.WeatherReading
	expires time.Time
}

func newLRUCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		byCity:   make(map[string]*list.Element, capacity),
	}
}

func (c *lruCache) get(city string, now time.Time) (domain.WeatherReading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byCity[city]
	if !ok {
		return domain.WeatherReading{}, false
	}
	item := el.Value.(*cached)
	if !now.Before(item.expires) {
		c.drop(el)
		return domain.WeatherReading{}, false
	}
	c.order.MoveToFront(el)
	return item.reading, true
}

func (c *lruCache) put(city string, reading domain.WeatherReading, now, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byCity[city]; ok {
		item := el.Value.(*cached)
		item.reading, item.expires = reading, expires
		c.order.MoveToFront(el)
		return
	}

	c.byCity[city] = c.order.PushFront(&cached{city: city, reading: reading, expires: expires})
	if c.order.Len() <= c.capacity {
		return
	}
	c.dropExpired(now)
	for c.order.Len() > c.capacity {
		c.drop(c.order.Back())
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *lruCache) dropExpired(now time.Time) {
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*cached).expires) {
			c.drop(el)
		}
		el = prev
	}
}

func (c *lruCache) drop(el *list.Element) {
	delete(c.byCity, el.Value.(*cached).city)
	c.order.Remove(el)
}
