package configstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/cache"
)

// Backend is the persistence used by Cache. *Store satisfies it.
type Backend interface {
	Get(ctx context.Context, name string) (models.ConfigRecord, error)
	Save(ctx context.Context, rec models.ConfigRecord) error
}

// Cache is a read-through cache in front of a Backend. Saves made through the
// cache invalidate the entry immediately; saves made elsewhere (another
// process, the CLI) become visible once the TTL elapses.
type Cache struct {
	backend Backend
	ttl     time.Duration
	mem     *cache.Memory

	// gen counts invalidations. A fill that started before one is dropped,
	// so a read racing a save cannot cache the old record.
	mu  sync.Mutex
	gen uint64
}

// NewCache wraps backend. A ttl of zero disables caching.
func NewCache(backend Backend, ttl time.Duration) *Cache {
	c := &Cache{backend: backend, ttl: ttl}
	if ttl > 0 {
		sweep := time.Minute
		if ttl > sweep {
			sweep = ttl
		}
		c.mem = cache.NewMemoryWithConfig(cache.MemoryConfig{
			CleanupInterval: sweep,
			InitialCapacity: 4,
		})
	}
	return c
}

func cacheKey(name string) string { return "config:" + name }

// Get returns the named record, loading it from the backend when missing or stale.
func (c *Cache) Get(ctx context.Context, name string) (models.ConfigRecord, error) {
	if c.mem == nil {
		return c.backend.Get(ctx, name)
	}

	rec, err := cache.GetJSON[models.ConfigRecord](ctx, c.mem, cacheKey(name))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		// A corrupt or closed entry is not fatal; read through.
		return c.backend.Get(ctx, name)
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	rec, err = c.backend.Get(ctx, name)
	if err != nil {
		return models.ConfigRecord{}, err
	}

	c.mu.Lock()
	if c.gen == gen {
		_ = cache.SetJSON(ctx, c.mem, cacheKey(name), rec, c.ttl)
	}
	c.mu.Unlock()
	return rec, nil
}

// Save writes through to the backend and drops the cached entry.
func (c *Cache) Save(ctx context.Context, rec models.ConfigRecord) error {
	if err := c.backend.Save(ctx, rec); err != nil {
		return err
	}
	c.Invalidate(rec.Name)
	return nil
}

// Invalidate drops the cached entry for name.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.mem != nil {
		_ = c.mem.Delete(context.Background(), cacheKey(name))
	}
}

// Close stops the cache's cleanup goroutine.
func (c *Cache) Close() error {
	if c.mem == nil {
		return nil
	}
	return c.mem.Close()
}

// ExceptionSettings reads the exception.settings record.
func (c *Cache) ExceptionSettings(ctx context.Context) (models.ExceptionSettings, error) {
	rec, err := c.Get(ctx, models.ExceptionConfigName)
	if err != nil {
		return models.ExceptionSettings{}, err
	}
	return models.ExceptionSettingsFromRecord(rec), nil
}

// SaveExceptionSettings overwrites all three keys of the exception.settings record.
func (c *Cache) SaveExceptionSettings(ctx context.Context, s models.ExceptionSettings) error {
	return c.Save(ctx, models.ConfigRecord{
		Name:          models.ExceptionConfigName,
		Data:          s.Values(),
		UpdatedByID:   s.UpdatedByID,
		UpdatedByName: s.UpdatedByName,
	})
}
