package workbook

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"plandash/internal/infrastructure"
)

var errUnreadable = errors.New("workbook unreadable")

// Source supplies datasets to the rest of the application.
type Source interface {
	Get(ctx context.Context) *Dataset
	Reload(ctx context.Context) *Dataset
}

// Cache holds the dataset of the current workbook version. A new load runs
// when the file identity changes or after Invalidate; concurrent callers
// share one load.
type Cache struct {
	loader  *Loader
	path    string
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger

	mu        sync.RWMutex
	current   *Dataset
	hitCount  int64
	missCount int64
	loads     int64

	group singleflight.Group
}

// NewCache creates a cache for the workbook at path. metrics may be nil.
func NewCache(loader *Loader, path string, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Cache{
		loader:  loader,
		path:    path,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "workbook_cache"),
	}
}

// Path returns the workbook path the cache reads.
func (c *Cache) Path() string {
	return c.path
}

// Get returns the dataset for the current file version, loading it if needed.
func (c *Cache) Get(ctx context.Context) *Dataset {
	identity := IdentityOf(c.path)

	c.mu.Lock()
	if c.current != nil && c.current.Identity.Equal(identity) {
		ds := c.current
		c.hitCount++
		c.mu.Unlock()
		c.metrics.RecordCacheLookup(ctx, true)
		return ds
	}
	c.missCount++
	c.mu.Unlock()
	c.metrics.RecordCacheLookup(ctx, false)

	return c.load(ctx)
}

// Reload drops the cached dataset and loads the workbook again.
func (c *Cache) Reload(ctx context.Context) *Dataset {
	c.Invalidate()
	return c.load(ctx)
}

// Invalidate drops the cached dataset. A load already in flight is
// forgotten so the next caller starts a fresh one.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.group.Forget(c.path)
	c.logger.Info("workbook cache invalidated", slog.String("path", c.path))
}

// Current returns the cached dataset without loading, or nil.
func (c *Cache) Current() *Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Cache) load(ctx context.Context) *Dataset {
	v, _, _ := c.group.Do(c.path, func() (interface{}, error) {
		start := time.Now()
		ds := c.loader.Load(context.WithoutCancel(ctx), c.path)

		var err error
		if !ds.Readable {
			err = errUnreadable
		}
		c.metrics.RecordWorkbookLoad(ctx, time.Since(start), len(ds.Warnings), err)

		c.mu.Lock()
		c.current = ds
		c.loads++
		c.mu.Unlock()
		return ds, nil
	})
	return v.(*Dataset)
}

// GetStats returns cache statistics
func (c *Cache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalRequests := c.hitCount + c.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(c.hitCount) / float64(totalRequests)
	}

	stats := map[string]interface{}{
		"path":       c.path,
		"loaded":     c.current != nil,
		"loads":      c.loads,
		"hit_count":  c.hitCount,
		"miss_count": c.missCount,
		"hit_ratio":  hitRatio,
	}
	if c.current != nil {
		stats["loaded_at"] = c.current.LoadedAt
		stats["warnings"] = len(c.current.Warnings)
	}
	return stats
}
