package workbook

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plandash/internal/shared/testutil"
)

func newTestCache(t *testing.T, path string) *Cache {
	loader, _ := newTestLoader(t)
	logger, _ := testutil.NewTestLogger(t)
	return NewCache(loader, path, nil, logger)
}

func TestCache_HitsUntilFileChanges(t *testing.T) {
	path := testutil.NewWorkbook().Write(t)
	cache := newTestCache(t, path)
	ctx := context.Background()

	first := cache.Get(ctx)
	second := cache.Get(ctx)
	assert.Same(t, first, second)

	stats := cache.GetStats()
	assert.Equal(t, int64(1), stats["loads"])
	assert.Equal(t, int64(1), stats["hit_count"])
	assert.Equal(t, int64(1), stats["miss_count"])

	require.NoError(t, testutil.NewWorkbook().Products(4).WriteTo(path))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	third := cache.Get(ctx)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Products, 4)
	assert.Equal(t, int64(2), cache.GetStats()["loads"])
}

func TestCache_InvalidateAndReload(t *testing.T) {
	path := testutil.NewWorkbook().Write(t)
	cache := newTestCache(t, path)
	ctx := context.Background()

	first := cache.Get(ctx)
	cache.Invalidate()
	assert.Nil(t, cache.Current())

	second := cache.Get(ctx)
	assert.NotSame(t, first, second)

	third := cache.Reload(ctx)
	assert.NotSame(t, second, third)
	assert.Same(t, third, cache.Current())
	assert.Equal(t, int64(3), cache.GetStats()["loads"])
}

func TestCache_ReloadStartsFreshLoad(t *testing.T) {
	path := testutil.NewWorkbook().Write(t)
	cache := newTestCache(t, path)
	ctx := context.Background()

	stale := &Dataset{}
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		cache.group.Do(path, func() (interface{}, error) {
			close(started)
			<-release
			return stale, nil
		})
	}()
	<-started

	fresh := cache.Reload(ctx)
	close(release)
	<-done

	assert.NotSame(t, stale, fresh)
	assert.True(t, fresh.Readable)
	assert.Same(t, fresh, cache.Current())
}

func TestCache_MissingFileStaysCached(t *testing.T) {
	cache := newTestCache(t, t.TempDir()+"/absent.xlsx")
	ctx := context.Background()

	first := cache.Get(ctx)
	assert.False(t, first.Readable)
	assert.Same(t, first, cache.Get(ctx))
}

func TestCache_ConcurrentGet(t *testing.T) {
	path := testutil.NewWorkbook().Write(t)
	cache := newTestCache(t, path)

	var wg sync.WaitGroup
	results := make([]*Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Get(context.Background())
		}(i)
	}
	wg.Wait()

	for _, ds := range results {
		require.NotNil(t, ds)
		assert.True(t, ds.Readable)
	}
	assert.LessOrEqual(t, cache.GetStats()["loads"].(int64), int64(len(results)))
	assert.Equal(t, path, cache.Path())
}
