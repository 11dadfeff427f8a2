package dataset

import (
	"context"
	"fmt"
	"os"
	"time"

	"finbot/internal/cache"
	applog "finbot/internal/log"
)

// CachingLoader wraps a Loader with a small LRU keyed by the backing
// file's path, size and modification time. A refresh replaces the file and
// changes the key, so stale entries simply stop being hit; the TTL bounds
// how long an entry for an unchanged file is reused.
type CachingLoader struct {
	inner  Loader
	path   string
	tables *cache.LRUCache[*Table]
	logger *applog.Logger
}

func NewCachingLoader(inner Loader, path string, ttl time.Duration, logger *applog.Logger) *CachingLoader {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &CachingLoader{
		inner:  inner,
		path:   path,
		tables: cache.NewLRUCache[*Table](4, ttl),
		logger: logger.WithComponent(applog.ComponentCache),
	}
}

// Load returns the cached table when the backing file is unchanged,
// otherwise delegates to the wrapped loader. Stat failures are delegated
// too, so the wrapped loader reports the canonical error kind.
func (l *CachingLoader) Load(ctx context.Context) (*Table, error) {
	fi, err := os.Stat(l.path)
	if err != nil {
		return l.inner.Load(ctx)
	}

	key := fmt.Sprintf("%s|%d|%d", l.path, fi.Size(), fi.ModTime().UnixNano())
	if table, ok := l.tables.Get(key); ok {
		l.logger.DebugContext(ctx, "Serving table from cache", applog.FieldCacheKey, key)
		return table, nil
	}

	table, err := l.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	l.tables.Set(key, table)
	return table, nil
}

// CleanExpired implements cache.Cleaner for the shared cache manager.
func (l *CachingLoader) CleanExpired() int {
	return l.tables.CleanExpired()
}
