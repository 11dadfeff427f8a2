// Package cache provides a small in-process cache for parsed tables, with
// TTL expiry and a manager that sweeps expired entries in the background.
package cache

import "time"

// Cache is the read/write surface shared by cache implementations.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs the periodic cleanup for every registered cache.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		caches:      make([]Cleaner, 0),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the cleanup rotation. Call before StartCleanup.
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup sweeps all registered caches on the given interval until
// Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.run(interval)
}

func (m *Manager) run(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, cache := range m.caches {
				cache.CleanExpired()
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup goroutine and waits for it to finish.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
