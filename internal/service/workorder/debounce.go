package workorder

import (
	"context"
	"sync"
	"time"
)

const DefaultDebounceWindow = 1200 * time.Millisecond

// ScanGuard отсекает повторное сканирование одной пары (заказ, серийник)
// в пределах окна. Allow возвращает false для повтора.
type ScanGuard interface {
	Allow(ctx context.Context, key string) (bool, error)
}

func LockKey(workOrderID, serialBarcode string) string {
	return workOrderID + "|" + serialBarcode
}

// DebounceCache: локальный для процесса ScanGuard с TTL и ограничением размера.
type DebounceCache struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	now        func() time.Time
	last       map[string]time.Time
}

func NewDebounceCache(window time.Duration, maxEntries int, now func() time.Time) *DebounceCache {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	if now == nil {
		now = time.Now
	}
	return &DebounceCache{
		window:     window,
		maxEntries: maxEntries,
		now:        now,
		last:       make(map[string]time.Time),
	}
}

func (c *DebounceCache) Allow(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if prev, ok := c.last[key]; ok && now.Sub(prev) < c.window {
		return false, nil
	}

	if _, ok := c.last[key]; !ok && len(c.last) >= c.maxEntries {
		c.evict(now)
	}
	c.last[key] = now

	return true, nil
}

// evict удаляет просроченные ключи, а если их нет: самый старый.
func (c *DebounceCache) evict(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, at := range c.last {
		if now.Sub(at) >= c.window {
			delete(c.last, k)
			continue
		}
		if oldestKey == "" || at.Before(oldestAt) {
			oldestKey, oldestAt = k, at
		}
	}
	if len(c.last) >= c.maxEntries && oldestKey != "" {
		delete(c.last, oldestKey)
	}
}

func (c *DebounceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
