package assembly

import (
	"sync"
	"time"
)

// Cooldown throttles successive assemblies by the same user. Implementations
// must be safe for concurrent use; a shared keyed store can be swapped in for
// multi-process deployments.
type Cooldown interface {
	// Reserve marks an attempt for the key. It returns false plus the
	// remaining wait when the key is still inside its window.
	Reserve(key string) (time.Duration, bool)
}

// MemoryCooldown is a process-local Cooldown backed by a mutex-guarded map.
type MemoryCooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

// NewMemoryCooldown builds a cooldown with the given window. A nil now
// function defaults to time.Now.
func NewMemoryCooldown(window time.Duration, now func() time.Time) *MemoryCooldown {
	if now == nil {
		now = time.Now
	}
	return &MemoryCooldown{
		window: window,
		last:   make(map[string]time.Time),
		now:    now,
	}
}

func (c *MemoryCooldown) Reserve(key string) (time.Duration, bool) {
	if c == nil || c.window <= 0 || key == "" {
		return 0, true
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.last[key]; ok {
		elapsed := now.Sub(last)
		if elapsed < c.window {
			return c.window - elapsed, false
		}
	}
	c.last[key] = now
	return 0, true
}
