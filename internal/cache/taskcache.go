package cache

import (
	"time"

	"github.com/ehrlich-b/sentryd/internal/event"
)

// TaskKey identifies a (task, operation kind) pair for the Task Cache.
type TaskKey struct {
	TID  uint32
	Kind event.Kind
}

// TaskCache remembers the most recent verdict for a (task, kind) pair
// so a hook adapter can skip a user-space round trip on a very recent
// identical decision.
type TaskCache struct {
	cache *Cache[TaskKey]
}

// NewTaskCache builds a Task Cache of the given capacity and per-entry
// TTL.
func NewTaskCache(capacity int, ttl time.Duration) *TaskCache {
	return &TaskCache{cache: New[TaskKey](capacity, ttl)}
}

// Lookup consults the cache for (tid, kind). The SELF feedback-loop
// guard is
// enforced by the caller (internal/hooks.Adapter.Run), which never
// reaches a cache call for a SELF event in the first place.
func (c *TaskCache) Lookup(tid uint32, kind event.Kind) (Verdict, time.Duration, bool) {
	return c.cache.Lookup(TaskKey{TID: tid, Kind: kind})
}

// Insert records a freshly observed user-space verdict for (tid, kind).
func (c *TaskCache) Insert(tid uint32, kind event.Kind, v Verdict) {
	c.cache.Insert(TaskKey{TID: tid, Kind: kind}, v)
}

// Flush clears the cache, called on a stall-mode transition.
func (c *TaskCache) Flush() { c.cache.Flush() }

// Len reports live entry count (tests/metrics).
func (c *TaskCache) Len() int { return c.cache.Len() }
