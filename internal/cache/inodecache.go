package cache

import (
	"time"

	"github.com/ehrlich-b/sentryd/internal/event"
)

// InodeKey identifies a (task, inode, operation kind) triple for the
// Inode Cache. The inode id is supplied explicitly by the hook adapter
// (it comes from the VFS object the kernel hook already holds, not
// from the Event payload) rather than being re-derived here.
type InodeKey struct {
	TID     uint32
	InodeID uint64
	Kind    event.Kind
}

// InodeCache remembers the most recent verdict for a (task, inode,
// kind) triple, suppressing redundant stalls for repeated operations by
// the same task on the same object.
type InodeCache struct {
	cache *Cache[InodeKey]
}

// NewInodeCache builds an Inode Cache of the given capacity and
// per-entry TTL.
func NewInodeCache(capacity int, ttl time.Duration) *InodeCache {
	return &InodeCache{cache: New[InodeKey](capacity, ttl)}
}

// Lookup consults the cache for (tid, inodeID, kind). The SELF guard is
// enforced by the caller, as in TaskCache.Lookup.
func (c *InodeCache) Lookup(tid uint32, inodeID uint64, kind event.Kind) (Verdict, time.Duration, bool) {
	return c.cache.Lookup(InodeKey{TID: tid, InodeID: inodeID, Kind: kind})
}

// Insert records a freshly observed verdict.
func (c *InodeCache) Insert(tid uint32, inodeID uint64, kind event.Kind, v Verdict) {
	c.cache.Insert(InodeKey{TID: tid, InodeID: inodeID, Kind: kind}, v)
}

// Flush clears the cache, called on a stall-mode transition.
func (c *InodeCache) Flush() { c.cache.Flush() }

// Len reports live entry count (tests/metrics).
func (c *InodeCache) Len() int { return c.cache.Len() }
