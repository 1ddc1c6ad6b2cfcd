package sentryd

import (
	"time"

	"github.com/ehrlich-b/sentryd/internal/config"
	"github.com/ehrlich-b/sentryd/internal/table"
)

type options struct {
	config             config.Config
	tableConfig        table.Config
	taskCacheCapacity  int
	taskCacheTTL       time.Duration
	inodeCacheCapacity int
	inodeCacheTTL      time.Duration
}

func defaultOptions() options {
	return options{
		config:             config.Default(),
		tableConfig:        table.DefaultConfig(),
		taskCacheCapacity:  4096,
		taskCacheTTL:       2 * time.Second,
		inodeCacheCapacity: 8192,
		inodeCacheTTL:      2 * time.Second,
	}
}

// Option configures an Engine at construction time.
type Option func(*options)

// WithConfig overrides the Engine's initial Config snapshot.
func WithConfig(c config.Config) Option {
	return func(o *options) { o.config = c }
}

// WithTableConfig overrides the Stall Table's shard and queue sizing.
func WithTableConfig(c table.Config) Option {
	return func(o *options) { o.tableConfig = c }
}

// WithTaskCache overrides the Task Cache's capacity and per-entry TTL.
func WithTaskCache(capacity int, ttl time.Duration) Option {
	return func(o *options) {
		o.taskCacheCapacity = capacity
		o.taskCacheTTL = ttl
	}
}

// WithInodeCache overrides the Inode Cache's capacity and per-entry TTL.
func WithInodeCache(capacity int, ttl time.Duration) Option {
	return func(o *options) {
		o.inodeCacheCapacity = capacity
		o.inodeCacheTTL = ttl
	}
}
