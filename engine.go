package sentryd

import (
	"github.com/ehrlich-b/sentryd/internal/cache"
	"github.com/ehrlich-b/sentryd/internal/config"
	"github.com/ehrlich-b/sentryd/internal/delivery"
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/hooks"
	"github.com/ehrlich-b/sentryd/internal/logging"
	"github.com/ehrlich-b/sentryd/internal/selfset"
	"github.com/ehrlich-b/sentryd/internal/stall"
	"github.com/ehrlich-b/sentryd/internal/table"
)

// Engine is the top-level handle wiring every core component together:
// Config, the Stall Table, the Stall Engine, the Task/Inode caches, the
// Event Factory, the Hook Adapter, and the Delivery Surface — one
// struct a driver binary or test harness constructs once and drives
// for the life of the process.
type Engine struct {
	Config  *config.Manager
	Table   *table.Table
	Stall   *stall.Engine
	Hooks   *hooks.Adapter
	Surface *delivery.Surface
	Self    *selfset.Set
	Metrics *Metrics

	taskCache  *cache.TaskCache
	inodeCache *cache.InodeCache
}

// New constructs an Engine ready to adapt hook calls, applying opts
// over the package defaults.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}

	cfgMgr := config.NewManager(o.config)
	tbl := table.New(o.tableConfig)
	taskCache := cache.NewTaskCache(o.taskCacheCapacity, o.taskCacheTTL)
	inodeCache := cache.NewInodeCache(o.inodeCacheCapacity, o.inodeCacheTTL)
	self := selfset.New()
	stallEngine := stall.NewEngine(tbl, cfgMgr)
	factory := event.NewFactory()
	adapter := hooks.New(cfgMgr, factory, tbl, stallEngine, self, taskCache, inodeCache)
	surface := delivery.NewSurface(tbl)

	// A stall-mode transition must flush both caches before any reader
	// can observe the new mode.
	cfgMgr.OnStallModeFlush(func(config.Config) {
		taskCache.Flush()
		inodeCache.Flush()
	})

	return &Engine{
		Config:     cfgMgr,
		Table:      tbl,
		Stall:      stallEngine,
		Hooks:      adapter,
		Surface:    surface,
		Self:       self,
		Metrics:    NewMetrics(),
		taskCache:  taskCache,
		inodeCache: inodeCache,
	}
}

// Configure applies a decoded control request and returns the
// resulting snapshot.
func (e *Engine) Configure(req delivery.ControlRequest) config.Config {
	next := delivery.Configure(e.Config, req)
	logging.Info("config updated", "stall_mode", next.StallMode, "stall_timeout", next.StallTimeout)
	return next
}

// Shutdown disables the table so no new work is accepted; in-flight
// stalls still resolve (or time out) normally rather than aborting
// outstanding work.
func (e *Engine) Shutdown() {
	e.Table.SetEnabled(false)
	logging.Info("engine shut down")
}
