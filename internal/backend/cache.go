package backend

import (
	"context"
	"log/slog"
	"time"

	"finanzas/internal/cache"
	"finanzas/internal/planner"
)

const (
	planCachePrefix      = "finanzas:plan:"
	cacheCleanupInterval = 5 * time.Minute
)

// PlanCache is the report cache together with its health check and cleanup.
type PlanCache struct {
	Reports cache.Cache[planner.Report]
	// Ping is set only for Redis.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

type CacheConfig struct {
	RedisAddr string
	Size      int
	TTL       time.Duration
}

// NewPlanCache shares reports through Redis when an address is configured so
// the worker warms the API's cache; otherwise it keeps an in-process LRU
// swept by a cleanup manager.
func NewPlanCache(cfg CacheConfig, logger *slog.Logger) *PlanCache {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr)
		reports := cache.NewRedisCache[planner.Report](client, planCachePrefix, cfg.TTL)
		logger.Info("Using Redis plan cache", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
		return &PlanCache{Reports: reports, Ping: reports.Ping, Cleanup: client.Close}
	}

	lru := cache.NewLRUCache[planner.Report](cfg.Size, cfg.TTL)
	manager := cache.NewManager(logger)
	manager.Register(lru)
	manager.StartCleanup(cacheCleanupInterval)
	logger.Info("Using in-process plan cache", "size", cfg.Size, "ttl", cfg.TTL)
	return &PlanCache{
		Reports: lru,
		Cleanup: func() error {
			manager.Stop()
			return nil
		},
	}
}
