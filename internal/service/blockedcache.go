package service

import (
	"context"
	"sync"
	"time"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	"github.com/foodbridge-dev/foodbridge/internal/logger"
)

// BlockedCacheStorage defines the minimal read needed for cache population.
type BlockedCacheStorage interface {
	BlockedUserIds() ([]domain.UserId, error)
}

// BlockedCache keeps the set of blocked user ids in memory so auth middleware
// can gate every request without a database round trip. Moderation triggers
// an immediate Update on block/unblock; a background ticker covers the rest.
type BlockedCache struct {
	storage BlockedCacheStorage
	cache   map[domain.UserId]bool
	mu      sync.RWMutex
}

func NewBlockedCache(storage BlockedCacheStorage) *BlockedCache {
	return &BlockedCache{
		storage: storage,
		cache:   make(map[domain.UserId]bool),
	}
}

// Update replaces the cached set with the current database state.
func (bc *BlockedCache) Update() error {
	userIds, err := bc.storage.BlockedUserIds()
	if err != nil {
		return err
	}

	newCache := make(map[domain.UserId]bool, len(userIds))
	for _, userId := range userIds {
		newCache[userId] = true
	}

	bc.mu.Lock()
	bc.cache = newCache
	bc.mu.Unlock()

	logger.Log.Info("blocked user cache updated",
		"component", "blocked_cache",
		"entries", len(newCache))
	return nil
}

func (bc *BlockedCache) IsBlocked(userId domain.UserId) bool {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.cache[userId]
}

// StartBackgroundUpdate refreshes the cache on a fixed interval until ctx is
// cancelled.
func (bc *BlockedCache) StartBackgroundUpdate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started blocked cache background updates",
		"component", "blocked_cache",
		"interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := bc.Update(); err != nil {
					logger.Log.Error("blocked cache update failed",
						"component", "blocked_cache",
						"error", err)
				}
			case <-ctx.Done():
				logger.Log.Info("blocked cache shutting down gracefully",
					"component", "blocked_cache")
				return
			}
		}
	}()
}
