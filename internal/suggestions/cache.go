package suggestions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/redis"
)

// cacheTTL bounds how stale a suggestion response may get. Entitlement
// changes invalidate eagerly; catalog changes ride out the window.
const cacheTTL = 60 * time.Second

// Cache wraps an Engine with a short per-user Redis cache. A nil client
// disables caching, leaving every call to hit the engine. Redis failures
// degrade to a recompute, never to a request failure.
type Cache struct {
	engine *Engine
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates a caching layer over the engine.
func NewCache(engine *Engine, rdb *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{engine: engine, rdb: rdb, ttl: cacheTTL, logger: logger}
}

func cacheKey(userID uuid.UUID) string {
	return "suggestions:" + userID.String()
}

// Suggest returns cached suggestions when fresh, otherwise computes and
// stores them. bypass skips the cached read but still refreshes the entry.
func (c *Cache) Suggest(ctx context.Context, userID uuid.UUID, bypass bool) (*models.RoleSuggestions, error) {
	if c.rdb == nil {
		return c.engine.Suggest(ctx, userID)
	}

	key := cacheKey(userID)
	if !bypass {
		var cached models.RoleSuggestions
		hit, err := c.rdb.GetJSON(ctx, key, &cached)
		if err != nil {
			c.logger.Warn("suggestion cache read failed", zap.Error(err), zap.String("user_id", userID.String()))
		} else if hit {
			return &cached, nil
		}
	}

	out, err := c.engine.Suggest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.rdb.SetJSON(ctx, key, out, c.ttl); err != nil {
		c.logger.Warn("suggestion cache write failed", zap.Error(err), zap.String("user_id", userID.String()))
	}
	return out, nil
}

// Invalidate drops a user's cached entry. Called after subscription changes
// so the next request sees the new entitlement. No-op when nothing is
// cached.
func (c *Cache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(userID)).Err(); err != nil {
		c.logger.Warn("suggestion cache invalidate failed", zap.Error(err), zap.String("user_id", userID.String()))
	}
}
