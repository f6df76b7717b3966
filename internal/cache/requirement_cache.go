// Package cache holds the redis-backed read caches of the planner.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gradplan/planner-backend/internal/config"
	"github.com/gradplan/planner-backend/internal/model"
)

// cachedCheck stores the owner alongside the view so ownership can be
// enforced on a hit without touching the database.
type cachedCheck struct {
	OwnerID int                     `json:"owner_id"`
	Check   *model.RequirementCheck `json:"check"`
}

// RequirementCache caches the requirement check view of a plan. Every method
// is a no-op on a nil receiver, and redis failures degrade to a cache miss.
type RequirementCache struct {
	rdb redis.Cmdable
	ttl time.Duration
	log zerolog.Logger
}

// NewRequirementCache creates a cache whose entries expire after ttl.
func NewRequirementCache(rdb redis.Cmdable, ttl time.Duration, log zerolog.Logger) *RequirementCache {
	return &RequirementCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "requirement_cache").Logger(),
	}
}

// GetRequirementCheck returns the cached view and its owner.
func (c *RequirementCache) GetRequirementCheck(ctx context.Context, planID int) (int, *model.RequirementCheck, bool) {
	if c == nil {
		return 0, nil, false
	}

	raw, err := c.rdb.Get(ctx, config.CacheKey.RequirementCheckKey(planID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Int("plan_id", planID).Msg("requirement check cache read failed")
		}
		return 0, nil, false
	}

	var entry cachedCheck
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Check == nil {
		return 0, nil, false
	}
	return entry.OwnerID, entry.Check, true
}

// SetRequirementCheck stores the view of a plan.
func (c *RequirementCache) SetRequirementCheck(ctx context.Context, planID, ownerID int, check *model.RequirementCheck) {
	if c == nil || check == nil {
		return
	}

	raw, err := json.Marshal(cachedCheck{OwnerID: ownerID, Check: check})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, config.CacheKey.RequirementCheckKey(planID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Int("plan_id", planID).Msg("requirement check cache write failed")
	}
}

// Invalidate drops the cached views of the given plans.
func (c *RequirementCache) Invalidate(ctx context.Context, planIDs ...int) {
	if c == nil || len(planIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(planIDs))
	for _, id := range planIDs {
		keys = append(keys, config.CacheKey.RequirementCheckKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Ints("plan_ids", planIDs).Msg("requirement check cache invalidation failed")
	}
}
