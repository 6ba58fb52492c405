package rollout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "muster/pkg/domain"
)

// Cache memoizes computed timelines in redis. The computation is
// deterministic per (deployment, asOf date), so cached entries only go
// stale when the catalog is edited; the TTL bounds that staleness.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache wraps a redis client. A nil client yields a nil cache, which is
// safe to use and always misses.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(deploymentID id.DeploymentID, asOf time.Time) string {
	return fmt.Sprintf("rollout:%d:%s", int64(deploymentID), asOf.Format(DateLayout))
}

// Get returns the cached timeline, or nil on a miss. Redis failures count
// as misses; the caller recomputes.
func (c *Cache) Get(ctx context.Context, deploymentID id.DeploymentID, asOf time.Time) *Timeline {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, cacheKey(deploymentID, asOf)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.WarnContext(ctx, "rollout cache read failed", "error", err)
		}
		return nil
	}
	var timeline Timeline
	if err := json.Unmarshal(raw, &timeline); err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "rollout cache entry corrupt", "error", err)
		}
		return nil
	}
	return &timeline
}

// Set stores a computed timeline. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, deploymentID id.DeploymentID, asOf time.Time, timeline *Timeline) {
	if c == nil || timeline == nil {
		return
	}
	raw, err := json.Marshal(timeline)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(deploymentID, asOf), raw, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "rollout cache write failed", "error", err)
	}
}
