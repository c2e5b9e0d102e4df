package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryCache keeps the most recent messages of each scope in a Redis
// list so history reads for hot scopes skip Mongo. Entries are appended on
// store and trimmed to a fixed depth; there is nothing to invalidate.
type HistoryCache struct {
	rdb  *redis.Client
	size int64
	ttl  time.Duration
}

// NewHistoryCache creates a cache holding up to size messages per scope.
// A non-zero ttl expires idle scopes.
func NewHistoryCache(rdb *redis.Client, size int64, ttl time.Duration) *HistoryCache {
	if size <= 0 {
		size = 50
	}
	return &HistoryCache{rdb: rdb, size: size, ttl: ttl}
}

func historyCacheKey(scope Scope, scopeID string) string {
	if scopeID == "" {
		return fmt.Sprintf("history:%s", scope)
	}
	return fmt.Sprintf("history:%s:%s", scope, scopeID)
}

// Append records a freshly stored message at the head of the scope's ring.
func (c *HistoryCache) Append(ctx context.Context, scope Scope, scopeID string, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := historyCacheKey(scope, scopeID)
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, c.size-1)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to limit cached messages for the scope, oldest-first.
// An empty result means the scope is not cached; callers fall back to the
// store.
func (c *HistoryCache) Recent(ctx context.Context, scope Scope, scopeID string, limit int64) ([]Message, error) {
	if limit <= 0 || limit > c.size {
		limit = c.size
	}

	raw, err := c.rdb.LRange(ctx, historyCacheKey(scope, scopeID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	// The list holds newest-first; history contract is oldest-first.
	msgs := make([]Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg Message
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
