package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "github.com/umutakksy/task-floww/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyTree = "folder:tree:"

// TreeCache caches the built folder tree per owner in Redis.
type TreeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTreeCache returns a new TreeCache.
func NewTreeCache(rdb *redis.Client, ttl time.Duration) *TreeCache {
	return &TreeCache{rdb: rdb, ttl: ttl}
}

func treeKey(ownerID int64) string {
	return keyTree + strconv.FormatInt(ownerID, 10)
}

// Get returns the cached tree for the owner, or nil if miss.
func (c *TreeCache) Get(ctx context.Context, ownerID int64) ([]dom.FolderNode, error) {
	b, err := c.rdb.Get(ctx, treeKey(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tree []dom.FolderNode
	if err := json.Unmarshal(b, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Set stores the owner's tree in cache.
func (c *TreeCache) Set(ctx context.Context, ownerID int64, tree []dom.FolderNode) error {
	b, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, treeKey(ownerID), b, c.ttl).Err()
}

// Invalidate drops the owner's cached tree (cache invalidation on write).
func (c *TreeCache) Invalidate(ctx context.Context, ownerID int64) error {
	return c.rdb.Del(ctx, treeKey(ownerID)).Err()
}
