package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/inkwell-dev/blog-service/internal/types"
)

// PostLister is the slice of storage the feed cache sits in front of.
type PostLister interface {
	ListPosts(ctx context.Context) ([]types.Post, error)
}

// Service caches the full blog feed in Redis. The feed is unpaginated, so one
// hot key covers every reader.
type Service struct {
	storage PostLister
	redis   *redis.Client
}

func NewService(storage PostLister, redisClient *redis.Client) *Service {
	return &Service{
		storage: storage,
		redis:   redisClient,
	}
}

const feedKey = "feed:posts"

const feedCacheDuration = 45 * time.Second

// ListPosts returns the cached feed or falls through to storage. A broken
// cache entry or an unreachable Redis never fails the request.
func (c *Service) ListPosts(ctx context.Context) ([]types.Post, error) {
	cached, err := c.redis.Get(ctx, feedKey).Result()
	if err == nil {
		var posts []types.Post
		if err := json.Unmarshal([]byte(cached), &posts); err == nil {
			return posts, nil
		}
	}

	posts, err := c.storage.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(posts)
	c.redis.Set(ctx, feedKey, data, feedCacheDuration)

	return posts, nil
}

// InvalidateFeed drops the cached feed after a new post lands.
func (c *Service) InvalidateFeed(ctx context.Context) {
	c.redis.Del(ctx, feedKey)
}
