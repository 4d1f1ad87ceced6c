package biz

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/pkg/rag/textutil"
)

// AnswerCacheConfig configures the Redis answer cache.
type AnswerCacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// AnswerCache stores chat results in Redis keyed by the question hash, so
// repeated questions skip the whole agent pipeline. A disabled or absent
// cache degrades to misses; it never fails a request.
type AnswerCache struct {
	redis *goredis.Client
	cfg   AnswerCacheConfig
}

// NewAnswerCache creates an answer cache.
func NewAnswerCache(redis *goredis.Client, cfg AnswerCacheConfig) *AnswerCache {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rag:answer:"
	}
	return &AnswerCache{redis: redis, cfg: cfg}
}

func (c *AnswerCache) key(question string) string {
	return c.cfg.KeyPrefix + textutil.HashString(question)
}

// Get returns the cached result for a question, or nil on miss.
func (c *AnswerCache) Get(ctx context.Context, question string) *model.ChatResult {
	if !c.cfg.Enabled || c.redis == nil {
		return nil
	}

	cacheKey := c.key(question)
	data, err := c.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("failed to read answer cache", "error", err.Error(), "key", cacheKey)
		}
		return nil
	}

	var result model.ChatResult
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warnw("failed to unmarshal cached answer, dropping entry",
			"error", err.Error(), "key", cacheKey)
		_ = c.redis.Del(ctx, cacheKey).Err()
		return nil
	}

	logger.Infow("answer cache hit", "key", cacheKey)
	return &result
}

// Set stores a result under the question hash.
func (c *AnswerCache) Set(ctx context.Context, question string, result *model.ChatResult) {
	if !c.cfg.Enabled || c.redis == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Warnw("failed to marshal answer for caching", "error", err.Error())
		return
	}

	cacheKey := c.key(question)
	if err := c.redis.Set(ctx, cacheKey, data, c.cfg.TTL).Err(); err != nil {
		logger.Warnw("failed to write answer cache", "error", err.Error(), "key", cacheKey)
		return
	}
	logger.Debugw("cached answer", "key", cacheKey, "ttl", c.cfg.TTL)
}

// Clear deletes every cached answer under the configured prefix.
func (c *AnswerCache) Clear(ctx context.Context) error {
	if !c.cfg.Enabled || c.redis == nil {
		return nil
	}

	iter := c.redis.Scan(ctx, 0, c.cfg.KeyPrefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key", "error", err.Error(), "key", iter.Val())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return err
	}
	logger.Infow("answer cache cleared", "deleted", deleted)
	return nil
}
