package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache stores values in Redis strings with a TTL.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// CachedSearcher serves repeated queries from a cache. Cache failures fall
// through to the wrapped searcher; empty results are not cached.
type CachedSearcher struct {
	next  Searcher
	cache Cache
	ttl   time.Duration
}

func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, cache: cache, ttl: ttl}
}

func (s *CachedSearcher) Search(ctx context.Context, query string, maxResults int) []Result {
	maxResults = ClampMaxResults(maxResults)
	key := cacheKey(query, maxResults)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached []Result
		if err := json.Unmarshal(raw, &cached); err == nil {
			slog.DebugContext(ctx, "search cache hit", "results", len(cached))
			return cached
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		slog.WarnContext(ctx, "search cache read failed", "error", err)
	}

	results := s.next.Search(ctx, query, maxResults)
	if len(results) == 0 {
		return results
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return results
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		slog.WarnContext(ctx, "search cache write failed", "error", err)
	}
	return results
}

func cacheKey(query string, maxResults int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", normalized, maxResults)))
	return "companion:search:" + hex.EncodeToString(sum[:])
}
