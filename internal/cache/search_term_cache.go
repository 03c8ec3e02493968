// Package cache holds the Redis-backed read caches. Cache misses and Redis
// outages degrade to database reads; callers never fail on cache errors alone.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/tenderwatch/backend/internal/models"
)

const (
	searchTermsKey = "search_terms_all"
	searchTermsTTL = time.Hour
)

type searchTermCache struct {
	rdb *redis.Client
}

// NewSearchTermCache creates a cache over the shared Redis client
func NewSearchTermCache(rdb *redis.Client) *searchTermCache {
	return &searchTermCache{rdb: rdb}
}

// Get returns the cached term list. The second return value is false on a
// cache miss.
func (c *searchTermCache) Get(ctx context.Context) ([]models.SearchTerm, bool, error) {
	data, err := c.rdb.Get(ctx, searchTermsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read search terms from cache: %w", err)
	}

	var terms []models.SearchTerm
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached search terms: %w", err)
	}

	return terms, true, nil
}

// Set stores the full term list
func (c *searchTermCache) Set(ctx context.Context, terms []models.SearchTerm) error {
	data, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("failed to encode search terms: %w", err)
	}

	if err := c.rdb.Set(ctx, searchTermsKey, data, searchTermsTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache search terms: %w", err)
	}

	return nil
}

// Invalidate drops the cached term list; every write path calls this
func (c *searchTermCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, searchTermsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate search terms cache: %w", err)
	}

	return nil
}
