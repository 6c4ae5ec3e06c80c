// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewblog/internal/models"
	"reviewblog/internal/store"
)

const (
	// categoryKeyPrefix is the Valkey key prefix for cached category lists.
	categoryKeyPrefix = "category:"

	// DefaultCategoryTTL is how long a cached category list stays valid.
	DefaultCategoryTTL = 10 * time.Minute
)

// Categories wraps a CategoryRepository and caches its list queries in
// Valkey. Any Create clears every cached list. Valkey errors are logged
// and the call falls through to the wrapped repository.
type Categories struct {
	store.CategoryRepository
	client *redis.Client
	ttl    time.Duration
}

var _ store.CategoryRepository = (*Categories)(nil)

// NewCategories creates a category cache in front of repo.
func NewCategories(repo store.CategoryRepository, client *redis.Client, ttl time.Duration) *Categories {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	return &Categories{CategoryRepository: repo, client: client, ttl: ttl}
}

// AllKey returns the cache key for the flat category list.
func AllKey() string {
	return categoryKeyPrefix + "all"
}

// ChildrenKey returns the cache key for the children of one category.
func ChildrenKey(parentID int64) string {
	return categoryKeyPrefix + "children:" + strconv.FormatInt(parentID, 10)
}

// FindAll returns the cached flat list, loading it on a miss.
func (c *Categories) FindAll(ctx context.Context) ([]models.Category, error) {
	return c.cached(ctx, AllKey(), func() ([]models.Category, error) {
		return c.CategoryRepository.FindAll(ctx)
	})
}

// FindChildren returns the cached children of parentID, loading them on a miss.
func (c *Categories) FindChildren(ctx context.Context, parentID int64) ([]models.Category, error) {
	return c.cached(ctx, ChildrenKey(parentID), func() ([]models.Category, error) {
		return c.CategoryRepository.FindChildren(ctx, parentID)
	})
}

// Create inserts through the wrapped repository and clears all cached lists.
func (c *Categories) Create(ctx context.Context, cat *models.Category) (*models.Category, error) {
	created, err := c.CategoryRepository.Create(ctx, cat)
	if err != nil {
		return nil, err
	}
	c.InvalidateAll(ctx)
	return created, nil
}

func (c *Categories) cached(ctx context.Context, key string, load func() ([]models.Category, error)) ([]models.Category, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cats []models.Category
		if err := json.Unmarshal(raw, &cats); err == nil {
			slog.Debug("category cache hit", "key", key)
			return cats, nil
		}
		slog.Warn("category cache decode error", "key", key, "error", err)
	case !errors.Is(err, redis.Nil):
		slog.Warn("category cache get error", "key", key, "error", err)
	}

	cats, err := load()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cats)
	if err != nil {
		slog.Warn("category cache encode error", "key", key, "error", err)
		return cats, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("category cache set error", "key", key, "error", err)
	}
	return cats, nil
}

// InvalidateAll removes all cached category lists by scanning for the prefix.
func (c *Categories) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, categoryKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("category cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("category cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	slog.Debug("category cache cleared", "deleted", deleted)
}
