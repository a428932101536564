// sidebar.go provides a Valkey-backed cache for the category sidebar.
// Every blog page lists all categories; caching the serialized list
// skips the DB query on the hot path. Admin category edits invalidate it.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"inkpress/internal/models"
)

const (
	// sidebarKey is the Valkey key holding the serialized category list.
	sidebarKey = "sidebar:categories"

	// DefaultSidebarTTL is how long the category list stays cached.
	DefaultSidebarTTL = 10 * time.Minute
)

// SidebarCache manages the cached category list in Valkey.
type SidebarCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSidebarCache creates a sidebar cache backed by the given Valkey client.
func NewSidebarCache(client *redis.Client, ttl time.Duration) *SidebarCache {
	if ttl == 0 {
		ttl = DefaultSidebarTTL
	}
	return &SidebarCache{client: client, ttl: ttl}
}

// Get retrieves the cached category list. Returns (nil, false) on miss.
func (sc *SidebarCache) Get(ctx context.Context) ([]models.Category, bool) {
	val, err := sc.client.Get(ctx, sidebarKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("sidebar cache get error", "error", err)
		return nil, false
	}

	var cats []models.Category
	if err := json.Unmarshal(val, &cats); err != nil {
		slog.Warn("sidebar cache decode error", "error", err)
		return nil, false
	}
	return cats, true
}

// Set stores the category list with the configured TTL.
func (sc *SidebarCache) Set(ctx context.Context, cats []models.Category) {
	payload, err := json.Marshal(cats)
	if err != nil {
		slog.Warn("sidebar cache encode error", "error", err)
		return
	}
	if err := sc.client.Set(ctx, sidebarKey, payload, sc.ttl).Err(); err != nil {
		slog.Warn("sidebar cache set error", "error", err)
	}
}

// Invalidate removes the cached list. Called after admin category changes.
func (sc *SidebarCache) Invalidate(ctx context.Context) {
	if err := sc.client.Del(ctx, sidebarKey).Err(); err != nil {
		slog.Warn("sidebar cache invalidate error", "error", err)
	}
}
