// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"jowam/internal/metrics"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// generationKey counts invalidations. It sits outside pageKeyPrefix so
	// InvalidateAll never scans it away.
	generationKey = "pagegen"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// setIfGeneration stores a page only while the invalidation counter still
// holds the value the reader saw before it loaded its data.
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if (cur == false and ARGV[1] == '0') or cur == ARGV[1] then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	return 1
end
return 0
`)

// PageCache stores rendered public HTML in Valkey. Only pages without
// query parameters are cached. A nil *PageCache is a valid no-op cache,
// which is what the site runs with when caching is disabled.
//
// Every invalidation bumps a generation counter. Readers take the
// generation before loading data and pass it to SetAt, so a page rendered
// from data that was changed mid-request is never stored.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached HTML for key and whether it was found.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache(false)
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	metrics.ObserveCache(true)
	return val, true
}

// Generation returns the current invalidation counter, or -1 when it
// cannot be read. SetAt ignores negative generations.
func (pc *PageCache) Generation(ctx context.Context) int64 {
	if pc == nil {
		return -1
	}
	gen, err := pc.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		slog.Warn("page cache generation error", "error", err)
		return -1
	}
	return gen
}

// SetAt stores rendered HTML for key if no invalidation happened since
// gen was read. Failures are logged and otherwise ignored; the cache is an
// optimisation only.
func (pc *PageCache) SetAt(ctx context.Context, key string, gen int64, html []byte) {
	if pc == nil || gen < 0 {
		return
	}
	stored, err := setIfGeneration.Run(ctx, pc.client,
		[]string{generationKey, pageKeyPrefix + key},
		strconv.FormatInt(gen, 10), html, pc.ttl.Milliseconds(),
	).Int()
	if err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
		return
	}
	if stored == 0 {
		slog.Debug("page cache skipped stale render", "key", key, "generation", gen)
	}
}

// Invalidate removes the given keys and bumps the generation in one
// transaction.
func (pc *PageCache) Invalidate(ctx context.Context, keys ...string) {
	if pc == nil || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = pageKeyPrefix + k
	}
	_, err := pc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, full...)
		return nil
	})
	if err != nil {
		slog.Warn("page cache invalidate error", "keys", keys, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "keys", keys)
}

// InvalidateArticle drops every page that can show the article: its
// detail pages under each given slug, the insights index and the home page.
func (pc *PageCache) InvalidateArticle(ctx context.Context, slugs ...string) {
	keys := []string{HomeKey(), InsightsKey()}
	seen := make(map[string]bool)
	for _, s := range slugs {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		keys = append(keys, ArticleKey(s))
	}
	pc.Invalidate(ctx, keys...)
}

// InvalidateAll removes all cached pages by scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if pc == nil {
		return
	}
	if err := pc.client.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("page cache generation bump error", "error", err)
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

// HomeKey is the cache key of the home page.
func HomeKey() string { return "home" }

// InsightsKey is the cache key of the unfiltered insights index.
func InsightsKey() string { return "insights" }

// ArticleKey is the cache key of an article detail page.
func ArticleKey(slug string) string { return "insights:" + slug }

// CatalogKey is the cache key of the unfiltered catalog page.
func CatalogKey() string { return "catalog" }

// FAQsKey is the cache key of the unfiltered FAQ page.
func FAQsKey() string { return "faqs" }

// OriginsKey is the cache key of the origins index.
func OriginsKey() string { return "origins" }

// OriginKey is the cache key of a growing region page.
func OriginKey(slug string) string { return "origins:" + slug }

// StaticKey is the cache key of an informational page.
func StaticKey(name string) string { return "static:" + name }
