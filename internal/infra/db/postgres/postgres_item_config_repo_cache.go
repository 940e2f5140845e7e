package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
	"pagarme-checkout/internal/infra/metrics"
	red "pagarme-checkout/internal/infra/redis"
)

var _ repository.ItemConfigRepository = (*itemConfigRepoCacheDecorator)(nil)

// itemConfigRepoCacheDecorator keeps the hot catalog reads (one per checkout
// page view and one per capture) out of Postgres. Writes invalidate.
type itemConfigRepoCacheDecorator struct {
	inner repository.ItemConfigRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewItemConfigRepoCacheDecorator(inner repository.ItemConfigRepository, cache red.RedisClient, ttl time.Duration) repository.ItemConfigRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &itemConfigRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func itemKey(slug string) string { return fmt.Sprintf("item:%s", slug) }

const itemListKey = "items:all"

// cacheOutcome separates a plain miss from a degraded cache. Both fall
// through to the source; only the metric label differs.
func cacheOutcome(err error) string {
	if err != nil && !red.IsNil(err) {
		return "error"
	}
	return "miss"
}

func (d *itemConfigRepoCacheDecorator) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error) {
	// Transactional reads bypass the cache; they may need FOR UPDATE
	// semantics from the inner repo.
	if tx != nil {
		return d.inner.FindBySlug(ctx, tx, slug)
	}
	val, err := d.cache.Get(ctx, itemKey(slug))
	if err == nil {
		var item model.ItemConfig
		if json.Unmarshal([]byte(val), &item) == nil {
			metrics.IncCacheRequest("item_config", "hit")
			return &item, nil
		}
	}

	metrics.IncCacheRequest("item_config", cacheOutcome(err))
	item, err := d.inner.FindBySlug(ctx, tx, slug)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(item); err == nil {
		d.cache.Set(ctx, itemKey(slug), bytes, d.ttl)
	}
	return item, nil
}

func (d *itemConfigRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ItemConfig, error) {
	if tx != nil {
		return d.inner.ListAll(ctx, tx)
	}
	val, err := d.cache.Get(ctx, itemListKey)
	if err == nil {
		var items []*model.ItemConfig
		if json.Unmarshal([]byte(val), &items) == nil {
			metrics.IncCacheRequest("item_config_list", "hit")
			return items, nil
		}
	}

	metrics.IncCacheRequest("item_config_list", cacheOutcome(err))
	items, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if bytes, err := json.Marshal(items); err == nil {
			d.cache.Set(ctx, itemListKey, bytes, d.ttl)
		}
	}
	return items, nil
}

func (d *itemConfigRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, item *model.ItemConfig) error {
	d.cache.Del(ctx, itemKey(item.Slug), itemListKey)
	return d.inner.Save(ctx, tx, item)
}

func (d *itemConfigRepoCacheDecorator) SaveConfig(ctx context.Context, tx repository.Tx, cfg *model.FormConfig) error {
	// The config is embedded in cached items; per-item keys age out via TTL.
	d.cache.Del(ctx, itemListKey)
	return d.inner.SaveConfig(ctx, tx, cfg)
}
