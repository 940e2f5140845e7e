//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
	red "pagarme-checkout/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerItemConfigRepo mocks the database repository the catalog decorator wraps.
type mockInnerItemConfigRepo struct {
	SaveConfigFunc func(ctx context.Context, tx repository.Tx, cfg *model.FormConfig) error
	SaveFunc       func(ctx context.Context, tx repository.Tx, item *model.ItemConfig) error
	FindBySlugFunc func(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error)
	ListAllFunc    func(ctx context.Context, tx repository.Tx) ([]*model.ItemConfig, error)
}

func (m *mockInnerItemConfigRepo) SaveConfig(ctx context.Context, tx repository.Tx, cfg *model.FormConfig) error {
	return m.SaveConfigFunc(ctx, tx, cfg)
}
func (m *mockInnerItemConfigRepo) Save(ctx context.Context, tx repository.Tx, item *model.ItemConfig) error {
	return m.SaveFunc(ctx, tx, item)
}
func (m *mockInnerItemConfigRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error) {
	return m.FindBySlugFunc(ctx, tx, slug)
}
func (m *mockInnerItemConfigRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ItemConfig, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockRedisClient implements red.RedisClient with overridable functions.
type mockRedisClient struct {
	PingFunc func(ctx context.Context) error
	SetFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetFunc  func(ctx context.Context, key string) (string, error)
	DelFunc  func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func (m *mockRedisClient) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}
func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", redis.Nil
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}
	return nil
}
func (m *mockRedisClient) Close() error { return nil }
