//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
)

func testItem() *model.ItemConfig {
	return &model.ItemConfig{
		ID:    "item-1",
		Slug:  "curso-de-go",
		Name:  "Curso de Go",
		Price: 9999,
		Config: &model.FormConfig{
			ID:                 "cfg-1",
			Name:               "default",
			MaxInstallments:    12,
			DefaultInstallment: 1,
			FreeInstallment:    1,
			InterestRate:       1.66,
			PaymentMethods:     []string{model.MethodCreditCard, model.MethodBoleto},
		},
	}
}

func TestItemConfigRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	item := testItem()
	itemJSON, _ := json.Marshal(item)

	t.Run("FindBySlug returns from cache on hit", func(t *testing.T) {
		// Arrange
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return string(itemJSON), nil
			},
		}
		innerCalled := false
		inner := &mockInnerItemConfigRepo{
			FindBySlugFunc: func(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error) {
				innerCalled = true
				return nil, nil
			},
		}
		decorator := NewItemConfigRepoCacheDecorator(inner, mockRedis, time.Hour)

		// Act
		got, err := decorator.FindBySlug(ctx, repository.NoTX, "curso-de-go")

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if got == nil || got.Slug != "curso-de-go" || got.Config == nil || got.Config.MaxInstallments != 12 {
			t.Error("did not return the cached item with its config")
		}
	})

	t.Run("FindBySlug falls through and populates the cache on miss", func(t *testing.T) {
		// Arrange
		var setKey string
		mockRedis := &mockRedisClient{
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setKey = key
				return nil
			},
		}
		inner := &mockInnerItemConfigRepo{
			FindBySlugFunc: func(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error) {
				return item, nil
			},
		}
		decorator := NewItemConfigRepoCacheDecorator(inner, mockRedis, time.Hour)

		// Act
		got, err := decorator.FindBySlug(ctx, repository.NoTX, "curso-de-go")

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got == nil || got.Slug != "curso-de-go" {
			t.Error("did not return the item from the inner repository")
		}
		if setKey != "item:curso-de-go" {
			t.Errorf("expected the item to be cached under its slug key, got %q", setKey)
		}
	})

	t.Run("FindBySlug bypasses the cache inside a transaction", func(t *testing.T) {
		// Arrange
		cacheRead := false
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				cacheRead = true
				return string(itemJSON), nil
			},
		}
		inner := &mockInnerItemConfigRepo{
			FindBySlugFunc: func(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error) {
				return item, nil
			},
		}
		decorator := NewItemConfigRepoCacheDecorator(inner, mockRedis, time.Hour)

		// Act
		_, err := decorator.FindBySlug(ctx, struct{}{}, "curso-de-go")

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cacheRead {
			t.Error("transactional reads must go straight to the inner repository")
		}
	})

	t.Run("Save invalidates the item and list keys", func(t *testing.T) {
		// Arrange
		var deletedKeys []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deletedKeys = append(deletedKeys, keys...)
				return nil
			},
		}
		inner := &mockInnerItemConfigRepo{
			SaveFunc: func(ctx context.Context, tx repository.Tx, item *model.ItemConfig) error {
				return nil
			},
		}
		decorator := NewItemConfigRepoCacheDecorator(inner, mockRedis, time.Hour)

		// Act
		err := decorator.Save(ctx, repository.NoTX, item)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deletedKeys) != 2 {
			t.Fatalf("expected 2 keys to be deleted, but got %d", len(deletedKeys))
		}
	})
}
