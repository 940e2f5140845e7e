package repository

import (
	"context"

	"pagarme-checkout/internal/domain/model"
)

// -----------------------------
// Catalog (items + installment policies)
// -----------------------------

type ItemConfigRepository interface {
	SaveConfig(ctx context.Context, tx Tx, cfg *model.FormConfig) error
	Save(ctx context.Context, tx Tx, item *model.ItemConfig) error
	// FindBySlug loads the item together with its FormConfig.
	FindBySlug(ctx context.Context, tx Tx, slug string) (*model.ItemConfig, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.ItemConfig, error)
}
