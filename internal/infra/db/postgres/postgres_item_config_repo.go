package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
)

var _ repository.ItemConfigRepository = (*itemConfigRepo)(nil)

type itemConfigRepo struct{ pool *pgxpool.Pool }

func NewItemConfigRepo(pool *pgxpool.Pool) *itemConfigRepo {
	return &itemConfigRepo{pool: pool}
}

func (r *itemConfigRepo) SaveConfig(ctx context.Context, tx repository.Tx, cfg *model.FormConfig) error {
	const q = `
INSERT INTO form_configs (id, name, max_installments, default_installment, free_installment, interest_rate, payment_methods)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=$2, max_installments=$3, default_installment=$4, free_installment=$5, interest_rate=$6, payment_methods=$7;`

	_, err := execSQL(ctx, r.pool, tx, q,
		cfg.ID, cfg.Name, cfg.MaxInstallments, cfg.DefaultInstallment,
		cfg.FreeInstallment, cfg.InterestRate, model.JoinMethods(cfg.PaymentMethods),
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *itemConfigRepo) Save(ctx context.Context, tx repository.Tx, item *model.ItemConfig) error {
	if item.Config == nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO item_configs (id, slug, name, price, tangible, available_from, available_until, upsell_slug, form_config_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (slug) DO UPDATE SET
  name=$3, price=$4, tangible=$5, available_from=$6, available_until=$7, upsell_slug=$8, form_config_id=$9;`

	_, err := execSQL(ctx, r.pool, tx, q,
		item.ID, item.Slug, item.Name, item.Price, item.Tangible,
		item.AvailableFrom, item.AvailableUntil, item.UpsellSlug, item.Config.ID,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

const itemConfigColumns = `
  i.id, i.slug, i.name, i.price, i.tangible, i.available_from, i.available_until, i.upsell_slug,
  c.id, c.name, c.max_installments, c.default_installment, c.free_installment, c.interest_rate, c.payment_methods`

func scanItemConfig(row pgx.Row) (*model.ItemConfig, error) {
	var (
		item    model.ItemConfig
		cfg     model.FormConfig
		methods string
	)
	if err := row.Scan(
		&item.ID, &item.Slug, &item.Name, &item.Price, &item.Tangible,
		&item.AvailableFrom, &item.AvailableUntil, &item.UpsellSlug,
		&cfg.ID, &cfg.Name, &cfg.MaxInstallments, &cfg.DefaultInstallment,
		&cfg.FreeInstallment, &cfg.InterestRate, &methods,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	cfg.PaymentMethods = model.ParseMethods(methods)
	item.Config = &cfg
	return &item, nil
}

func (r *itemConfigRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error) {
	q := `
SELECT` + itemConfigColumns + `
  FROM item_configs i
  JOIN form_configs c ON c.id = i.form_config_id
 WHERE i.slug = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, slug)
	if err != nil {
		return nil, err
	}
	return scanItemConfig(row)
}

func (r *itemConfigRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ItemConfig, error) {
	q := `
SELECT` + itemConfigColumns + `
  FROM item_configs i
  JOIN form_configs c ON c.id = i.form_config_id
 ORDER BY i.slug;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.ItemConfig
	for rows.Next() {
		item, err := scanItemConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
