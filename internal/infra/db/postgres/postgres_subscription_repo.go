package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
	"pagarme-checkout/internal/infra/security"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewSubscriptionRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *subscriptionRepo {
	return &subscriptionRepo{pool: pool, enc: enc}
}

const subscriptionColumns = `
  id, gateway_subscription_id, plan_id, status, method, card_id,
  card_last_digits, user_id, created_at, updated_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	var cardID *string
	if sub.CardID != nil && *sub.CardID != "" {
		ct, err := r.enc.Encrypt(*sub.CardID)
		if err != nil {
			return domain.ErrOperationFailed
		}
		cardID = &ct
	}
	const q = `
INSERT INTO subscriptions (
  id, gateway_subscription_id, plan_id, status, method, card_id,
  card_last_digits, user_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`

	_, err := execSQL(ctx, r.pool, tx, q,
		sub.ID, sub.GatewaySubscriptionID, sub.PlanID, sub.Status, sub.Method,
		cardID, sub.CardLastDigits, sub.UserID, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByGatewayID(ctx context.Context, tx repository.Tx, gatewaySubscriptionID string) (*model.Subscription, error) {
	q := `SELECT` + subscriptionColumns + ` FROM subscriptions WHERE gateway_subscription_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, gatewaySubscriptionID)
	if err != nil {
		return nil, err
	}
	s := &model.Subscription{}
	var storedCardID *string
	if err := row.Scan(
		&s.ID, &s.GatewaySubscriptionID, &s.PlanID, &s.Status, &s.Method,
		&storedCardID, &s.CardLastDigits, &s.UserID, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if storedCardID != nil && *storedCardID != "" {
		pt, err := r.enc.Decrypt(*storedCardID)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		s.CardID = &pt
	}
	return s, nil
}

func (r *subscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status string) error {
	const q = `UPDATE subscriptions SET status=$2, updated_at=NOW() WHERE id=$1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) AppendNotification(ctx context.Context, tx repository.Tx, n *model.SubscriptionNotification) error {
	const q = `INSERT INTO subscription_notifications (id, subscription_id, status, created_at) VALUES ($1,$2,$3,$4);`
	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.SubscriptionID, n.Status, n.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) LastNotification(ctx context.Context, tx repository.Tx, subscriptionID string) (*model.SubscriptionNotification, error) {
	q := `SELECT id, subscription_id, status, created_at FROM subscription_notifications WHERE subscription_id=$1 ORDER BY id DESC LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, subscriptionID)
	if err != nil {
		return nil, err
	}
	n := &model.SubscriptionNotification{}
	if err := row.Scan(&n.ID, &n.SubscriptionID, &n.Status, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *subscriptionRepo) ListNotifications(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.SubscriptionNotification, error) {
	const q = `SELECT id, subscription_id, status, created_at FROM subscription_notifications WHERE subscription_id=$1 ORDER BY id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, subscriptionID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.SubscriptionNotification
	for rows.Next() {
		n := &model.SubscriptionNotification{}
		if err := rows.Scan(&n.ID, &n.SubscriptionID, &n.Status, &n.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, n)
	}
	return out, nil
}
