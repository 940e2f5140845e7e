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

var _ repository.PaymentRepository = (*paymentRepo)(nil)

// paymentRepo persists payments, their item associations, and the
// append-only status notification log. Card ids are gateway capture
// credentials and are stored encrypted.
type paymentRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewPaymentRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *paymentRepo {
	return &paymentRepo{pool: pool, enc: enc}
}

func (r *paymentRepo) encryptCardID(cardID *string) (*string, error) {
	if cardID == nil || *cardID == "" {
		return nil, nil
	}
	ct, err := r.enc.Encrypt(*cardID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	return &ct, nil
}

func (r *paymentRepo) decryptCardID(stored *string) (*string, error) {
	if stored == nil || *stored == "" {
		return nil, nil
	}
	pt, err := r.enc.Decrypt(*stored)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return &pt, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	cardID, err := r.encryptCardID(p.CardID)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO payments (
  id, transaction_id, method, amount, card_id, card_last_digits,
  boleto_url, boleto_barcode, installments, user_id, subscription_id,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13);`

	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.TransactionID, p.Method, p.Amount, cardID, p.CardLastDigits,
		p.BoletoURL, p.BoletoBarcode, p.Installments, p.UserID, p.SubscriptionID,
		p.CreatedAt, p.UpdatedAt,
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

	const itemQ = `INSERT INTO payment_items (payment_id, item_slug) VALUES ($1,$2);`
	for _, slug := range p.ItemSlugs {
		if _, err := execSQL(ctx, r.pool, tx, itemQ, p.ID, slug); err != nil {
			return domain.ErrOperationFailed
		}
	}
	return nil
}

const paymentColumns = `
  id, transaction_id, method, amount, card_id, card_last_digits,
  boleto_url, boleto_barcode, installments, user_id, subscription_id,
  created_at, updated_at`

func (r *paymentRepo) scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	var storedCardID *string
	if err := row.Scan(
		&p.ID, &p.TransactionID, &p.Method, &p.Amount, &storedCardID, &p.CardLastDigits,
		&p.BoletoURL, &p.BoletoBarcode, &p.Installments, &p.UserID, &p.SubscriptionID,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	cardID, err := r.decryptCardID(storedCardID)
	if err != nil {
		return nil, err
	}
	p.CardID = cardID
	return p, nil
}

func (r *paymentRepo) loadItemSlugs(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `SELECT item_slug FROM payment_items WHERE payment_id = $1 ORDER BY item_slug;`
	rows, err := queryRows(ctx, r.pool, tx, q, p.ID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	defer rows.Close()
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return domain.ErrReadDatabaseRow
		}
		p.ItemSlugs = append(p.ItemSlugs, slug)
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT` + paymentColumns + ` FROM payments WHERE id = $1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p, err := r.scanPayment(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItemSlugs(ctx, tx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	q := `SELECT` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, transactionID)
	if err != nil {
		return nil, err
	}
	p, err := r.scanPayment(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItemSlugs(ctx, tx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) UpdateBoletoFields(ctx context.Context, tx repository.Tx, id string, boletoURL, boletoBarcode string) error {
	const q = `UPDATE payments SET boleto_url=$2, boleto_barcode=$3, updated_at=NOW() WHERE id=$1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id, boletoURL, boletoBarcode)
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

func (r *paymentRepo) AppendNotification(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `INSERT INTO payment_notifications (id, payment_id, status, created_at) VALUES ($1,$2,$3,$4);`
	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.PaymentID, n.Status, n.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) LastNotification(ctx context.Context, tx repository.Tx, paymentID string) (*model.Notification, error) {
	q := `SELECT id, payment_id, status, created_at FROM payment_notifications WHERE payment_id=$1 ORDER BY id DESC LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	n := &model.Notification{}
	if err := row.Scan(&n.ID, &n.PaymentID, &n.Status, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *paymentRepo) ListNotifications(ctx context.Context, tx repository.Tx, paymentID string) ([]*model.Notification, error) {
	const q = `SELECT id, payment_id, status, created_at FROM payment_notifications WHERE payment_id=$1 ORDER BY id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.Notification
	for rows.Next() {
		n := &model.Notification{}
		if err := rows.Scan(&n.ID, &n.PaymentID, &n.Status, &n.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, n)
	}
	return out, nil
}

// SumPaidByPeriod totals the amounts of payments whose latest notification
// is 'paid', counting only those that turned paid within the current period
// (week, month or year).
func (r *paymentRepo) SumPaidByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `
SELECT COALESCE(SUM(p.amount), 0)
  FROM payments p
  JOIN LATERAL (
    SELECT n.status, n.created_at
      FROM payment_notifications n
     WHERE n.payment_id = p.id
     ORDER BY n.id DESC
     LIMIT 1
  ) last ON TRUE
 WHERE last.status = 'paid'
   AND last.created_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
