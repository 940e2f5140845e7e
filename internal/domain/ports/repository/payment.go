package repository

import (
	"context"

	"pagarme-checkout/internal/domain/model"
)

// -----------------------------
// Payments + their append-only notification log
// -----------------------------

type PaymentRepository interface {
	// Save inserts the payment row and its item-association rows.
	// transaction_id carries a uniqueness constraint; a duplicate insert
	// surfaces as domain.ErrAlreadyExists.
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByTransactionID(ctx context.Context, tx Tx, transactionID string) (*model.Payment, error)
	UpdateBoletoFields(ctx context.Context, tx Tx, id string, boletoURL, boletoBarcode string) error

	// AppendNotification inserts one immutable status observation.
	AppendNotification(ctx context.Context, tx Tx, n *model.Notification) error
	// LastNotification returns the most recent observation or
	// domain.ErrNotFound when the payment has none yet.
	LastNotification(ctx context.Context, tx Tx, paymentID string) (*model.Notification, error)
	ListNotifications(ctx context.Context, tx Tx, paymentID string) ([]*model.Notification, error)

	// SumPaidByPeriod totals payments whose latest status is paid, for
	// paid_at >= date_trunc(period, now()).
	SumPaidByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
