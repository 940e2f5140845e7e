// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/adapter"
	"pagarme-checkout/internal/domain/ports/repository"
	"pagarme-checkout/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutUseCase interface {
	// Capture finalizes the transaction behind a checkout token: fetches it
	// from the gateway, validates it against the catalog, persists payment +
	// items + first notification atomically, calls the gateway capture
	// endpoint and records the resulting status. Capture is idempotent per
	// transaction_id.
	Capture(ctx context.Context, token string) (*model.Payment, error)
}

type checkoutUC struct {
	items    repository.ItemConfigRepository
	payments repository.PaymentRepository
	profiles repository.UserProfileRepository
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	hooks    Hooks
	log      *zerolog.Logger
}

func NewCheckoutUseCase(
	items repository.ItemConfigRepository,
	payments repository.PaymentRepository,
	profiles repository.UserProfileRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	hooks Hooks,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		items:    items,
		payments: payments,
		profiles: profiles,
		gateway:  gateway,
		tm:       tm,
		hooks:    hooks.normalized(),
		log:      logger,
	}
}

// capturable statuses: an existing payment is re-captured only while its
// lifecycle is still open.
func capturable(status string) bool {
	switch status {
	case model.StatusProcessing, model.StatusAuthorized, model.StatusWaitingPayment:
		return true
	}
	return false
}

func (u *checkoutUC) Capture(ctx context.Context, token string) (*model.Payment, error) {
	trans, err := u.gateway.FindTransaction(ctx, token)
	if err != nil {
		return nil, err
	}
	if trans.ID != token {
		return nil, &domain.TransactionMismatchError{TransactionID: trans.ID}
	}

	payment, err := u.payments.FindByTransactionID(ctx, repository.NoTX, trans.ID)
	switch {
	case err == nil:
		last, lerr := u.payments.LastNotification(ctx, repository.NoTX, payment.ID)
		switch {
		case lerr == nil:
			if !capturable(last.Status) {
				// Duplicate capture attempt for a settled payment: idempotent no-op.
				u.log.Info().Str("transaction_id", trans.ID).Str("status", last.Status).Msg("capture replay, returning existing payment")
				return payment, nil
			}
		case !errors.Is(lerr, domain.ErrNotFound):
			// Without the status history there is no way to tell a replay from
			// an open payment; do not call the gateway on a broken read.
			return nil, lerr
		}
	case errors.Is(err, domain.ErrNotFound):
		payment, err = u.createFromTransaction(ctx, trans)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	captured, err := u.gateway.Capture(ctx, token, payment.Amount)
	if err != nil {
		return nil, err
	}

	// A repeated or out-of-order status from the gateway is skipped without
	// aborting the transaction, so the boleto fields still commit.
	stale := false
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if payment.Method == model.MethodBoleto && captured.BoletoURL != "" {
			if err := u.payments.UpdateBoletoFields(ctx, tx, payment.ID, captured.BoletoURL, captured.BoletoBarcode); err != nil {
				return err
			}
			payment.BoletoURL = &captured.BoletoURL
			payment.BoletoBarcode = &captured.BoletoBarcode
		}
		err := u.appendStatus(ctx, tx, payment.ID, captured.Status)
		var tErr *domain.StatusTransitionError
		if errors.As(err, &tErr) {
			stale = true
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !stale {
		metrics.IncNotification("payment", "recorded")
		firePaymentListeners(ctx, u.log, u.hooks.PaymentListeners, payment.ID, captured.Status)
	}

	u.upsertProfile(ctx, payment, captured)
	return payment, nil
}

// createFromTransaction validates the gateway transaction against the
// catalog and persists payment + item associations + first notification as
// one atomic unit.
func (u *checkoutUC) createFromTransaction(ctx context.Context, trans *model.GatewayTransaction) (*model.Payment, error) {
	now := time.Now()
	items := make([]*model.ItemConfig, 0, len(trans.Items))
	for _, reported := range trans.Items {
		item, err := u.items.FindBySlug(ctx, repository.NoTX, reported.Slug)
		if err != nil {
			return nil, err
		}
		if !u.hooks.Availability(item, now) {
			return nil, domain.ErrItemUnavailable
		}
		items = append(items, item)
	}

	payment, err := model.PaymentFromTransaction(trans, items)
	if err != nil {
		return nil, err
	}
	if userID, ok := u.hooks.UserFactory.UserForCustomer(ctx, trans.Customer); ok {
		payment.UserID = &userID
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.payments.Save(ctx, tx, payment); err != nil {
			return err
		}
		return u.payments.AppendNotification(ctx, tx, model.NewNotification(payment.ID, trans.Status))
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost a race with a concurrent capture of the same transaction.
		return u.payments.FindByTransactionID(ctx, repository.NoTX, trans.ID)
	}
	if err != nil {
		return nil, err
	}
	metrics.IncPayment(trans.PaymentMethod, trans.Status)
	metrics.AddPaymentRevenue(trans.PaymentMethod, payment.Amount)
	return payment, nil
}

// appendStatus records a status through the state machine, inside the
// caller's transaction.
func (u *checkoutUC) appendStatus(ctx context.Context, tx repository.Tx, paymentID, status string) error {
	lastStatus := ""
	last, err := u.payments.LastNotification(ctx, tx, paymentID)
	if err == nil {
		lastStatus = last.Status
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := model.CheckPaymentTransition(lastStatus, status); err != nil {
		return err
	}
	return u.payments.AppendNotification(ctx, tx, model.NewNotification(paymentID, status))
}

func (u *checkoutUC) upsertProfile(ctx context.Context, payment *model.Payment, trans *model.GatewayTransaction) {
	if payment.UserID == nil || trans.Customer.Name == "" {
		return
	}
	profile, err := model.NewUserPaymentProfile(*payment.UserID, trans.Customer, trans.Billing)
	if err != nil {
		return
	}
	if err := u.profiles.Upsert(ctx, repository.NoTX, profile); err != nil {
		// Prefill data is an optimization; losing it must not fail a capture.
		u.log.Warn().Err(err).Str("user_id", *payment.UserID).Msg("user payment profile upsert failed")
	}
}
