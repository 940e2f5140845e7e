// File: internal/usecase/notification_uc.go
package usecase

import (
	"context"
	"errors"
	"net/url"
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
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// HandlePaymentNotification authenticates and applies one webhook
	// delivery. A *domain.PaymentViolation means the request must be
	// rejected; a *domain.StatusTransitionError means the delivery was
	// stale or duplicated and must be acknowledged without recording.
	HandlePaymentNotification(ctx context.Context, form url.Values, rawBody []byte, signature string) error
	HandleSubscriptionNotification(ctx context.Context, form url.Values, rawBody []byte, signature string) error
}

type notificationUC struct {
	items    repository.ItemConfigRepository
	payments repository.PaymentRepository
	subs     repository.SubscriptionRepository
	verifier adapter.WebhookVerifier
	tm       repository.TransactionManager
	hooks    Hooks
	log      *zerolog.Logger
}

func NewNotificationUseCase(
	items repository.ItemConfigRepository,
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	verifier adapter.WebhookVerifier,
	tm repository.TransactionManager,
	hooks Hooks,
	logger *zerolog.Logger,
) *notificationUC {
	return &notificationUC{
		items:    items,
		payments: payments,
		subs:     subs,
		verifier: verifier,
		tm:       tm,
		hooks:    hooks.normalized(),
		log:      logger,
	}
}

func (u *notificationUC) HandlePaymentNotification(ctx context.Context, form url.Values, rawBody []byte, signature string) error {
	// Authentication gates everything: no parsing, no state mutation before it.
	if !u.verifier.Verify(signature, rawBody) {
		metrics.IncWebhook("payment", "rejected")
		return domain.NewPaymentViolation("Assinatura de notificação inválida")
	}

	transactionID := form.Get("transaction[id]")
	currentStatus := form.Get("current_status")
	if transactionID == "" || currentStatus == "" {
		return domain.ErrInvalidArgument
	}

	payment, err := u.payments.FindByTransactionID(ctx, repository.NoTX, transactionID)
	if errors.Is(err, domain.ErrNotFound) {
		// First contact for this transaction (e.g. the capture callback was
		// lost): rebuild the transaction from the flat fields and create the
		// payment before recording its status.
		payment, err = u.reconstructPayment(ctx, form, currentStatus)
		if err != nil {
			return err
		}
		metrics.IncWebhook("payment", "reconstructed")
		firePaymentListeners(ctx, u.log, u.hooks.PaymentListeners, payment.ID, currentStatus)
		return nil
	}
	if err != nil {
		return err
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return u.recordPaymentStatus(ctx, tx, payment.ID, currentStatus)
	})
	if err != nil {
		var tErr *domain.StatusTransitionError
		if errors.As(err, &tErr) {
			metrics.IncWebhook("payment", "stale")
			u.log.Info().Str("transaction_id", transactionID).Str("from", tErr.From).Str("to", tErr.To).Msg("out-of-order notification ignored")
		}
		return err
	}
	metrics.IncWebhook("payment", "recorded")
	firePaymentListeners(ctx, u.log, u.hooks.PaymentListeners, payment.ID, currentStatus)
	return nil
}

func (u *notificationUC) reconstructPayment(ctx context.Context, form url.Values, currentStatus string) (*model.Payment, error) {
	trans, err := model.TransactionFromNotificationForm(form)
	if err != nil {
		return nil, err
	}
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
		return u.payments.AppendNotification(ctx, tx, model.NewNotification(payment.ID, currentStatus))
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return u.payments.FindByTransactionID(ctx, repository.NoTX, trans.ID)
	}
	if err != nil {
		return nil, err
	}
	metrics.IncPayment(trans.PaymentMethod, currentStatus)
	metrics.AddPaymentRevenue(trans.PaymentMethod, payment.Amount)
	return payment, nil
}

func (u *notificationUC) recordPaymentStatus(ctx context.Context, tx repository.Tx, paymentID, status string) error {
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

func (u *notificationUC) HandleSubscriptionNotification(ctx context.Context, form url.Values, rawBody []byte, signature string) error {
	if !u.verifier.Verify(signature, rawBody) {
		metrics.IncWebhook("subscription", "rejected")
		return domain.NewPaymentViolation("Assinatura de notificação inválida")
	}

	subscriptionID := form.Get("subscription[id]")
	currentStatus := form.Get("current_status")
	if subscriptionID == "" || currentStatus == "" {
		return domain.ErrInvalidArgument
	}

	sub, err := u.subs.FindByGatewayID(ctx, repository.NoTX, subscriptionID)
	if err != nil {
		return err
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		lastStatus := ""
		last, err := u.subs.LastNotification(ctx, tx, sub.ID)
		if err == nil {
			lastStatus = last.Status
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := model.CheckSubscriptionTransition(lastStatus, currentStatus); err != nil {
			return err
		}
		if err := u.subs.AppendNotification(ctx, tx, model.NewSubscriptionNotification(sub.ID, currentStatus)); err != nil {
			return err
		}
		// Keep the cached column in lockstep with the event log.
		return u.subs.UpdateStatus(ctx, tx, sub.ID, currentStatus)
	})
	if err != nil {
		var tErr *domain.StatusTransitionError
		if errors.As(err, &tErr) {
			metrics.IncWebhook("subscription", "stale")
			u.log.Info().Str("subscription_id", subscriptionID).Str("from", tErr.From).Str("to", tErr.To).Msg("out-of-order notification ignored")
		}
		return err
	}
	metrics.IncWebhook("subscription", "recorded")
	fireSubscriptionListeners(ctx, u.log, u.hooks.SubscriptionListeners, sub.ID, currentStatus)
	return nil
}
