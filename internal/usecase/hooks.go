// File: internal/usecase/hooks.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"pagarme-checkout/internal/domain/ports/adapter"
)

// Hooks bundles the pluggable collaborators of the reconciliation flows.
// It is built once at process wiring time and passed explicitly; flows
// never consult mutable globals.
type Hooks struct {
	UserFactory           adapter.UserFactory
	Availability          adapter.AvailabilityStrategy
	PaymentListeners      []adapter.PaymentStatusListener
	SubscriptionListeners []adapter.SubscriptionStatusListener
}

func (h Hooks) normalized() Hooks {
	if h.UserFactory == nil {
		h.UserFactory = adapter.ImpossibleUserFactory{}
	}
	if h.Availability == nil {
		h.Availability = adapter.WindowAvailability
	}
	return h
}

// Listeners run synchronously after the persistence commit. A panicking
// listener must not propagate into an already-committed flow.
func firePaymentListeners(ctx context.Context, log *zerolog.Logger, listeners []adapter.PaymentStatusListener, paymentID, status string) {
	for _, l := range listeners {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("payment_id", paymentID).Msg("payment status listener panicked")
				}
			}()
			l.PaymentStatusChanged(ctx, paymentID, status)
		}()
	}
}

func fireSubscriptionListeners(ctx context.Context, log *zerolog.Logger, listeners []adapter.SubscriptionStatusListener, subscriptionID, status string) {
	for _, l := range listeners {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("subscription_id", subscriptionID).Msg("subscription status listener panicked")
				}
			}()
			l.SubscriptionStatusChanged(ctx, subscriptionID, status)
		}()
	}
}
