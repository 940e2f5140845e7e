package adapter

import (
	"context"
	"time"

	"pagarme-checkout/internal/domain/model"
)

// UserFactory provisions (or resolves) a local user for the customer
// reported by the gateway. Provisioning being impossible is a routine
// branch, not an error: implementations return ok=false and the payment
// proceeds unassociated.
type UserFactory interface {
	UserForCustomer(ctx context.Context, customer model.GatewayCustomer) (userID string, ok bool)
}

// ImpossibleUserFactory is the default: it never provisions anyone.
type ImpossibleUserFactory struct{}

func (ImpossibleUserFactory) UserForCustomer(context.Context, model.GatewayCustomer) (string, bool) {
	return "", false
}

// PaymentStatusListener is notified after a status notification has been
// committed for a payment. Listeners run synchronously, after the
// transaction boundary, and are isolated: a panicking listener is logged
// and does not affect the flow.
type PaymentStatusListener interface {
	PaymentStatusChanged(ctx context.Context, paymentID string, status string)
}

// SubscriptionStatusListener mirrors PaymentStatusListener for
// subscriptions.
type SubscriptionStatusListener interface {
	SubscriptionStatusChanged(ctx context.Context, subscriptionID string, status string)
}

// AvailabilityStrategy decides whether an item can be sold now. The default
// enforces the item's configured availability window.
type AvailabilityStrategy func(item *model.ItemConfig, now time.Time) bool

// WindowAvailability is the default AvailabilityStrategy.
func WindowAvailability(item *model.ItemConfig, now time.Time) bool {
	return item.AvailableAt(now)
}
