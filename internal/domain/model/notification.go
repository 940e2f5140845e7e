package model

import (
	"time"

	"github.com/oklog/ulid/v2"

	"pagarme-checkout/internal/domain"
)

// Notification is one immutable status observation for a payment. Rows are
// append-only and ordered by creation; the most recent one defines the
// payment's current status. ULIDs keep ids time-ordered, matching the
// event-log reading order.
type Notification struct {
	ID        string
	PaymentID string
	Status    string
	CreatedAt time.Time
}

func NewNotification(paymentID, status string) *Notification {
	return &Notification{
		ID:        ulid.Make().String(),
		PaymentID: paymentID,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// SubscriptionNotification mirrors Notification for subscriptions.
type SubscriptionNotification struct {
	ID             string
	SubscriptionID string
	Status         string
	CreatedAt      time.Time
}

func NewSubscriptionNotification(subscriptionID, status string) *SubscriptionNotification {
	return &SubscriptionNotification{
		ID:             ulid.Make().String(),
		SubscriptionID: subscriptionID,
		Status:         status,
		CreatedAt:      time.Now(),
	}
}

// paymentImpossibleStates maps the last recorded status to the statuses that
// are illegal to receive next. An empty last status (no notification yet)
// accepts anything. For "authorized" the stricter of the two upstream
// variants is enforced: same-state repeats plus regressions to the terminal
// failure states.
var paymentImpossibleStates = map[string][]string{
	StatusProcessing:     {StatusProcessing},
	StatusAuthorized:     {StatusAuthorized, StatusRefunded, StatusRefused},
	StatusPaid:           {StatusPaid, StatusAuthorized, StatusWaitingPayment},
	StatusRefunded:       {StatusRefunded, StatusAuthorized, StatusPaid, StatusWaitingPayment},
	StatusPendingRefund:  {StatusPendingRefund, StatusPaid, StatusWaitingPayment, StatusAuthorized},
	StatusWaitingPayment: {StatusWaitingPayment},
	StatusRefused:        {StatusRefused},
}

// CheckPaymentTransition returns a StatusTransitionError when moving from
// lastStatus to nextStatus would contradict the payment's history.
func CheckPaymentTransition(lastStatus, nextStatus string) error {
	for _, s := range paymentImpossibleStates[lastStatus] {
		if s == nextStatus {
			return &domain.StatusTransitionError{From: lastStatus, To: nextStatus}
		}
	}
	return nil
}

// subscriptionImpossibleStates is the subscription analog. The terminal
// states reject everything; trialing can only be entered from the initial
// empty state.
var subscriptionImpossibleStates = map[string][]string{
	SubStatusTrialing:       {SubStatusTrialing},
	SubStatusPaid:           {SubStatusPaid, SubStatusTrialing},
	SubStatusUnpaid:         {SubStatusUnpaid, SubStatusTrialing},
	SubStatusPendingPayment: {SubStatusPendingPayment, SubStatusTrialing},
	SubStatusEnded:          allSubscriptionStatuses,
	SubStatusCanceled:       allSubscriptionStatuses,
}

// CheckSubscriptionTransition is CheckPaymentTransition for subscriptions.
func CheckSubscriptionTransition(lastStatus, nextStatus string) error {
	for _, s := range subscriptionImpossibleStates[lastStatus] {
		if s == nextStatus {
			return &domain.StatusTransitionError{From: lastStatus, To: nextStatus}
		}
	}
	return nil
}
