package repository

import (
	"context"

	"pagarme-checkout/internal/domain/model"
)

// -----------------------------
// Recurring plans + subscriptions
// -----------------------------

type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	FindByGatewayID(ctx context.Context, tx Tx, gatewayPlanID string) (*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
}

type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindByGatewayID(ctx context.Context, tx Tx, gatewaySubscriptionID string) (*model.Subscription, error)
	// UpdateStatus refreshes the cached status column; callers must do this
	// in the same transaction that appends the matching notification.
	UpdateStatus(ctx context.Context, tx Tx, id string, status string) error

	AppendNotification(ctx context.Context, tx Tx, n *model.SubscriptionNotification) error
	LastNotification(ctx context.Context, tx Tx, subscriptionID string) (*model.SubscriptionNotification, error)
	ListNotifications(ctx context.Context, tx Tx, subscriptionID string) ([]*model.SubscriptionNotification, error)
}

type UserProfileRepository interface {
	Upsert(ctx context.Context, tx Tx, profile *model.UserPaymentProfile) error
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.UserPaymentProfile, error)
}
