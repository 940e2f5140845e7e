package model

import (
	"time"

	"github.com/google/uuid"

	"pagarme-checkout/internal/domain"
)

// Subscription lifecycle statuses as reported by the gateway.
const (
	SubStatusTrialing       = "trialing"
	SubStatusPaid           = "paid"
	SubStatusUnpaid         = "unpaid"
	SubStatusPendingPayment = "pending_payment"
	SubStatusEnded          = "ended"
	SubStatusCanceled       = "canceled"
)

var allSubscriptionStatuses = []string{
	SubStatusTrialing, SubStatusPaid, SubStatusUnpaid,
	SubStatusPendingPayment, SubStatusEnded, SubStatusCanceled,
}

// Plan defines a recurring charge, the subscription analog of ItemConfig.
// GatewayPlanID is the id under which the plan is registered at the gateway.
type Plan struct {
	ID             string
	GatewayPlanID  string
	Name           string
	Amount         int64 // minor units per cycle
	Days           int   // cycle length
	TrialDays      int
	PaymentMethods []string
	CreatedAt      time.Time
}

// NewPlan validates and constructs a recurring plan.
func NewPlan(gatewayPlanID, name string, amount int64, days, trialDays int, methods []string) (*Plan, error) {
	if gatewayPlanID == "" || name == "" || amount <= 0 || days <= 0 || trialDays < 0 {
		return nil, domain.ErrInvalidArgument
	}
	for _, m := range methods {
		if m != MethodBoleto && m != MethodCreditCard {
			return nil, domain.ErrInvalidArgument
		}
	}
	return &Plan{
		ID:             uuid.NewString(),
		GatewayPlanID:  gatewayPlanID,
		Name:           name,
		Amount:         amount,
		Days:           days,
		TrialDays:      trialDays,
		PaymentMethods: methods,
		CreatedAt:      time.Now(),
	}, nil
}

// Subscription is one customer's enrollment in a Plan.
//
// Status is a cached last-known value kept for cheap listing; the source of
// truth is the latest SubscriptionNotification and both are written in the
// same transaction so they cannot drift.
type Subscription struct {
	ID                    string
	GatewaySubscriptionID string
	PlanID                string
	Status                string
	Method                string
	CardID                *string
	CardLastDigits        *string
	UserID                *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// SubscriptionFromGateway builds the (unpersisted) enrollment for a
// gateway-reported subscription, deriving card fields by payment method.
func SubscriptionFromGateway(gs *GatewaySubscription, plan *Plan) (*Subscription, error) {
	if gs == nil || gs.ID == "" || plan == nil {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	s := &Subscription{
		ID:                    uuid.NewString(),
		GatewaySubscriptionID: gs.ID,
		PlanID:                plan.ID,
		Status:                gs.Status,
		Method:                gs.PaymentMethod,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if gs.PaymentMethod == MethodCreditCard {
		if gs.CardID == "" {
			return nil, domain.ErrInvalidArgument
		}
		s.CardID = strPtr(gs.CardID)
		s.CardLastDigits = strPtr(gs.CardLastDigits)
	}
	return s, nil
}
