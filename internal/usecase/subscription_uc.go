// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
	"pagarme-checkout/internal/infra/metrics"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	// Register creates the local Subscription plus its opening Payment and
	// both initial notifications as one atomic unit. Registration is
	// idempotent per gateway subscription id.
	Register(ctx context.Context, gs *model.GatewaySubscription) (*model.Subscription, error)
	ListPlans(ctx context.Context) ([]*model.Plan, error)
	CreatePlan(ctx context.Context, gatewayPlanID, name string, amount int64, days, trialDays int, methods []string) (*model.Plan, error)
}

type subscriptionUC struct {
	plans    repository.PlanRepository
	subs     repository.SubscriptionRepository
	payments repository.PaymentRepository
	tm       repository.TransactionManager
	hooks    Hooks
	log      *zerolog.Logger
}

func NewSubscriptionUseCase(
	plans repository.PlanRepository,
	subs repository.SubscriptionRepository,
	payments repository.PaymentRepository,
	tm repository.TransactionManager,
	hooks Hooks,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{
		plans:    plans,
		subs:     subs,
		payments: payments,
		tm:       tm,
		hooks:    hooks.normalized(),
		log:      logger,
	}
}

func (u *subscriptionUC) Register(ctx context.Context, gs *model.GatewaySubscription) (*model.Subscription, error) {
	if gs == nil {
		return nil, domain.ErrInvalidArgument
	}
	if existing, err := u.subs.FindByGatewayID(ctx, repository.NoTX, gs.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	plan, err := u.plans.FindByGatewayID(ctx, repository.NoTX, gs.PlanID)
	if err != nil {
		return nil, err
	}

	sub, err := model.SubscriptionFromGateway(gs, plan)
	if err != nil {
		return nil, err
	}
	if userID, ok := u.hooks.UserFactory.UserForCustomer(ctx, gs.Customer); ok {
		sub.UserID = &userID
	}

	payment, err := model.PaymentForSubscription(&gs.CurrentTransaction, sub.ID)
	if err != nil {
		return nil, err
	}
	if payment.Amount < plan.Amount {
		return nil, domain.NewPaymentViolation(
			"Valor autorizado %d é menor que o valor do plano %d", payment.Amount, plan.Amount)
	}
	payment.UserID = sub.UserID

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		if err := u.payments.Save(ctx, tx, payment); err != nil {
			return err
		}
		if gs.CurrentTransaction.Status != "" {
			if err := u.payments.AppendNotification(ctx, tx, model.NewNotification(payment.ID, gs.CurrentTransaction.Status)); err != nil {
				return err
			}
		}
		return u.subs.AppendNotification(ctx, tx, model.NewSubscriptionNotification(sub.ID, gs.Status))
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return u.subs.FindByGatewayID(ctx, repository.NoTX, gs.ID)
	}
	if err != nil {
		return nil, err
	}

	metrics.IncPayment(payment.Method, gs.CurrentTransaction.Status)
	metrics.AddPaymentRevenue(payment.Method, payment.Amount)
	fireSubscriptionListeners(ctx, u.log, u.hooks.SubscriptionListeners, sub.ID, gs.Status)
	return sub, nil
}

func (u *subscriptionUC) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	return u.plans.ListAll(ctx, nil)
}

func (u *subscriptionUC) CreatePlan(ctx context.Context, gatewayPlanID, name string, amount int64, days, trialDays int, methods []string) (*model.Plan, error) {
	plan, err := model.NewPlan(gatewayPlanID, name, amount, days, trialDays, methods)
	if err != nil {
		return nil, err
	}
	if err := u.plans.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
