//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
)

type subscriptionFixture struct {
	plans    *mockPlanRepo
	subs     *mockSubscriptionRepo
	payments *mockPaymentRepo
	tm       *mockTxManager
}

func newSubscriptionFixture() *subscriptionFixture {
	plan, err := model.NewPlan("plan_dev_monthly", "Assinatura mensal", 2990, 30, 7, []string{model.MethodCreditCard})
	if err != nil {
		panic(err)
	}
	return &subscriptionFixture{
		plans: &mockPlanRepo{
			FindByGatewayIDFunc: func(ctx context.Context, tx repository.Tx, gatewayPlanID string) (*model.Plan, error) {
				if gatewayPlanID != plan.GatewayPlanID {
					return nil, domain.ErrNotFound
				}
				return plan, nil
			},
		},
		subs:     &mockSubscriptionRepo{},
		payments: &mockPaymentRepo{},
		tm:       &mockTxManager{},
	}
}

func (f *subscriptionFixture) uc() *subscriptionUC {
	return NewSubscriptionUseCase(f.plans, f.subs, f.payments, f.tm, Hooks{}, newTestLogger())
}

func gatewaySubscription(amount int64) *model.GatewaySubscription {
	return &model.GatewaySubscription{
		ID:             "sub-gw-1",
		Status:         model.SubStatusTrialing,
		PlanID:         "plan_dev_monthly",
		PaymentMethod:  model.MethodCreditCard,
		CardID:         "card_abc",
		CardLastDigits: "1111",
		CurrentTransaction: model.GatewayTransaction{
			ID:            "7656690",
			Status:        model.StatusAuthorized,
			PaymentMethod: model.MethodCreditCard,
			Amount:        amount,
			Installments:  1,
			CardID:        "card_abc",
		},
	}
}

func TestRegisterSavesEnrollmentAtomically(t *testing.T) {
	f := newSubscriptionFixture()

	var savedSub *model.Subscription
	var savedPayment *model.Payment
	var paymentNote *model.Notification
	var subNote *model.SubscriptionNotification
	var txs []repository.Tx

	f.subs.SaveFunc = func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
		savedSub = sub
		txs = append(txs, tx)
		return nil
	}
	f.payments.SaveFunc = func(ctx context.Context, tx repository.Tx, p *model.Payment) error {
		savedPayment = p
		txs = append(txs, tx)
		return nil
	}
	f.payments.AppendNotificationFunc = func(ctx context.Context, tx repository.Tx, n *model.Notification) error {
		paymentNote = n
		txs = append(txs, tx)
		return nil
	}
	f.subs.AppendNotificationFunc = func(ctx context.Context, tx repository.Tx, n *model.SubscriptionNotification) error {
		subNote = n
		txs = append(txs, tx)
		return nil
	}

	sub, err := f.uc().Register(context.Background(), gatewaySubscription(2990))

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sub.GatewaySubscriptionID != "sub-gw-1" || sub.Status != model.SubStatusTrialing {
		t.Errorf("unexpected subscription: %+v", sub)
	}
	if savedSub == nil || savedPayment == nil || paymentNote == nil || subNote == nil {
		t.Fatal("subscription, payment and both notifications must all be saved")
	}
	if savedPayment.SubscriptionID == nil || *savedPayment.SubscriptionID != savedSub.ID {
		t.Error("opening payment must reference the subscription")
	}
	if paymentNote.Status != model.StatusAuthorized || subNote.Status != model.SubStatusTrialing {
		t.Errorf("unexpected initial statuses: payment=%q sub=%q", paymentNote.Status, subNote.Status)
	}
	for i, tx := range txs {
		if tx != txs[0] {
			t.Fatalf("write %d ran in a different transaction", i)
		}
	}
}

func TestRegisterIsIdempotentPerGatewayID(t *testing.T) {
	f := newSubscriptionFixture()
	existing := &model.Subscription{ID: "sub-1", GatewaySubscriptionID: "sub-gw-1", Status: model.SubStatusPaid}
	f.subs.FindByGatewayIDFunc = func(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
		return existing, nil
	}
	planLooked := false
	f.plans.FindByGatewayIDFunc = func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
		planLooked = true
		return nil, domain.ErrNotFound
	}

	sub, err := f.uc().Register(context.Background(), gatewaySubscription(2990))

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sub != existing {
		t.Error("an already-registered subscription must be returned as is")
	}
	if planLooked {
		t.Error("replay must not re-validate the plan")
	}
}

func TestRegisterRejectsUnderpaidPlan(t *testing.T) {
	f := newSubscriptionFixture()

	_, err := f.uc().Register(context.Background(), gatewaySubscription(1990))

	var violation *domain.PaymentViolation
	if !errors.As(err, &violation) {
		t.Fatalf("expected PaymentViolation, got %v", err)
	}
	want := "Valor autorizado 1990 é menor que o valor do plano 2990"
	if violation.Msg != want {
		t.Errorf("expected %q, got %q", want, violation.Msg)
	}
}

func TestRegisterRejectsUnknownPlan(t *testing.T) {
	f := newSubscriptionFixture()
	gs := gatewaySubscription(2990)
	gs.PlanID = "plan_missing"

	_, err := f.uc().Register(context.Background(), gs)

	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterRecoversFromConcurrentRegistration(t *testing.T) {
	f := newSubscriptionFixture()
	existing := &model.Subscription{ID: "sub-1", GatewaySubscriptionID: "sub-gw-1", Status: model.SubStatusTrialing}

	lookups := 0
	f.subs.FindByGatewayIDFunc = func(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
		lookups++
		if lookups == 1 {
			return nil, domain.ErrNotFound
		}
		return existing, nil
	}
	f.subs.SaveFunc = func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
		return domain.ErrAlreadyExists
	}

	sub, err := f.uc().Register(context.Background(), gatewaySubscription(2990))

	if err != nil {
		t.Fatalf("expected the race to be recovered, got %v", err)
	}
	if sub != existing {
		t.Error("expected the winner's subscription back")
	}
}

func TestCreatePlanValidatesArguments(t *testing.T) {
	f := newSubscriptionFixture()
	saved := false
	f.plans.SaveFunc = func(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
		saved = true
		return nil
	}

	if _, err := f.uc().CreatePlan(context.Background(), "", "Mensal", 2990, 30, 7, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if saved {
		t.Error("an invalid plan must not be saved")
	}

	plan, err := f.uc().CreatePlan(context.Background(), "plan_x", "Mensal", 2990, 30, 7, []string{model.MethodCreditCard})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if plan.GatewayPlanID != "plan_x" || !saved {
		t.Errorf("plan not persisted: %+v", plan)
	}
}
