//go:build !integration

package web

import (
	"context"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"

	"pagarme-checkout/internal/domain/model"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

// --- Use case mocks with overridable functions ---

type mockCheckoutUC struct {
	CaptureFunc func(ctx context.Context, token string) (*model.Payment, error)
}

func (m *mockCheckoutUC) Capture(ctx context.Context, token string) (*model.Payment, error) {
	return m.CaptureFunc(ctx, token)
}

type mockCatalogUC struct {
	AvailableItemFunc func(ctx context.Context, slug string) (*model.ItemConfig, error)
	PaymentPlansFunc  func(ctx context.Context, slug string) (*model.ItemConfig, []model.PaymentPlan, error)
	ProfileFunc       func(ctx context.Context, userID string) (*model.UserPaymentProfile, error)
	CreateConfigFunc  func(ctx context.Context, name string, maxInstallments, defaultInstallment, freeInstallment int, interestRate float64, methods []string) (*model.FormConfig, error)
	CreateItemFunc    func(ctx context.Context, slug, name string, price int64, tangible bool, configID string, availableFrom, availableUntil *time.Time) (*model.ItemConfig, error)
	ListItemsFunc     func(ctx context.Context) ([]*model.ItemConfig, error)
}

func (m *mockCatalogUC) AvailableItem(ctx context.Context, slug string) (*model.ItemConfig, error) {
	return m.AvailableItemFunc(ctx, slug)
}
func (m *mockCatalogUC) PaymentPlans(ctx context.Context, slug string) (*model.ItemConfig, []model.PaymentPlan, error) {
	return m.PaymentPlansFunc(ctx, slug)
}
func (m *mockCatalogUC) Profile(ctx context.Context, userID string) (*model.UserPaymentProfile, error) {
	return m.ProfileFunc(ctx, userID)
}
func (m *mockCatalogUC) CreateConfig(ctx context.Context, name string, maxInstallments, defaultInstallment, freeInstallment int, interestRate float64, methods []string) (*model.FormConfig, error) {
	return m.CreateConfigFunc(ctx, name, maxInstallments, defaultInstallment, freeInstallment, interestRate, methods)
}
func (m *mockCatalogUC) CreateItem(ctx context.Context, slug, name string, price int64, tangible bool, configID string, availableFrom, availableUntil *time.Time) (*model.ItemConfig, error) {
	return m.CreateItemFunc(ctx, slug, name, price, tangible, configID, availableFrom, availableUntil)
}
func (m *mockCatalogUC) ListItems(ctx context.Context) ([]*model.ItemConfig, error) {
	return m.ListItemsFunc(ctx)
}

type mockNotificationUC struct {
	HandlePaymentNotificationFunc      func(ctx context.Context, form url.Values, rawBody []byte, signature string) error
	HandleSubscriptionNotificationFunc func(ctx context.Context, form url.Values, rawBody []byte, signature string) error
}

func (m *mockNotificationUC) HandlePaymentNotification(ctx context.Context, form url.Values, rawBody []byte, signature string) error {
	return m.HandlePaymentNotificationFunc(ctx, form, rawBody, signature)
}
func (m *mockNotificationUC) HandleSubscriptionNotification(ctx context.Context, form url.Values, rawBody []byte, signature string) error {
	return m.HandleSubscriptionNotificationFunc(ctx, form, rawBody, signature)
}

type mockSubscriptionUC struct {
	RegisterFunc   func(ctx context.Context, gs *model.GatewaySubscription) (*model.Subscription, error)
	ListPlansFunc  func(ctx context.Context) ([]*model.Plan, error)
	CreatePlanFunc func(ctx context.Context, gatewayPlanID, name string, amount int64, days, trialDays int, methods []string) (*model.Plan, error)
}

func (m *mockSubscriptionUC) Register(ctx context.Context, gs *model.GatewaySubscription) (*model.Subscription, error) {
	return m.RegisterFunc(ctx, gs)
}
func (m *mockSubscriptionUC) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	return m.ListPlansFunc(ctx)
}
func (m *mockSubscriptionUC) CreatePlan(ctx context.Context, gatewayPlanID, name string, amount int64, days, trialDays int, methods []string) (*model.Plan, error) {
	return m.CreatePlanFunc(ctx, gatewayPlanID, name, amount, days, trialDays, methods)
}

type mockStatsUC struct {
	RevenueFunc func(ctx context.Context) (int64, int64, int64, error)
}

func (m *mockStatsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	return m.RevenueFunc(ctx)
}
