//go:build !integration

package usecase

import (
	"context"
	"os"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

// --- Transaction manager mock ---

// txSentinel stands in for the pgx transaction handle so tests can assert
// which repository calls ran inside the transactional scope.
type txSentinel struct{}

type mockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, txSentinel{})
}

// --- Repository mocks with overridable functions ---
// Unset finders report ErrNotFound and unset writers succeed, so each test
// overrides only the calls it cares about.

type mockItemRepo struct {
	SaveConfigFunc func(ctx context.Context, tx repository.Tx, cfg *model.FormConfig) error
	SaveFunc       func(ctx context.Context, tx repository.Tx, item *model.ItemConfig) error
	FindBySlugFunc func(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error)
	ListAllFunc    func(ctx context.Context, tx repository.Tx) ([]*model.ItemConfig, error)
}

func (m *mockItemRepo) SaveConfig(ctx context.Context, tx repository.Tx, cfg *model.FormConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, tx, cfg)
	}
	return nil
}
func (m *mockItemRepo) Save(ctx context.Context, tx repository.Tx, item *model.ItemConfig) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, item)
	}
	return nil
}
func (m *mockItemRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.ItemConfig, error) {
	if m.FindBySlugFunc != nil {
		return m.FindBySlugFunc(ctx, tx, slug)
	}
	return nil, domain.ErrNotFound
}
func (m *mockItemRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ItemConfig, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, tx)
	}
	return nil, nil
}

type mockPaymentRepo struct {
	SaveFunc                func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	FindByIDFunc            func(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error)
	FindByTransactionIDFunc func(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error)
	UpdateBoletoFieldsFunc  func(ctx context.Context, tx repository.Tx, id string, boletoURL, boletoBarcode string) error
	AppendNotificationFunc  func(ctx context.Context, tx repository.Tx, n *model.Notification) error
	LastNotificationFunc    func(ctx context.Context, tx repository.Tx, paymentID string) (*model.Notification, error)
	ListNotificationsFunc   func(ctx context.Context, tx repository.Tx, paymentID string) ([]*model.Notification, error)
	SumPaidByPeriodFunc     func(ctx context.Context, tx repository.Tx, period string) (int64, error)
}

func (m *mockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	return nil
}
func (m *mockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPaymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	if m.FindByTransactionIDFunc != nil {
		return m.FindByTransactionIDFunc(ctx, tx, transactionID)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPaymentRepo) UpdateBoletoFields(ctx context.Context, tx repository.Tx, id string, boletoURL, boletoBarcode string) error {
	if m.UpdateBoletoFieldsFunc != nil {
		return m.UpdateBoletoFieldsFunc(ctx, tx, id, boletoURL, boletoBarcode)
	}
	return nil
}
func (m *mockPaymentRepo) AppendNotification(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	if m.AppendNotificationFunc != nil {
		return m.AppendNotificationFunc(ctx, tx, n)
	}
	return nil
}
func (m *mockPaymentRepo) LastNotification(ctx context.Context, tx repository.Tx, paymentID string) (*model.Notification, error) {
	if m.LastNotificationFunc != nil {
		return m.LastNotificationFunc(ctx, tx, paymentID)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPaymentRepo) ListNotifications(ctx context.Context, tx repository.Tx, paymentID string) ([]*model.Notification, error) {
	if m.ListNotificationsFunc != nil {
		return m.ListNotificationsFunc(ctx, tx, paymentID)
	}
	return nil, nil
}
func (m *mockPaymentRepo) SumPaidByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	if m.SumPaidByPeriodFunc != nil {
		return m.SumPaidByPeriodFunc(ctx, tx, period)
	}
	return 0, nil
}

type mockPlanRepo struct {
	SaveFunc            func(ctx context.Context, tx repository.Tx, plan *model.Plan) error
	FindByIDFunc        func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error)
	FindByGatewayIDFunc func(ctx context.Context, tx repository.Tx, gatewayPlanID string) (*model.Plan, error)
	ListAllFunc         func(ctx context.Context, tx repository.Tx) ([]*model.Plan, error)
}

func (m *mockPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, plan)
	}
	return nil
}
func (m *mockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPlanRepo) FindByGatewayID(ctx context.Context, tx repository.Tx, gatewayPlanID string) (*model.Plan, error) {
	if m.FindByGatewayIDFunc != nil {
		return m.FindByGatewayIDFunc(ctx, tx, gatewayPlanID)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, tx)
	}
	return nil, nil
}

type mockSubscriptionRepo struct {
	SaveFunc               func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
	FindByGatewayIDFunc    func(ctx context.Context, tx repository.Tx, gatewaySubscriptionID string) (*model.Subscription, error)
	UpdateStatusFunc       func(ctx context.Context, tx repository.Tx, id string, status string) error
	AppendNotificationFunc func(ctx context.Context, tx repository.Tx, n *model.SubscriptionNotification) error
	LastNotificationFunc   func(ctx context.Context, tx repository.Tx, subscriptionID string) (*model.SubscriptionNotification, error)
	ListNotificationsFunc  func(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.SubscriptionNotification, error)
}

func (m *mockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, sub)
	}
	return nil
}
func (m *mockSubscriptionRepo) FindByGatewayID(ctx context.Context, tx repository.Tx, gatewaySubscriptionID string) (*model.Subscription, error) {
	if m.FindByGatewayIDFunc != nil {
		return m.FindByGatewayIDFunc(ctx, tx, gatewaySubscriptionID)
	}
	return nil, domain.ErrNotFound
}
func (m *mockSubscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status)
	}
	return nil
}
func (m *mockSubscriptionRepo) AppendNotification(ctx context.Context, tx repository.Tx, n *model.SubscriptionNotification) error {
	if m.AppendNotificationFunc != nil {
		return m.AppendNotificationFunc(ctx, tx, n)
	}
	return nil
}
func (m *mockSubscriptionRepo) LastNotification(ctx context.Context, tx repository.Tx, subscriptionID string) (*model.SubscriptionNotification, error) {
	if m.LastNotificationFunc != nil {
		return m.LastNotificationFunc(ctx, tx, subscriptionID)
	}
	return nil, domain.ErrNotFound
}
func (m *mockSubscriptionRepo) ListNotifications(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.SubscriptionNotification, error) {
	if m.ListNotificationsFunc != nil {
		return m.ListNotificationsFunc(ctx, tx, subscriptionID)
	}
	return nil, nil
}

type mockProfileRepo struct {
	UpsertFunc       func(ctx context.Context, tx repository.Tx, profile *model.UserPaymentProfile) error
	FindByUserIDFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.UserPaymentProfile, error)
}

func (m *mockProfileRepo) Upsert(ctx context.Context, tx repository.Tx, profile *model.UserPaymentProfile) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, profile)
	}
	return nil
}
func (m *mockProfileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserPaymentProfile, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, tx, userID)
	}
	return nil, domain.ErrNotFound
}

// --- Adapter mocks ---

type mockGateway struct {
	FindTransactionFunc func(ctx context.Context, token string) (*model.GatewayTransaction, error)
	CaptureFunc         func(ctx context.Context, token string, amount int64) (*model.GatewayTransaction, error)
}

func (m *mockGateway) Name() string { return "mock" }
func (m *mockGateway) FindTransaction(ctx context.Context, token string) (*model.GatewayTransaction, error) {
	return m.FindTransactionFunc(ctx, token)
}
func (m *mockGateway) Capture(ctx context.Context, token string, amount int64) (*model.GatewayTransaction, error) {
	return m.CaptureFunc(ctx, token, amount)
}

type mockVerifier struct {
	VerifyFunc func(expectedSignature string, rawBody []byte) bool
}

func (m *mockVerifier) Verify(expectedSignature string, rawBody []byte) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(expectedSignature, rawBody)
	}
	return true
}

// recordingPaymentListener captures each status-changed call; with panics
// set it blows up after recording, to exercise listener isolation.
type recordingPaymentListener struct {
	calls  []string
	panics bool
}

func (l *recordingPaymentListener) PaymentStatusChanged(ctx context.Context, paymentID, status string) {
	l.calls = append(l.calls, paymentID+":"+status)
	if l.panics {
		panic("listener failure")
	}
}
