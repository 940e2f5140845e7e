package model

import (
	"time"

	"github.com/google/uuid"

	"pagarme-checkout/internal/domain"
)

// Payment lifecycle statuses as reported by the gateway.
const (
	StatusProcessing     = "processing"
	StatusAuthorized     = "authorized"
	StatusPaid           = "paid"
	StatusRefunded       = "refunded"
	StatusPendingRefund  = "pending_refund"
	StatusWaitingPayment = "waiting_payment"
	StatusRefused        = "refused"
)

// Payment records one captured or attempted gateway transaction.
// TransactionID is the gateway's id and is globally unique; it doubles as
// the idempotency key for capture and webhook flows. The current lifecycle
// status is not stored here: it is derived from the latest appended
// notification.
type Payment struct {
	ID             string // UUID
	TransactionID  string
	Method         string // boleto | credit_card
	Amount         int64  // authorized amount, minor units
	CardID         *string
	CardLastDigits *string
	BoletoURL      *string
	BoletoBarcode  *string
	Installments   int
	UserID         *string
	SubscriptionID *string
	ItemSlugs      []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PaymentFromTransaction validates a gateway transaction against the
// configured catalog items and builds the normalized (unpersisted) Payment.
// items must be the matched ItemConfig for each transaction item, in order.
// It is the financial-integrity guard: any discrepancy that would let a
// tampered client payload result in an underpriced charge is rejected with
// a PaymentViolation.
func PaymentFromTransaction(trans *GatewayTransaction, items []*ItemConfig) (*Payment, error) {
	if trans == nil || len(trans.Items) == 0 || len(items) != len(trans.Items) {
		return nil, domain.ErrInvalidArgument
	}

	// All items of one transaction are assumed to share the first item's
	// FormConfig; mixed configs are not cross-validated.
	config := items[0].Config

	var itemsTotal int64
	for i, reported := range trans.Items {
		item := items[i]
		if reported.UnitPrice < item.Price {
			return nil, domain.NewPaymentViolation(
				"Valor de item %d é menor que o esperado %d", reported.UnitPrice, item.Price)
		}
		itemsTotal += item.Price
	}

	if itemsTotal > trans.Amount {
		return nil, domain.NewPaymentViolation(
			"Valor autorizado %d é menor que a soma dos itens %d", trans.Amount, itemsTotal)
	}
	if trans.Installments > config.MaxInstallments {
		return nil, domain.NewPaymentViolation(
			"Parcelamento em %d vezes excede o máximo %d", trans.Installments, config.MaxInstallments)
	}

	// The gateway applies its own ceiling rounding, which can differ from
	// ours by at most one minor unit.
	expected := config.CalculateAmount(itemsTotal, trans.Installments)
	if trans.Amount < expected-1 {
		return nil, domain.NewPaymentViolation(
			"Valor autorizado %d é menor que o esperado %d", trans.Amount, expected)
	}

	now := time.Now()
	p := &Payment{
		ID:            uuid.NewString(),
		TransactionID: trans.ID,
		Method:        trans.PaymentMethod,
		Amount:        trans.Amount,
		Installments:  max(trans.Installments, 1),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, item := range items {
		p.ItemSlugs = append(p.ItemSlugs, item.Slug)
	}
	switch trans.PaymentMethod {
	case MethodCreditCard:
		if trans.CardID == "" {
			return nil, domain.ErrInvalidArgument
		}
		p.CardID = strPtr(trans.CardID)
		p.CardLastDigits = strPtr(trans.CardLastDigits)
	case MethodBoleto:
		// Boleto URL/barcode stay empty until capture confirms them.
		if trans.BoletoURL != "" {
			p.BoletoURL = strPtr(trans.BoletoURL)
		}
		if trans.BoletoBarcode != "" {
			p.BoletoBarcode = strPtr(trans.BoletoBarcode)
		}
	default:
		return nil, domain.ErrInvalidArgument
	}
	if trans.SubscriptionID != "" {
		p.SubscriptionID = strPtr(trans.SubscriptionID)
	}
	return p, nil
}

// PaymentForSubscription builds the initial Payment opening a subscription.
// Subscription charges are priced by the plan, not by catalog items, so no
// item validation applies here; the caller checks the amount against the
// plan before persisting.
func PaymentForSubscription(trans *GatewayTransaction, subscriptionID string) (*Payment, error) {
	if trans == nil || trans.ID == "" || subscriptionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	p := &Payment{
		ID:             uuid.NewString(),
		TransactionID:  trans.ID,
		Method:         trans.PaymentMethod,
		Amount:         trans.Amount,
		Installments:   max(trans.Installments, 1),
		SubscriptionID: strPtr(subscriptionID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	switch trans.PaymentMethod {
	case MethodCreditCard:
		if trans.CardID == "" {
			return nil, domain.ErrInvalidArgument
		}
		p.CardID = strPtr(trans.CardID)
		p.CardLastDigits = strPtr(trans.CardLastDigits)
	case MethodBoleto:
		if trans.BoletoURL != "" {
			p.BoletoURL = strPtr(trans.BoletoURL)
		}
		if trans.BoletoBarcode != "" {
			p.BoletoBarcode = strPtr(trans.BoletoBarcode)
		}
	default:
		return nil, domain.ErrInvalidArgument
	}
	return p, nil
}

func strPtr(s string) *string { return &s }
