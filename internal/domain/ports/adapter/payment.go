package adapter

import (
	"context"

	"pagarme-checkout/internal/domain/model"
)

// PaymentGateway is the outbound seam to the payment provider. Request and
// response shapes follow the provider's transaction contract; only the
// operations the reconciliation flows need are exposed.
type PaymentGateway interface {
	Name() string
	// FindTransaction fetches the transaction a checkout token refers to.
	FindTransaction(ctx context.Context, token string) (*model.GatewayTransaction, error)
	// Capture finalizes a previously authorized transaction, triggering
	// settlement, and returns the gateway's post-capture view of it.
	Capture(ctx context.Context, token string, amount int64) (*model.GatewayTransaction, error)
}

// WebhookVerifier authenticates an inbound webhook: the signature header
// against the raw, unparsed request body. It must run before any parsing of
// the payload and must fail closed on any mismatch.
type WebhookVerifier interface {
	Verify(expectedSignature string, rawBody []byte) bool
}
