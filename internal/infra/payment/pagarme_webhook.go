package payment

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"pagarme-checkout/internal/domain/ports/adapter"
)

var _ adapter.WebhookVerifier = (*PagarmeWebhookVerifier)(nil)

// PagarmeWebhookVerifier checks the X-Hub-Signature header Pagar.me sends
// with every postback: "sha1=" followed by the hex HMAC-SHA1 of the raw
// request body, keyed with the account api key.
type PagarmeWebhookVerifier struct {
	apiKey string
}

func NewPagarmeWebhookVerifier(apiKey string) *PagarmeWebhookVerifier {
	return &PagarmeWebhookVerifier{apiKey: apiKey}
}

// Verify reports whether expectedSignature matches rawBody. An empty
// signature or any mismatch fails closed.
func (v *PagarmeWebhookVerifier) Verify(expectedSignature string, rawBody []byte) bool {
	sig := strings.TrimPrefix(expectedSignature, "sha1=")
	if sig == "" {
		return false
	}
	want, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	h := hmac.New(sha1.New, []byte(v.apiKey))
	h.Write(rawBody)
	return hmac.Equal(h.Sum(nil), want)
}
