package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*PagarmeGateway)(nil)

// PagarmeGateway talks to the Pagar.me v1 REST API over plain HTTP calls.
type PagarmeGateway struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewPagarmeGateway(apiKey, baseURL string) *PagarmeGateway {
	return &PagarmeGateway{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *PagarmeGateway) Name() string { return "pagarme" }

// pagarmeTransaction mirrors the relevant slice of the v1 transaction object.
type pagarmeTransaction struct {
	ID             json.Number `json:"id"`
	Status         string      `json:"status"`
	PaymentMethod  string      `json:"payment_method"`
	Amount         int64       `json:"authorized_amount"`
	Installments   int         `json:"installments"`
	BoletoURL      string      `json:"boleto_url"`
	BoletoBarcode  string      `json:"boleto_barcode"`
	SubscriptionID json.Number `json:"subscription_id"`
	Card           struct {
		ID         string `json:"id"`
		LastDigits string `json:"last_digits"`
	} `json:"card"`
	Customer struct {
		ExternalID   string   `json:"external_id"`
		Name         string   `json:"name"`
		Email        string   `json:"email"`
		PhoneNumbers []string `json:"phone_numbers"`
		Documents    []struct {
			Number string `json:"number"`
		} `json:"documents"`
	} `json:"customer"`
	Billing struct {
		Address struct {
			Street        string `json:"street"`
			StreetNumber  string `json:"street_number"`
			Complementary string `json:"complementary"`
			Neighborhood  string `json:"neighborhood"`
			City          string `json:"city"`
			State         string `json:"state"`
			Zipcode       string `json:"zipcode"`
		} `json:"address"`
	} `json:"billing"`
	Items []struct {
		ID        string `json:"id"`
		UnitPrice int64  `json:"unit_price"`
	} `json:"items"`
}

func (t *pagarmeTransaction) toModel() *model.GatewayTransaction {
	out := &model.GatewayTransaction{
		ID:             t.ID.String(),
		Status:         t.Status,
		PaymentMethod:  t.PaymentMethod,
		Amount:         t.Amount,
		Installments:   t.Installments,
		CardID:         t.Card.ID,
		CardLastDigits: t.Card.LastDigits,
		BoletoURL:      t.BoletoURL,
		BoletoBarcode:  t.BoletoBarcode,
		Customer: model.GatewayCustomer{
			ExternalID: t.Customer.ExternalID,
			Name:       t.Customer.Name,
			Email:      t.Customer.Email,
		},
		Billing: model.GatewayAddress{
			Street:        t.Billing.Address.Street,
			StreetNumber:  t.Billing.Address.StreetNumber,
			Complementary: t.Billing.Address.Complementary,
			Neighborhood:  t.Billing.Address.Neighborhood,
			City:          t.Billing.Address.City,
			State:         t.Billing.Address.State,
			Zipcode:       t.Billing.Address.Zipcode,
		},
	}
	if s := t.SubscriptionID.String(); s != "" && s != "null" {
		out.SubscriptionID = s
	}
	if len(t.Customer.PhoneNumbers) > 0 {
		out.Customer.Phone = t.Customer.PhoneNumbers[0]
	}
	if len(t.Customer.Documents) > 0 {
		out.Customer.Document = t.Customer.Documents[0].Number
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, model.GatewayItem{Slug: it.ID, UnitPrice: it.UnitPrice})
	}
	return out
}

// FindTransaction implements adapter.PaymentGateway.FindTransaction.
func (g *PagarmeGateway) FindTransaction(ctx context.Context, token string) (*model.GatewayTransaction, error) {
	url := fmt.Sprintf("%s/transactions/%s?api_key=%s", g.baseURL, token, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return g.doTransaction(req)
}

// Capture implements adapter.PaymentGateway.Capture. Amount is in minor units
// and must match the authorized amount of the transaction.
func (g *PagarmeGateway) Capture(ctx context.Context, token string, amount int64) (*model.GatewayTransaction, error) {
	body := map[string]any{
		"api_key": g.apiKey,
		"amount":  strconv.FormatInt(amount, 10),
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal capture body: %w", err)
	}
	url := fmt.Sprintf("%s/transactions/%s/capture", g.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return g.doTransaction(req)
}

func (g *PagarmeGateway) doTransaction(req *http.Request) (*model.GatewayTransaction, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pagarme error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var pt pagarmeTransaction
	if err := json.Unmarshal(body, &pt); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w, body: %s", err, string(body))
	}
	return pt.toModel(), nil
}
