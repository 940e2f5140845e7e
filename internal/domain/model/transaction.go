package model

import (
	"fmt"
	"net/url"
	"strconv"

	"pagarme-checkout/internal/domain"
)

// GatewayTransaction is the immutable, strongly-typed projection of one
// gateway-reported transaction. It is constructed exactly once at the trust
// boundary (gateway API response or webhook form) and consumed as-is by the
// validator and the orchestrator.
type GatewayTransaction struct {
	ID             string
	Status         string
	PaymentMethod  string
	Amount         int64 // authorized_amount in minor units
	Installments   int
	CardID         string
	CardLastDigits string
	BoletoURL      string
	BoletoBarcode  string
	SubscriptionID string
	Customer       GatewayCustomer
	Billing        GatewayAddress
	Items          []GatewayItem
}

// GatewayItem is one purchased item as reported by the gateway. The item id
// echoes the catalog slug.
type GatewayItem struct {
	Slug      string
	UnitPrice int64
}

type GatewayCustomer struct {
	ExternalID string
	Name       string
	Email      string
	Document   string
	Phone      string
}

type GatewayAddress struct {
	Street        string
	StreetNumber  string
	Complementary string
	Neighborhood  string
	City          string
	State         string
	Zipcode       string
}

// GatewaySubscription is the gateway's recurring-billing record: the
// enrollment itself plus the transaction that opened it.
type GatewaySubscription struct {
	ID                 string
	Status             string
	PlanID             string
	PaymentMethod      string
	CardID             string
	CardLastDigits     string
	CurrentTransaction GatewayTransaction
	Customer           GatewayCustomer
}

// TransactionFromNotificationForm rebuilds a GatewayTransaction from the
// flat `transaction[...]`-prefixed fields of a webhook body. It is a pure
// mapping producing the same value type the gateway API path produces, so
// the downstream validator sees one shape regardless of origin.
func TransactionFromNotificationForm(form url.Values) (*GatewayTransaction, error) {
	get := func(key string) string { return form.Get("transaction[" + key + "]") }

	id := get("id")
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	amount, err := formInt(get("authorized_amount"))
	if err != nil {
		return nil, err
	}
	installments, err := formInt(get("installments"))
	if err != nil {
		return nil, err
	}

	t := &GatewayTransaction{
		ID:             id,
		Status:         form.Get("current_status"),
		PaymentMethod:  get("payment_method"),
		Amount:         amount,
		Installments:   int(installments),
		CardID:         get("card[id]"),
		CardLastDigits: get("card[last_digits]"),
		BoletoURL:      get("boleto_url"),
		BoletoBarcode:  get("boleto_barcode"),
		SubscriptionID: get("subscription_id"),
		Customer: GatewayCustomer{
			ExternalID: get("customer[external_id]"),
			Name:       get("customer[name]"),
			Email:      get("customer[email]"),
			Document:   get("customer[document_number]"),
			Phone:      get("customer[phone_numbers][0]"),
		},
		Billing: GatewayAddress{
			Street:        get("billing[address][street]"),
			StreetNumber:  get("billing[address][street_number]"),
			Complementary: get("billing[address][complementary]"),
			Neighborhood:  get("billing[address][neighborhood]"),
			City:          get("billing[address][city]"),
			State:         get("billing[address][state]"),
			Zipcode:       get("billing[address][zipcode]"),
		},
	}
	for i := 0; ; i++ {
		slug := get(fmt.Sprintf("items[%d][id]", i))
		if slug == "" {
			break
		}
		price, err := formInt(get(fmt.Sprintf("items[%d][unit_price]", i)))
		if err != nil {
			return nil, err
		}
		t.Items = append(t.Items, GatewayItem{Slug: slug, UnitPrice: price})
	}
	if len(t.Items) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return t, nil
}

func formInt(s string) (int64, error) {
	if s == "" {
		return 0, domain.ErrInvalidArgument
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidArgument
	}
	return n, nil
}
