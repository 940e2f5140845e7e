package model

import (
	"time"

	"pagarme-checkout/internal/domain"
)

// UserPaymentProfile is a cached customer+billing snapshot keyed one-to-one
// by the local user id. It is populated from the gateway's customer data
// after a successful payment and used to pre-fill future checkouts.
type UserPaymentProfile struct {
	UserID    string
	Customer  GatewayCustomer
	Billing   GatewayAddress
	UpdatedAt time.Time
}

func NewUserPaymentProfile(userID string, customer GatewayCustomer, billing GatewayAddress) (*UserPaymentProfile, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &UserPaymentProfile{
		UserID:    userID,
		Customer:  customer,
		Billing:   billing,
		UpdatedAt: time.Now(),
	}, nil
}
