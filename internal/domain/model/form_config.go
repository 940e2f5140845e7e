package model

import (
	"iter"
	"math"
	"strings"

	"pagarme-checkout/internal/domain"
)

const (
	MethodBoleto     = "boleto"
	MethodCreditCard = "credit_card"
)

// FormConfig is the installment policy shared by the items of a checkout
// form: how many installments are offered, how many of them carry no
// interest, and which payment methods are accepted.
type FormConfig struct {
	ID                 string
	Name               string
	MaxInstallments    int
	DefaultInstallment int
	FreeInstallment    int
	InterestRate       float64 // percent per installment, >= 0
	PaymentMethods     []string
}

// NewFormConfig validates and constructs an installment policy.
// Installment bounds follow the one-year rule: every installment field must
// lie in [1, 12].
func NewFormConfig(id, name string, maxInstallments, defaultInstallment, freeInstallment int, interestRate float64, methods []string) (*FormConfig, error) {
	if id == "" || name == "" || interestRate < 0 {
		return nil, domain.ErrInvalidArgument
	}
	for _, n := range []int{maxInstallments, defaultInstallment, freeInstallment} {
		if n < 1 || n > 12 {
			return nil, domain.ErrInvalidArgument
		}
	}
	if len(methods) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	for _, m := range methods {
		if m != MethodBoleto && m != MethodCreditCard {
			return nil, domain.ErrInvalidArgument
		}
	}
	return &FormConfig{
		ID:                 id,
		Name:               name,
		MaxInstallments:    maxInstallments,
		DefaultInstallment: defaultInstallment,
		FreeInstallment:    freeInstallment,
		InterestRate:       interestRate,
		PaymentMethods:     methods,
	}, nil
}

// AcceptsMethod reports whether the policy allows the given payment method.
func (c *FormConfig) AcceptsMethod(method string) bool {
	for _, m := range c.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// CalculateAmount returns the interest-adjusted total in minor currency
// units. Installments up to FreeInstallment carry no interest; above it the
// total is ceil(base * (1 + rate*n/100)). Rounding is always ceiling so the
// merchant is never undercharged.
func (c *FormConfig) CalculateAmount(base int64, installments int) int64 {
	if installments <= c.FreeInstallment {
		return base
	}
	factor := 1 + c.InterestRate*float64(installments)/100
	return int64(math.Ceil(float64(base) * factor))
}

// PaymentPlan is one installment choice offered at checkout.
type PaymentPlan struct {
	Installments      int
	Amount            int64 // interest-adjusted total
	InstallmentAmount int64 // Amount / Installments, truncated
}

// PaymentPlans yields the installment choices for a base price, from a
// single payment up to MaxInstallments. The sequence is pure: it can be
// consumed any number of times and has no side effects.
func (c *FormConfig) PaymentPlans(base int64) iter.Seq[PaymentPlan] {
	return func(yield func(PaymentPlan) bool) {
		for n := 1; n <= c.MaxInstallments; n++ {
			amount := c.CalculateAmount(base, n)
			if !yield(PaymentPlan{Installments: n, Amount: amount, InstallmentAmount: amount / int64(n)}) {
				return
			}
		}
	}
}

// ParseMethods splits a stored "credit_card,boleto" column value.
func ParseMethods(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinMethods is the inverse of ParseMethods.
func JoinMethods(methods []string) string { return strings.Join(methods, ",") }
