package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrItemUnavailable    = errors.New("payment item not available")
)

// PaymentViolation signals that gateway-reported financial data contradicts
// the configured expectations (tampered price, amount, installments) or that
// a webhook signature failed verification. It is always surfaced to the
// caller as a rejected request, never swallowed.
type PaymentViolation struct {
	Msg string
}

func NewPaymentViolation(format string, args ...any) *PaymentViolation {
	return &PaymentViolation{Msg: fmt.Sprintf(format, args...)}
}

func (e *PaymentViolation) Error() string { return e.Msg }

// StatusTransitionError signals a stale, duplicate or out-of-order status
// notification. The attempted transition is not recorded; at the HTTP
// boundary it is treated as a benign no-op so the gateway does not retry.
type StatusTransitionError struct {
	From string
	To   string
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// TransactionMismatchError is raised by the capture flow when the opaque
// token echoed by the gateway differs from the transaction id it reports.
// It carries the correct id so the caller can retry with it.
type TransactionMismatchError struct {
	TransactionID string
}

func (e *TransactionMismatchError) Error() string {
	return fmt.Sprintf("token differs from transaction id %s", e.TransactionID)
}
