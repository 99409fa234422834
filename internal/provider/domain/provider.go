package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ID identifies a payment provider integration.
type ID string

const (
	OnePaymentKZT ID = "onepayment_kzt"
	OnePaymentUA  ID = "onepayment_ua"
	PayportUA     ID = "payport_ua"
	PayportKZ     ID = "payport_kz"
	PayBridge     ID = "paybridge"
	PayChain      ID = "paychain"
	PlatiPay      ID = "platipay"
	Profiat       ID = "profiat"
)

// BillingID returns the numeric code the billing system stores alongside a
// transaction to record which provider fulfilled it.
//
// PlatiPay shares PayChain's code in the upstream billing configuration. That
// duplication predates this service; see DESIGN.md before changing it.
func (id ID) BillingID() int {
	switch id {
	case OnePaymentKZT:
		return 117
	case OnePaymentUA:
		return 118
	case PayportUA:
		return 10
	case PayportKZ:
		return 11
	case PayBridge:
		return 115
	case PayChain:
		return 144
	case PlatiPay:
		return 144
	case Profiat:
		return 147
	default:
		return 0
	}
}

// Currency is an ISO-4217 code for a supported deposit currency.
type Currency string

const (
	UAH Currency = "UAH"
	KZT Currency = "KZT"
)

// Requisites is the canonical bank-transfer record returned to payers.
type Requisites struct {
	Bank       string `json:"bank"`
	Card       string `json:"card"`
	HolderName string `json:"holder_name"`
	OrderRef   string `json:"order_ref"`
	BillingID  int    `json:"billing_id"`
	RawStatus  string `json:"raw_status,omitempty"`
}

// Usable reports whether the record has all three display fields a payer
// needs to complete a manual transfer. Providers that return partial
// requisites are treated as having returned nothing.
func (r Requisites) Usable() bool {
	return r.Bank != "" && r.Card != "" && r.HolderName != ""
}

// DepositRequest is the resolver-facing order input.
type DepositRequest struct {
	Amount     float64
	Currency   Currency
	CustomerID string
	OrderID    string
}

// FailureKind classifies a single provider's failure mode.
type FailureKind string

const (
	KindNetwork    FailureKind = "network"
	KindAuth       FailureKind = "auth"
	KindValidation FailureKind = "validation"
	KindBusiness   FailureKind = "business"
	KindMalformed  FailureKind = "malformed_response"
)

// Failure is one provider's typed outcome inside a resolution attempt. It is
// recorded and skipped by the resolver, never surfaced to callers directly.
type Failure struct {
	Provider ID
	Kind     FailureKind
	Code     string
	Message  string
	At       time.Time
	Err      error
}

func (f *Failure) Error() string {
	if f.Code != "" {
		return fmt.Sprintf("%s: %s failure (%s): %s", f.Provider, f.Kind, f.Code, f.Message)
	}
	return fmt.Sprintf("%s: %s failure: %s", f.Provider, f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// NetworkFailure wraps a transport-level error.
func NetworkFailure(id ID, err error) *Failure {
	return &Failure{Provider: id, Kind: KindNetwork, Message: err.Error(), Err: err}
}

// AuthFailure marks a signature or credential rejection.
func AuthFailure(id ID, message string) *Failure {
	return &Failure{Provider: id, Kind: KindAuth, Message: message}
}

// ValidationFailure marks input the provider cannot accept.
func ValidationFailure(id ID, message string) *Failure {
	return &Failure{Provider: id, Kind: KindValidation, Message: message}
}

// BusinessFailure wraps a structured non-2xx error body.
func BusinessFailure(id ID, code, message string) *Failure {
	return &Failure{Provider: id, Kind: KindBusiness, Code: code, Message: message}
}

// MalformedFailure marks a 2xx response whose body did not match the
// provider's documented schema.
func MalformedFailure(id ID, message string) *Failure {
	return &Failure{Provider: id, Kind: KindMalformed, Message: message}
}

// AggregateError is the terminal outcome of an exhausted fallback chain. The
// ordered per-provider failures are kept for diagnostics; callers only see
// the generic message. OrderID is the id the attempts ran under, including
// one the resolver minted itself, so exhaustion stays correlatable.
type AggregateError struct {
	Currency Currency
	OrderID  string
	Failures []*Failure
}

func (e *AggregateError) Error() string {
	return "no requisites available"
}

// Client is one provider integration. Implementations own their auth scheme,
// wire contract and known quirks; the resolver only sees the raw success
// payload or a typed Failure.
type Client interface {
	ID() ID
	CreateDepositOrder(ctx context.Context, req DepositRequest) (any, error)
}

var (
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrUnsupportedCurrency = errors.New("unsupported_currency")
)
