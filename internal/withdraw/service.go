// Package withdraw routes payout requests to provider integrations.
// Only payport has a live payout path; every other known provider
// acknowledges the request without calling out, mirroring the manual
// back-office flow those providers are handled through.
package withdraw

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/payport"
	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

var (
	ErrUnknownProvider = errors.New("unknown_provider")
	ErrInvalidCard     = errors.New("invalid_card")
)

// Result reports what happened to a payout request. Disabled means the
// request was accepted for manual processing and no provider was called.
type Result struct {
	Provider domain.ID `json:"provider"`
	Accepted bool      `json:"accepted"`
	Disabled bool      `json:"disabled"`
	OrderRef string    `json:"order_ref,omitempty"`
}

type Service struct {
	payport *payport.Client
	log     *zap.Logger
}

func New(payportClient *payport.Client, log *zap.Logger) *Service {
	return &Service{
		payport: payportClient,
		log:     log.Named("withdraw"),
	}
}

func (s *Service) Withdraw(ctx context.Context, providerID domain.ID, amount float64, currency domain.Currency, cardTo string) (*Result, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if strings.TrimSpace(cardTo) == "" {
		return nil, ErrInvalidCard
	}

	switch providerID {
	case domain.PayportUA, domain.PayportKZ:
		result, err := s.payport.Withdraw(ctx, amount, currency, cardTo)
		if err != nil {
			return nil, err
		}
		s.log.Info("withdrawal created",
			zap.String("provider", string(providerID)),
			zap.Int64("invoice_id", result.Data.InvoiceID),
		)
		return &Result{
			Provider: providerID,
			Accepted: true,
			OrderRef: strconv.FormatInt(result.Data.InvoiceID, 10),
		}, nil
	case domain.OnePaymentKZT, domain.OnePaymentUA, domain.PayBridge, domain.PayChain, domain.PlatiPay, domain.Profiat:
		// Accepted but intentionally not sent anywhere. These payouts are
		// settled manually by the finance team.
		s.log.Info("withdrawal accepted as disabled no-op",
			zap.String("provider", string(providerID)),
		)
		return &Result{Provider: providerID, Accepted: true, Disabled: true}, nil
	default:
		return nil, ErrUnknownProvider
	}
}
