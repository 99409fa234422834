package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/events"
	obscontext "github.com/I7ZT1/club-manager-panel/internal/observability/context"
	"github.com/I7ZT1/club-manager-panel/internal/observability/logger"
	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/withdraw"
)

type resolverService interface {
	ResolveRequisites(ctx context.Context, req providerdomain.DepositRequest) (providerdomain.Requisites, error)
}

type withdrawService interface {
	Withdraw(ctx context.Context, providerID providerdomain.ID, amount float64, currency providerdomain.Currency, cardTo string) (*withdraw.Result, error)
}

type depositRequest struct {
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	CustomerID string  `json:"customer_id"`
	OrderID    string  `json:"order_id"`
}

// CreateDeposit runs the provider fallback chain for the requested currency
// and returns the first usable requisites record.
func (s *Server) CreateDeposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.CustomerID) == "" {
		AbortWithError(c, newValidationError("customer_id", "required", "customer_id is required"))
		return
	}

	currency := providerdomain.Currency(strings.ToUpper(strings.TrimSpace(req.Currency)))
	ctx := obscontext.WithCustomerID(c.Request.Context(), req.CustomerID)
	requisites, err := s.resolverSvc.ResolveRequisites(ctx, providerdomain.DepositRequest{
		Amount:     req.Amount,
		Currency:   currency,
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
	})
	if err != nil {
		var aggregate *providerdomain.AggregateError
		if errors.As(err, &aggregate) {
			// The resolver mints an order id when the caller sends none; the
			// aggregate carries it so the exhaustion event stays correlatable.
			s.publishEvent(c, events.Event{
				Type: events.EventDepositExhausted,
				Payload: events.DepositPayload{
					OrderID:    aggregate.OrderID,
					Currency:   string(currency),
					Amount:     req.Amount,
					CustomerID: req.CustomerID,
				}.ToMap(),
			})
		}
		AbortWithError(c, err)
		return
	}

	s.publishEvent(c, events.Event{
		Type: events.EventDepositResolved,
		Payload: events.DepositPayload{
			OrderID:    requisites.OrderRef,
			BillingID:  requisites.BillingID,
			Currency:   string(currency),
			Amount:     req.Amount,
			CustomerID: req.CustomerID,
		}.ToMap(),
		DedupeKey: events.EventDepositResolved + ":" + requisites.OrderRef,
	})
	c.JSON(http.StatusOK, gin.H{"requisites": requisites})
}

type requisitesRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// GetRequisites serves the manual card directory: the first live billing
// card for the currency whose amount window admits the deposit.
func (s *Server) GetRequisites(c *gin.Context) {
	var req requisitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	billing, err := s.billingSvc.PickRequisites(
		c.Request.Context(),
		providerdomain.Currency(strings.ToUpper(strings.TrimSpace(req.Currency))),
		req.Amount,
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requisites": gin.H{
			"bank":         billing.Bank,
			"card":         billing.Card,
			"holder_name":  billing.CardDetails,
			"billing_id":   billing.ID.String(),
			"billing_name": billing.BillingName,
		},
	})
}

type withdrawRequest struct {
	Provider string  `json:"provider"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	CardTo   string  `json:"card_to"`
}

func (s *Server) CreateWithdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.withdrawSvc.Withdraw(
		c.Request.Context(),
		providerdomain.ID(strings.ToLower(strings.TrimSpace(req.Provider))),
		req.Amount,
		providerdomain.Currency(strings.ToUpper(strings.TrimSpace(req.Currency))),
		req.CardTo,
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !result.Disabled {
		s.publishEvent(c, events.Event{
			Type: events.EventWithdrawCreated,
			Payload: events.DepositPayload{
				OrderID:  result.OrderRef,
				Provider: string(result.Provider),
				Currency: strings.ToUpper(strings.TrimSpace(req.Currency)),
				Amount:   req.Amount,
			}.ToMap(),
			DedupeKey: events.EventWithdrawCreated + ":" + result.OrderRef,
		})
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": result})
}

// publishEvent writes to the outbox on a best-effort basis. Losing an event
// is logged, never surfaced to the payer.
func (s *Server) publishEvent(c *gin.Context, event events.Event) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Publish(c.Request.Context(), event); err != nil {
		logger.FromContext(c.Request.Context()).Error("outbox publish failed",
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
	}
}
