// Package paychain integrates the PayChain pay-in API (UAH).
package paychain

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/transport"
)

type Config struct {
	APIKey string
	APIURL string
}

type Client struct {
	id  domain.ID
	cfg Config
	hc  *http.Client
	log *zap.Logger
}

func New(id domain.ID, cfg Config, log *zap.Logger) *Client {
	return &Client{
		id:  id,
		cfg: cfg,
		hc:  transport.NewClient(),
		log: log.Named("provider.paychain"),
	}
}

func (c *Client) ID() domain.ID { return c.id }

// Trade is the raw pay-in payload. Requisites are nested one level down.
type Trade struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Bank      string `json:"bank"`
	Requisite struct {
		Bank       string `json:"bank"`
		OwnerName  string `json:"ownerName"`
		Requisites string `json:"requisites"`
	} `json:"requisite"`
}

func (c *Client) CreateDepositOrder(ctx context.Context, req domain.DepositRequest) (any, error) {
	body := map[string]any{
		"depositType":  "STD",
		"transferType": "local",
		"method":       "card",
		"fiatAmount":   req.Amount,
		"fiatCurrency": string(req.Currency),
		"extra": map[string]any{
			"externalTransactionId": req.OrderID,
			"payerInfo": map[string]any{
				"userId":      req.CustomerID,
				"fingerprint": req.CustomerID,
			},
		},
	}

	headers := map[string]string{"x-api-key": c.cfg.APIKey}
	resp, err := transport.PostJSON(ctx, c.hc, c.cfg.APIURL+"payment/trading/pay-in", headers, body)
	if err != nil {
		return nil, domain.NetworkFailure(c.id, err)
	}
	switch {
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return nil, domain.AuthFailure(c.id, "api key rejected")
	case !resp.OK():
		return nil, domain.BusinessFailure(c.id, strconv.Itoa(resp.Status), string(resp.Body))
	}

	var trade Trade
	if err := resp.Decode(&trade); err != nil {
		return nil, domain.MalformedFailure(c.id, "pay-in response does not match schema")
	}
	if trade.ID == "" || trade.Requisite.Requisites == "" {
		return nil, domain.MalformedFailure(c.id, fmt.Sprintf("pay-in response missing requisite: %.200s", resp.Body))
	}
	return &trade, nil
}
