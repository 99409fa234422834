// Package platipay integrates the PlatiPay deposit API (UAH).
//
// Requests are signed with HMAC-SHA512 over the exact JSON bytes on the
// wire, sent in the Signature header next to the API key.
package platipay

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/transport"
)

type Config struct {
	APIKey      string
	SecretKey   string
	APIURL      string
	CallbackURL string
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
		log: log.Named("provider.platipay"),
	}
}

func (c *Client) ID() domain.ID { return c.id }

// Deposit is the raw create-order payload.
type Deposit struct {
	Success    bool    `json:"success"`
	ID         int64   `json:"id"`
	BillID     string  `json:"bill_id"`
	Amount     float64 `json:"amount"`
	CardNumber string  `json:"card_number"`
	Bank       string  `json:"bank"`
	Name       string  `json:"name"`
}

func (c *Client) CreateDepositOrder(ctx context.Context, req domain.DepositRequest) (any, error) {
	payload := map[string]any{
		"client_order_id": req.OrderID,
		"user_id":         req.CustomerID,
		"amount":          req.Amount,
		"comment":         "Top-up",
		"expire":          1200,
		"currency_id":     1,
		"callback":        c.cfg.CallbackURL + "/" + req.OrderID,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.MalformedFailure(c.id, "encode deposit payload: "+err.Error())
	}

	headers := map[string]string{
		"Signature": Sign(raw, c.cfg.SecretKey),
		"APIKEY":    c.cfg.APIKey,
	}
	resp, err := transport.PostRaw(ctx, c.hc, c.cfg.APIURL+"/payment/deposit", headers, raw)
	if err != nil {
		return nil, domain.NetworkFailure(c.id, err)
	}
	switch {
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return nil, domain.AuthFailure(c.id, "signature rejected")
	case !resp.OK():
		return nil, domain.BusinessFailure(c.id, strconv.Itoa(resp.Status), string(resp.Body))
	}

	var deposit Deposit
	if err := resp.Decode(&deposit); err != nil {
		return nil, domain.MalformedFailure(c.id, "deposit response does not match schema")
	}
	if !deposit.Success {
		return nil, domain.BusinessFailure(c.id, "rejected", fmt.Sprintf("deposit rejected: %.200s", resp.Body))
	}
	if deposit.CardNumber == "" {
		return nil, domain.MalformedFailure(c.id, "deposit response missing card number")
	}
	return &deposit, nil
}

// Sign computes the request signature over the exact payload bytes.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
