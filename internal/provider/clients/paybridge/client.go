// Package paybridge integrates the PayBridge card-payment API (UAH).
//
// PayBridge authenticates requests with a SHA-1 digest over the request
// parameters: keys sorted alphabetically, joined as "key|value|...|secret".
package paybridge

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/transport"
)

type Config struct {
	APIURL     string
	MerchantID string
	APISecret  string
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
		log: log.Named("provider.paybridge"),
	}
}

func (c *Client) ID() domain.ID { return c.id }

// Payment is the raw success payload. PayBridge never names the receiving
// bank; the normalizer substitutes its generic placeholder.
type Payment struct {
	PaymentID string  `json:"payment_id"`
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Card      string  `json:"card"`
	CardOwner string  `json:"card_owner"`
}

func (c *Client) CreateDepositOrder(ctx context.Context, req domain.DepositRequest) (any, error) {
	amount := strconv.FormatFloat(req.Amount, 'f', -1, 64)
	params := map[string]string{
		"amount":      amount,
		"currency":    string(req.Currency),
		"merchant_id": c.cfg.MerchantID,
		"order_desc":  fmt.Sprintf("Deposit%s%sby%s", amount, req.Currency, req.CustomerID),
		"order_id":    req.OrderID,
		"version":     "1.0",
	}

	body := make(map[string]string, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	body["signature"] = Sign(params, c.cfg.APISecret)

	url := c.cfg.APIURL + "/api/auth/create-payment-api"
	resp, err := transport.PostJSON(ctx, c.hc, url, nil, body)
	if err != nil {
		return nil, domain.NetworkFailure(c.id, err)
	}
	switch {
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return nil, domain.AuthFailure(c.id, "signature rejected")
	case !resp.OK():
		return nil, domain.BusinessFailure(c.id, strconv.Itoa(resp.Status), string(resp.Body))
	}

	var payment Payment
	if err := resp.Decode(&payment); err != nil {
		return nil, domain.MalformedFailure(c.id, "payment response does not match schema")
	}
	if payment.PaymentID == "" || payment.Card == "" {
		return nil, domain.MalformedFailure(c.id, fmt.Sprintf("payment response missing requisites: %.200s", resp.Body))
	}
	return &payment, nil
}

// Sign computes the PayBridge request signature for the given parameters.
func Sign(params map[string]string, secret string) string {
	sum := sha1.Sum([]byte(SigningString(params, secret)))
	return hex.EncodeToString(sum[:])
}

// SigningString joins the parameters in the exact form PayBridge hashes.
func SigningString(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+"|"+params[k])
	}
	parts = append(parts, secret)
	return strings.Join(parts, "|")
}
