// Package payport integrates the Payport P2P invoice API (UAH and KZT).
package payport

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/transport"
)

// minDepositKZT is enforced by Payport for KZT; rejecting locally avoids a
// guaranteed upstream error.
const minDepositKZT = 5000

type Config struct {
	APIv3Key    string
	APIv5Key    string
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
		log: log.Named("provider.payport"),
	}
}

func (c *Client) ID() domain.ID { return c.id }

// Order is the raw approved-payment payload, extended with the invoice id the
// check endpoint does not echo back.
type Order struct {
	Rate              float64 `json:"rate"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	CardNumber        string  `json:"card_number"`
	CardHolder        string  `json:"card_holder"`
	BankName          string  `json:"bank_name"`
	PaymentSystemType string  `json:"payment_system_type"`
	InvoiceID         int64   `json:"invoice_id"`
}

type Option struct {
	AdID     int64  `json:"ad_id"`
	BankName string `json:"bank_name"`
}

func (c *Client) CreateDepositOrder(ctx context.Context, req domain.DepositRequest) (any, error) {
	if req.Currency != domain.UAH && req.Currency != domain.KZT {
		return nil, domain.ValidationFailure(c.id, "currency not active: "+string(req.Currency))
	}
	if req.Currency == domain.KZT && req.Amount < minDepositKZT {
		return nil, domain.ValidationFailure(c.id, "KZT deposits must be at least 5000")
	}

	options, err := c.requestPayment(ctx, req)
	if err != nil {
		return nil, err
	}
	selected, ok := SelectBank(options)
	if !ok {
		return nil, domain.BusinessFailure(c.id, "no_bank", "no suitable bank returned for amount")
	}

	invoiceID, err := c.createInvoice(ctx, selected.AdID, req)
	if err != nil {
		return nil, err
	}
	return c.checkApproved(ctx, invoiceID)
}

func (c *Client) requestPayment(ctx context.Context, req domain.DepositRequest) ([]Option, error) {
	body := map[string]any{
		"amount":         req.Amount,
		"currency":       string(req.Currency),
		"exact_currency": true,
		"client_expense": 0,
		"locale":         "ru",
	}
	resp, err := c.post(ctx, "/api/v3/payment/request", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []Option `json:"data"`
	}
	if err := resp.Decode(&parsed); err != nil {
		return nil, domain.MalformedFailure(c.id, "payment request response is not valid JSON")
	}
	return parsed.Data, nil
}

func (c *Client) createInvoice(ctx context.Context, adID int64, req domain.DepositRequest) (int64, error) {
	body := map[string]any{
		"ad_id":             adID,
		"amount":            req.Amount,
		"currency":          string(req.Currency),
		"server_url":        c.cfg.CallbackURL,
		"locale":            "ru",
		"customer_id":       req.CustomerID,
		"currency2currency": 1,
		"client_expense":    0,
	}
	resp, err := c.post(ctx, "/api/v3/payment/create", body)
	if err != nil {
		return 0, err
	}

	var parsed struct {
		Status int `json:"status"`
		Data   struct {
			InvoiceID int64 `json:"invoice_id"`
		} `json:"data"`
	}
	if err := resp.Decode(&parsed); err != nil {
		return 0, domain.MalformedFailure(c.id, "invoice response is not valid JSON")
	}
	if parsed.Status != 1 || parsed.Data.InvoiceID == 0 {
		return 0, domain.BusinessFailure(c.id, strconv.Itoa(parsed.Status), "invoice was not created")
	}
	return parsed.Data.InvoiceID, nil
}

func (c *Client) checkApproved(ctx context.Context, invoiceID int64) (any, error) {
	body := map[string]any{
		"invoice_id": invoiceID,
		"locale":     "ru",
	}
	resp, err := c.post(ctx, "/api/v3/payment/check/approved", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Status int   `json:"status"`
		Data   Order `json:"data"`
	}
	if err := resp.Decode(&parsed); err != nil {
		return nil, domain.MalformedFailure(c.id, "approved-check response is not valid JSON")
	}
	order := parsed.Data
	order.InvoiceID = invoiceID
	return &order, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body map[string]any) (*transport.Response, error) {
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIv3Key}
	resp, err := transport.PostJSON(ctx, c.hc, c.cfg.APIURL+endpoint, headers, body)
	if err != nil {
		return nil, domain.NetworkFailure(c.id, err)
	}
	switch {
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return nil, domain.AuthFailure(c.id, "api v3 key rejected")
	case !resp.OK():
		return nil, domain.BusinessFailure(c.id, strconv.Itoa(resp.Status), string(resp.Body))
	}
	return resp, nil
}

// bankPriority is the fixed preference order for Payport's candidate banks.
// It mirrors long-standing operator preference, not a documented contract.
var bankPriority = []string{
	"pumb",
	"kaspi",
	"izi bank",
	"ощадбанк",
	"a-bank",
	"privatbank",
	"monobank",
}

// SelectBank returns the first candidate whose bank name contains a
// preferred bank, otherwise the last candidate seen. The boolean is false
// only when there are no candidates at all.
func SelectBank(options []Option) (Option, bool) {
	if len(options) == 0 {
		return Option{}, false
	}
	for _, opt := range options {
		name := strings.ToLower(opt.BankName)
		for _, preferred := range bankPriority {
			if strings.Contains(name, preferred) {
				return opt, true
			}
		}
	}
	return options[len(options)-1], true
}
