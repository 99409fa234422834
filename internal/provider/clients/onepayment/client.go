// Package onepayment integrates the OnePayment KZT deposit API.
package onepayment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/transport"
)

// defaultPaymentSystem is requested first; OnePayment answers 422 when no
// processor for it is available, in which case the order is retried once with
// the field cleared so the provider picks any system.
const defaultPaymentSystem = "Kaspi Bank"

type Config struct {
	APIKey  string
	APIURL  string
	HookURL string
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
		log: log.Named("provider.onepayment"),
	}
}

func (c *Client) ID() domain.ID { return c.id }

type depositRequest struct {
	PaymentSystem          *string `json:"payment_system"`
	NationalCurrency       string  `json:"national_currency"`
	NationalCurrencyAmount float64 `json:"national_currency_amount"`
	ExternalOrderID        string  `json:"external_order_id"`
	CallbackURL            string  `json:"callback_url"`
	ClientMerchantID       string  `json:"client_merchant_id"`
	TrustedTraffic         bool    `json:"trusted_traffic"`
	FingerPrint            string  `json:"finger_print"`
}

// DepositOrder is the flattened success payload (id/type plus attributes).
type DepositOrder struct {
	ID               string `json:"id"`
	UUID             string `json:"uuid"`
	Type             string `json:"type"`
	CardNumber       string `json:"card_number"`
	CardOwnerName    string `json:"card_owner_name"`
	PaymentSystem    string `json:"payment_system"`
	NationalCurrency string `json:"national_currency"`
	Amount           string `json:"national_currency_amount"`
	ExpirationTime   string `json:"expiration_time"`
	RequisiteType    string `json:"requisite_type"`
	PaymentLink      string `json:"payment_link"`
}

type envelope struct {
	Data *struct {
		ID         string          `json:"id"`
		Type       string          `json:"type"`
		Attributes json.RawMessage `json:"attributes"`
	} `json:"data"`
}

func (c *Client) CreateDepositOrder(ctx context.Context, req domain.DepositRequest) (any, error) {
	system := defaultPaymentSystem
	payload := depositRequest{
		PaymentSystem:          &system,
		NationalCurrency:       string(req.Currency),
		NationalCurrencyAmount: req.Amount,
		ExternalOrderID:        req.OrderID,
		CallbackURL:            c.cfg.HookURL,
		ClientMerchantID:       req.CustomerID,
		TrustedTraffic:         true,
		FingerPrint:            req.CustomerID,
	}

	resp, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnprocessableEntity {
		c.log.Warn("no payment system available, retrying without preference",
			zap.String("order_id", req.OrderID))
		payload.PaymentSystem = nil
		resp, err = c.post(ctx, payload)
		if err != nil {
			return nil, err
		}
	}

	return c.parse(resp)
}

func (c *Client) post(ctx context.Context, payload depositRequest) (*transport.Response, error) {
	url := c.cfg.APIURL + "external_processing/payments/deposits"
	headers := map[string]string{"Authorization": c.cfg.APIKey}
	resp, err := transport.PostJSON(ctx, c.hc, url, headers, payload)
	if err != nil {
		return nil, domain.NetworkFailure(c.id, err)
	}
	return resp, nil
}

func (c *Client) parse(resp *transport.Response) (any, error) {
	switch {
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return nil, domain.AuthFailure(c.id, "api key rejected")
	case !resp.OK():
		return nil, domain.BusinessFailure(c.id, strconv.Itoa(resp.Status), string(resp.Body))
	}

	var env envelope
	if err := resp.Decode(&env); err != nil || env.Data == nil {
		return nil, domain.MalformedFailure(c.id, fmt.Sprintf("response missing data envelope: %.200s", resp.Body))
	}

	order := DepositOrder{ID: env.Data.ID, Type: env.Data.Type}
	if err := json.Unmarshal(env.Data.Attributes, &order); err != nil {
		return nil, domain.MalformedFailure(c.id, "attributes do not match deposit schema")
	}
	if order.UUID == "" || order.CardNumber == "" {
		return nil, domain.MalformedFailure(c.id, "deposit attributes missing uuid or card number")
	}
	return &order, nil
}
