package payport

import (
	"context"
	"strconv"

	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

// WithdrawResult is the raw payload of a created withdrawal.
type WithdrawResult struct {
	Status int `json:"status"`
	Data   struct {
		InvoiceID int64 `json:"invoice_id"`
	} `json:"data"`
}

// Withdraw creates a real payout: lists withdrawal ads for the amount, takes
// the last offered ad and creates the withdrawal against it, with the target
// card number passed through the free-form message field.
func (c *Client) Withdraw(ctx context.Context, amount float64, currency domain.Currency, cardTo string) (*WithdrawResult, error) {
	listBody := map[string]any{
		"amount":           amount,
		"currency":         string(currency),
		"merchant_expense": 0,
		"exact_currency":   1,
	}
	resp, err := c.post(ctx, "/api/v3/withdrawal/request", listBody)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data struct {
			Ads []struct {
				AdID int64 `json:"ad_id"`
			} `json:"ads"`
		} `json:"data"`
	}
	if err := resp.Decode(&parsed); err != nil {
		return nil, domain.MalformedFailure(c.id, "withdrawal list response is not valid JSON")
	}

	var adID int64
	for _, ad := range parsed.Data.Ads {
		adID = ad.AdID
	}
	if adID == 0 {
		return nil, domain.BusinessFailure(c.id, "no_ads", "no withdrawal ads available for amount")
	}

	createBody := map[string]any{
		"ad_id":            adID,
		"amount":           amount,
		"currency":         string(currency),
		"merchant_expense": 1,
		"message":          cardTo,
		"locale":           "ru",
		"server_url":       c.cfg.CallbackURL,
	}
	resp, err = c.post(ctx, "/api/v3/withdrawal/create", createBody)
	if err != nil {
		return nil, err
	}

	var result WithdrawResult
	if err := resp.Decode(&result); err != nil {
		return nil, domain.MalformedFailure(c.id, "withdrawal create response is not valid JSON")
	}
	if result.Status != 1 {
		return nil, domain.BusinessFailure(c.id, strconv.Itoa(result.Status), "withdrawal was not created")
	}
	return &result, nil
}
