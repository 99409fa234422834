package events

// Payment event types written to the outbox for downstream billing sync.
const (
	EventDepositResolved  = "deposit_requisites_resolved"
	EventDepositExhausted = "deposit_chain_exhausted"
	EventWithdrawCreated  = "withdrawal_created"
	EventBillingChanged   = "billing_card_changed"
)

// DepositPayload captures the minimal data needed to reconcile a resolved
// deposit downstream.
type DepositPayload struct {
	OrderID    string  `json:"order_id"`
	Provider   string  `json:"provider,omitempty"`
	BillingID  int     `json:"billing_id,omitempty"`
	Currency   string  `json:"currency"`
	Amount     float64 `json:"amount"`
	CustomerID string  `json:"customer_id,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p DepositPayload) ToMap() map[string]any {
	payload := map[string]any{
		"order_id": p.OrderID,
		"currency": p.Currency,
		"amount":   p.Amount,
	}
	if p.Provider != "" {
		payload["provider"] = p.Provider
	}
	if p.BillingID != 0 {
		payload["billing_id"] = p.BillingID
	}
	if p.CustomerID != "" {
		payload["customer_id"] = p.CustomerID
	}
	return payload
}
