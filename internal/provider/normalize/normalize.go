// Package normalize maps each provider's raw success payload into the
// canonical requisites record. It is pure: no I/O, no state, missing
// optional fields become empty strings.
package normalize

import (
	"fmt"
	"strconv"

	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/onepayment"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/paybridge"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/paychain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/platipay"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/payport"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/profiat"
	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

// payBridgeBankLabel stands in for the bank name PayBridge never returns.
const payBridgeBankLabel = "BankName"

// Requisites converts a provider's raw payload into the canonical record.
// An unknown payload type is a programming error surfaced as a malformed
// failure so the resolver can fall through to the next provider.
func Requisites(id domain.ID, raw any) (domain.Requisites, error) {
	out := domain.Requisites{BillingID: id.BillingID()}

	switch v := raw.(type) {
	case *onepayment.DepositOrder:
		out.Bank = v.PaymentSystem
		out.Card = v.CardNumber
		out.HolderName = v.CardOwnerName
		out.OrderRef = v.UUID

	case *payport.Order:
		out.Bank = v.BankName
		out.Card = v.CardNumber
		out.HolderName = v.CardHolder
		out.OrderRef = strconv.FormatInt(v.InvoiceID, 10)

	case *paybridge.Payment:
		out.Bank = payBridgeBankLabel
		out.Card = v.Card
		out.HolderName = v.CardOwner
		out.OrderRef = v.PaymentID

	case *paychain.Trade:
		out.Bank = v.Requisite.Bank
		out.Card = v.Requisite.Requisites
		out.HolderName = v.Requisite.OwnerName
		out.OrderRef = v.ID
		out.RawStatus = v.Status

	case *platipay.Deposit:
		// PlatiPay does return a holder name, but the integration has never
		// surfaced it to payers; keep it empty.
		out.Bank = v.Bank
		out.Card = v.CardNumber
		out.OrderRef = v.BillID

	case *profiat.Payment:
		out.Bank = v.PaymethodDescription
		out.Card = v.Card
		out.HolderName = v.Name
		out.OrderRef = v.ID
		out.RawStatus = v.Status

	default:
		return domain.Requisites{}, domain.MalformedFailure(id, fmt.Sprintf("no normalizer for payload type %T", raw))
	}

	return out, nil
}
