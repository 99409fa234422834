package normalize

import (
	"errors"
	"testing"

	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/onepayment"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/paybridge"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/payport"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/platipay"
	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

func TestRequisitesOnePayment(t *testing.T) {
	got, err := Requisites(domain.OnePaymentKZT, &onepayment.DepositOrder{
		UUID:          "uuid-1",
		PaymentSystem: "Kaspi Bank",
		CardNumber:    "4400430112345678",
		CardOwnerName: "AIDAR N.",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Bank != "Kaspi Bank" || got.OrderRef != "uuid-1" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.BillingID != 117 {
		t.Fatalf("expected KZT billing code 117, got %d", got.BillingID)
	}
	if !got.Usable() {
		t.Fatalf("complete record must be usable")
	}
}

func TestRequisitesPayportNumericInvoice(t *testing.T) {
	got, err := Requisites(domain.PayportUA, &payport.Order{
		InvoiceID:  987654,
		CardNumber: "5375411122223333",
		CardHolder: "Taras K.",
		BankName:   "monobank",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.OrderRef != "987654" {
		t.Fatalf("numeric invoice ids normalize to strings, got %q", got.OrderRef)
	}
	if got.BillingID != 10 {
		t.Fatalf("expected billing code 10, got %d", got.BillingID)
	}
}

func TestRequisitesPayBridgePlaceholderBank(t *testing.T) {
	got, err := Requisites(domain.PayBridge, &paybridge.Payment{
		PaymentID: "p-1",
		Card:      "4149511122223333",
		CardOwner: "Oksana P.",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Bank != "BankName" {
		t.Fatalf("paybridge uses the placeholder bank label, got %q", got.Bank)
	}
	if !got.Usable() {
		t.Fatalf("placeholder bank still counts as present")
	}
}

func TestRequisitesPlatiPayNeverUsable(t *testing.T) {
	got, err := Requisites(domain.PlatiPay, &platipay.Deposit{
		Success:    true,
		BillID:     "b-1",
		CardNumber: "4441111122223333",
		Bank:       "privatbank",
		Name:       "present but ignored",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.HolderName != "" {
		t.Fatalf("platipay holder name is intentionally dropped, got %q", got.HolderName)
	}
	if got.Usable() {
		t.Fatalf("record without holder name must not be usable")
	}
}

func TestRequisitesUnknownPayload(t *testing.T) {
	_, err := Requisites(domain.PayChain, map[string]any{"unexpected": true})
	var failure *domain.Failure
	if !errors.As(err, &failure) || failure.Kind != domain.KindMalformed {
		t.Fatalf("expected malformed failure for unknown payload, got %v", err)
	}
}

func TestRequisitesIdempotent(t *testing.T) {
	order := &payport.Order{
		InvoiceID:  42,
		CardNumber: "5375411122223333",
		CardHolder: "Taras K.",
		BankName:   "monobank",
	}
	first, err := Requisites(domain.PayportUA, order)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	second, err := Requisites(domain.PayportUA, order)
	if err != nil {
		t.Fatalf("normalize again: %v", err)
	}
	if first != second {
		t.Fatalf("normalization must be pure: %+v vs %+v", first, second)
	}
}
