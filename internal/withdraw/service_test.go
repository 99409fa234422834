package withdraw

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

func TestWithdrawDisabledProvidersDoNotCallOut(t *testing.T) {
	// payport client left nil on purpose: a disabled provider must never
	// reach it, so a nil dereference here would mean the routing is wrong.
	svc := New(nil, zap.NewNop())

	for _, id := range []domain.ID{
		domain.OnePaymentKZT,
		domain.PayBridge,
		domain.PayChain,
		domain.PlatiPay,
		domain.Profiat,
	} {
		result, err := svc.Withdraw(context.Background(), id, 100, domain.UAH, "4441111122223333")
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if !result.Accepted || !result.Disabled {
			t.Fatalf("%s: expected accepted disabled no-op, got %+v", id, result)
		}
		if result.OrderRef != "" {
			t.Fatalf("%s: disabled payout must not carry an order ref, got %q", id, result.OrderRef)
		}
	}
}

func TestWithdrawValidation(t *testing.T) {
	svc := New(nil, zap.NewNop())

	if _, err := svc.Withdraw(context.Background(), domain.PayChain, 0, domain.UAH, "4441"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := svc.Withdraw(context.Background(), domain.PayChain, 100, domain.UAH, "  "); !errors.Is(err, ErrInvalidCard) {
		t.Fatalf("expected invalid card, got %v", err)
	}
	if _, err := svc.Withdraw(context.Background(), domain.ID("nope"), 100, domain.UAH, "4441"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected unknown provider, got %v", err)
	}
}
