package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	billingdomain "github.com/I7ZT1/club-manager-panel/internal/billing/domain"
	"github.com/I7ZT1/club-manager-panel/internal/config"
	"github.com/I7ZT1/club-manager-panel/internal/events"
	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/withdraw"
)

type stubResolver struct {
	requisites providerdomain.Requisites
	err        error
}

func (s *stubResolver) ResolveRequisites(ctx context.Context, req providerdomain.DepositRequest) (providerdomain.Requisites, error) {
	if s.err != nil {
		return providerdomain.Requisites{}, s.err
	}
	return s.requisites, nil
}

type stubBilling struct {
	picked  *billingdomain.Billing
	pickErr error
}

func (s *stubBilling) Create(ctx context.Context, billing *billingdomain.Billing) (*billingdomain.Billing, error) {
	return billing, nil
}

func (s *stubBilling) GetByID(ctx context.Context, id snowflake.ID) (*billingdomain.Billing, error) {
	return nil, nil
}

func (s *stubBilling) List(ctx context.Context, req billingdomain.ListRequest) (*billingdomain.ListResult, error) {
	return &billingdomain.ListResult{}, nil
}

func (s *stubBilling) Update(ctx context.Context, id snowflake.ID, fields map[string]any) (*billingdomain.Billing, error) {
	return nil, billingdomain.ErrBillingNotFound
}

func (s *stubBilling) SoftDelete(ctx context.Context, id snowflake.ID) error {
	return billingdomain.ErrBillingNotFound
}

func (s *stubBilling) Filters(ctx context.Context) (*billingdomain.FilterOptions, error) {
	return &billingdomain.FilterOptions{}, nil
}

func (s *stubBilling) PickRequisites(ctx context.Context, currency providerdomain.Currency, amount float64) (*billingdomain.Billing, error) {
	if s.pickErr != nil {
		return nil, s.pickErr
	}
	return s.picked, nil
}

func newTestServer(t *testing.T, res resolverService, billing billingdomain.Service) *Server {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return &Server{
		cfg:            config.Config{Environment: "test"},
		log:            zap.NewNop(),
		resolverSvc:    res,
		billingSvc:     billing,
		withdrawSvc:    withdraw.New(nil, zap.NewNop()),
		genID:          node,
		depositLimiter: newRateLimiter(1000, time.Minute),
	}
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine(nil).ServeHTTP(rec, req)
	return rec
}

func TestCreateDepositReturnsRequisites(t *testing.T) {
	s := newTestServer(t, &stubResolver{
		requisites: providerdomain.Requisites{
			Bank:       "monobank",
			Card:       "5375411122223333",
			HolderName: "Taras K.",
			OrderRef:   "12345",
			BillingID:  115,
		},
	}, &stubBilling{})

	rec := doJSON(t, s, http.MethodPost, "/api/v1/payment/deposit",
		`{"amount": 500, "currency": "uah", "customer_id": "42"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"order_ref":"12345"`) {
		t.Fatalf("expected requisites payload, got %s", rec.Body.String())
	}
}

func TestCreateDepositExhaustedChainIs402(t *testing.T) {
	s := newTestServer(t, &stubResolver{
		err: &providerdomain.AggregateError{
			Currency: providerdomain.UAH,
			Failures: []*providerdomain.Failure{
				providerdomain.BusinessFailure(providerdomain.PayBridge, "declined", "declined"),
			},
		},
	}, &stubBilling{})

	rec := doJSON(t, s, http.MethodPost, "/api/v1/payment/deposit",
		`{"amount": 500, "currency": "UAH", "customer_id": "42"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "no_requisites_available") {
		t.Fatalf("expected generic payer-facing error, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "paybridge") {
		t.Fatalf("per-provider failures must not leak to callers: %s", rec.Body.String())
	}
}

func newOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS payment_events (
		id BIGINT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT,
		dedupe_key TEXT,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create payment_events: %v", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_events_dedupe
		ON payment_events (dedupe_key)`).Error; err != nil {
		t.Fatalf("create dedupe index: %v", err)
	}
	if err := db.Exec("DELETE FROM payment_events").Error; err != nil {
		t.Fatalf("truncate payment_events: %v", err)
	}
	return db
}

func TestCreateDepositExhaustedEventCarriesMintedOrderID(t *testing.T) {
	db := newOutboxTestDB(t)
	s := newTestServer(t, &stubResolver{
		err: &providerdomain.AggregateError{
			Currency: providerdomain.UAH,
			OrderID:  "1849301122334455",
			Failures: []*providerdomain.Failure{
				providerdomain.BusinessFailure(providerdomain.PayBridge, "declined", "declined"),
			},
		},
	}, &stubBilling{})
	s.outbox = events.NewOutbox(db, s.genID)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/payment/deposit",
		`{"amount": 500, "currency": "UAH", "customer_id": "42"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d: %s", rec.Code, rec.Body.String())
	}

	var row struct {
		EventType string
		Payload   string
	}
	if err := db.Raw("SELECT event_type, payload FROM payment_events").Scan(&row).Error; err != nil {
		t.Fatalf("read outbox: %v", err)
	}
	if row.EventType != events.EventDepositExhausted {
		t.Fatalf("expected exhaustion event, got %q", row.EventType)
	}
	if !strings.Contains(row.Payload, "1849301122334455") {
		t.Fatalf("exhaustion event must carry the resolver's order id, got %s", row.Payload)
	}
}

func TestCreateDepositValidation(t *testing.T) {
	s := newTestServer(t, &stubResolver{err: providerdomain.ErrInvalidAmount}, &stubBilling{})

	rec := doJSON(t, s, http.MethodPost, "/api/v1/payment/deposit",
		`{"amount": -1, "currency": "UAH", "customer_id": "42"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad amount, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/payment/deposit",
		`{"amount": 100, "currency": "UAH"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing customer, got %d", rec.Code)
	}
}

func TestGetRequisitesFromDirectory(t *testing.T) {
	s := newTestServer(t, &stubResolver{}, &stubBilling{
		picked: &billingdomain.Billing{
			ID:          snowflake.ID(7),
			BillingName: "main kaspi",
			Bank:        "kaspi",
			Card:        "4400430112345678",
			CardDetails: "AIDAR N.",
		},
	})

	rec := doJSON(t, s, http.MethodPost, "/api/v1/payment/requisites",
		`{"amount": 10000, "currency": "KZT"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "4400430112345678") {
		t.Fatalf("expected card in payload, got %s", rec.Body.String())
	}
}

func TestGetRequisitesEmptyDirectoryIs402(t *testing.T) {
	s := newTestServer(t, &stubResolver{}, &stubBilling{pickErr: billingdomain.ErrNoCardAvailable})

	rec := doJSON(t, s, http.MethodPost, "/api/v1/payment/requisites",
		`{"amount": 10000, "currency": "KZT"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
}

func TestCreateWithdrawDisabledProvider(t *testing.T) {
	s := newTestServer(t, &stubResolver{}, &stubBilling{})

	rec := doJSON(t, s, http.MethodPost, "/api/v1/payment/withdraw",
		`{"provider": "paychain", "amount": 200, "currency": "UAH", "card_to": "5375411122223333"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"disabled":true`) {
		t.Fatalf("expected disabled no-op result, got %s", rec.Body.String())
	}
}

func TestDepositRateLimit(t *testing.T) {
	s := newTestServer(t, &stubResolver{requisites: providerdomain.Requisites{
		Bank: "b", Card: "c", HolderName: "h",
	}}, &stubBilling{})
	s.depositLimiter = newRateLimiter(2, time.Minute)

	engine := s.Engine(nil)
	body := `{"amount": 100, "currency": "UAH", "customer_id": "42"}`
	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/deposit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be throttled, got %d", last)
	}
}
