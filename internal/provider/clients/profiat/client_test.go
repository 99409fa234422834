package profiat

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/clock"
	"github.com/I7ZT1/club-manager-panel/internal/config"
	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

func testPrivateKeyB64(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return base64.StdEncoding.EncodeToString(pemBytes)
}

// newTestClient points the client at a TLS test server by rewriting its host
// and trusting the server's certificate.
func newTestClient(t *testing.T, srv *httptest.Server, keyB64 string) *Client {
	t.Helper()
	c := New(domain.Profiat, config.Profiat{
		Host:          srv.Listener.Addr().String(),
		KID:           "kid-1",
		PrivateKeyB64: keyB64,
		Platform:      "panel",
		CallbackURL:   "https://panel.example/callback",
	}, &clock.Fixed{Time: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}, zap.NewNop())
	c.hc = srv.Client()
	return c
}

func TestSessionTokenSharedRefresh(t *testing.T) {
	var refreshes atomic.Int64
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/papi/session/jwt/" {
			t.Errorf("unexpected path %s", r.URL.Path)
			return
		}
		var body struct {
			KID      string `json:"kid"`
			JWTToken string `json:"jwt_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.KID != "kid-1" || body.JWTToken == "" {
			t.Errorf("bad session exchange body: %+v err=%v", body, err)
		}
		refreshes.Add(1)
		w.Write([]byte(`{"token": "session-token-1"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, testPrivateKeyB64(t))

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	errs := make([]error, 8)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = client.sessionToken(context.Background())
		}(i)
	}
	wg.Wait()

	for i := range tokens {
		if errs[i] != nil {
			t.Fatalf("session token %d: %v", i, errs[i])
		}
		if tokens[i] != "session-token-1" {
			t.Fatalf("session token %d = %q", i, tokens[i])
		}
	}
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("concurrent callers must share one refresh, got %d", got)
	}

	// A later call is served from cache without touching the server.
	if _, err := client.sessionToken(context.Background()); err != nil {
		t.Fatalf("cached session token: %v", err)
	}
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("cached token must not trigger a refresh, got %d", got)
	}
}

func TestCreateDepositOrderSendsSessionToken(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/papi/session/jwt/":
			w.Write([]byte(`{"token": "session-token-1"}`))
		case "/api/papi/incoming/payment/create/processing/":
			if r.Header.Get("Authorization") != "JWT session-token-1" {
				t.Errorf("missing session token header, got %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"ok": true, "payment": {
				"id": "pay-1",
				"card": "5375411122223333",
				"name": "Taras K.",
				"paymethod_description": "monobank"
			}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv, testPrivateKeyB64(t))
	raw, err := client.CreateDepositOrder(context.Background(), domain.DepositRequest{
		Amount: 500, Currency: domain.UAH, CustomerID: "42", OrderID: "o-1",
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	payment, ok := raw.(*Payment)
	if !ok || payment.ID != "pay-1" || payment.Card == "" {
		t.Fatalf("unexpected payload: %#v", raw)
	}
}

func TestCreateDepositOrderRejectedTokenEvictsCache(t *testing.T) {
	var refreshes atomic.Int64
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/papi/session/jwt/":
			refreshes.Add(1)
			w.Write([]byte(`{"token": "session-token-1"}`))
		case "/api/papi/incoming/payment/create/processing/":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv, testPrivateKeyB64(t))
	req := domain.DepositRequest{Amount: 500, Currency: domain.UAH, CustomerID: "42"}

	var failure *domain.Failure
	if _, err := client.CreateDepositOrder(context.Background(), req); !errors.As(err, &failure) || failure.Kind != domain.KindAuth {
		t.Fatalf("expected auth failure, got %v", err)
	}

	// The rejected token was evicted, so the next attempt refreshes again.
	_, _ = client.CreateDepositOrder(context.Background(), req)
	if got := refreshes.Load(); got != 2 {
		t.Fatalf("rejected tokens must not be reused, refreshes = %d", got)
	}
}

func TestBrokenKeyIsAuthFailure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request should be sent with a broken key")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "not-base64!")
	_, err := client.CreateDepositOrder(context.Background(), domain.DepositRequest{
		Amount: 500, Currency: domain.UAH, CustomerID: "42",
	})
	var failure *domain.Failure
	if !errors.As(err, &failure) || failure.Kind != domain.KindAuth {
		t.Fatalf("expected auth failure, got %v", err)
	}
}
