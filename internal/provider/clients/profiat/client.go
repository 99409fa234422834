// Package profiat integrates the Profiat PAPI (UAH).
//
// Auth is two-step: an RS256-signed assertion is exchanged for a short-lived
// session token, which is cached and transparently refreshed 60 seconds
// before expiry. Concurrent callers share one in-flight refresh.
package profiat

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/I7ZT1/club-manager-panel/internal/cache"
	"github.com/I7ZT1/club-manager-panel/internal/clock"
	"github.com/I7ZT1/club-manager-panel/internal/config"
	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/transport"
)

// refreshMargin is how long before expiry a cached session token stops being
// served, forcing a refresh.
const refreshMargin = 60 * time.Second

const tokenKey = "session"

// paymethodCard is the card paymethod Profiat assigns to this platform.
const paymethodCard = 4000

type Client struct {
	id     domain.ID
	cfg    config.Profiat
	hc     *http.Client
	log    *zap.Logger
	clk    clock.Clock
	key    *rsa.PrivateKey
	keyErr error

	tokens cache.Cache[string, string]
	sf     singleflight.Group
}

func New(id domain.ID, cfg config.Profiat, clk clock.Clock, log *zap.Logger) *Client {
	c := &Client{
		id:     id,
		cfg:    cfg,
		hc:     transport.NewClient(),
		log:    log.Named("provider.profiat"),
		clk:    clk,
		tokens: cache.NewTTLCache[string, string](),
	}
	c.key, c.keyErr = parseKey(cfg.PrivateKeyB64)
	return c
}

func parseKey(b64 string) (*rsa.PrivateKey, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

func (c *Client) ID() domain.ID { return c.id }

// Payment is the raw incoming-payment payload.
type Payment struct {
	ID                   string  `json:"id"`
	Card                 string  `json:"card"`
	Name                 string  `json:"name"`
	Status               string  `json:"status"`
	Amount               float64 `json:"amount"`
	AmountNative         float64 `json:"amount_native"`
	Currency             string  `json:"currency"`
	Rate                 float64 `json:"rate"`
	Paymethod            int     `json:"paymethod"`
	PaymethodDescription string  `json:"paymethod_description"`
	Timeout              int     `json:"timeout"`
}

type orderResponse struct {
	OK      bool     `json:"ok"`
	Message string   `json:"message"`
	Payment *Payment `json:"payment"`
}

func (c *Client) CreateDepositOrder(ctx context.Context, req domain.DepositRequest) (any, error) {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"platform":     c.cfg.Platform,
		"amount":       req.Amount,
		"currency":     string(req.Currency),
		"client_id":    req.CustomerID,
		"paymethod":    paymethodCard,
		"callback_url": c.cfg.CallbackURL + "/" + req.OrderID,
		"lesenka":      false,
	}
	headers := map[string]string{"Authorization": "JWT " + token}
	url := "https://" + c.cfg.Host + "/api/papi/incoming/payment/create/processing/"

	resp, err := transport.PostJSON(ctx, c.hc, url, headers, body)
	if err != nil {
		return nil, domain.NetworkFailure(c.id, err)
	}
	if resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden {
		c.tokens.Delete(tokenKey)
		return nil, domain.AuthFailure(c.id, "session token rejected")
	}
	if !resp.OK() {
		return nil, domain.BusinessFailure(c.id, strconv.Itoa(resp.Status), string(resp.Body))
	}

	var parsed orderResponse
	if err := resp.Decode(&parsed); err != nil {
		return nil, domain.MalformedFailure(c.id, "payment response does not match schema")
	}
	if !parsed.OK {
		return nil, domain.BusinessFailure(c.id, "rejected", parsed.Message)
	}
	if parsed.Payment == nil || parsed.Payment.Card == "" {
		return nil, domain.MalformedFailure(c.id, "payment response missing card requisite")
	}
	return parsed.Payment, nil
}

// sessionToken returns a cached session token, refreshing it when missing or
// within the refresh margin of expiry. At most one refresh is in flight.
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Get(tokenKey); ok {
		return token, nil
	}

	v, err, _ := c.sf.Do(tokenKey, func() (any, error) {
		if token, ok := c.tokens.Get(tokenKey); ok {
			return token, nil
		}
		return c.refreshSession(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) refreshSession(ctx context.Context) (string, error) {
	if c.keyErr != nil {
		return "", domain.AuthFailure(c.id, c.keyErr.Error())
	}

	now := c.clk.Now()
	exp := now.Add(100*time.Second + c.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"exp": exp.Unix(),
		"jti": randomJTI(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.key)
	if err != nil {
		return "", domain.AuthFailure(c.id, "sign session assertion: "+err.Error())
	}

	url := "https://" + c.cfg.Host + "/api/papi/session/jwt/"
	body := map[string]any{"kid": c.cfg.KID, "jwt_token": assertion}
	resp, err := transport.PostJSON(ctx, c.hc, url, nil, body)
	if err != nil {
		return "", domain.NetworkFailure(c.id, err)
	}
	if !resp.OK() {
		return "", domain.AuthFailure(c.id, fmt.Sprintf("session exchange failed with status %d", resp.Status))
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := resp.Decode(&parsed); err != nil || parsed.Token == "" {
		return "", domain.AuthFailure(c.id, "session exchange returned no token")
	}

	// Server-side TTL is undocumented; trust the assertion's exp claim.
	c.tokens.Set(tokenKey, parsed.Token, exp.Sub(now)-refreshMargin)
	return parsed.Token, nil
}

func randomJTI() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
