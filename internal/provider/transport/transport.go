// Package transport carries the one HTTP round trip every provider client
// performs. Clients interpret statuses and bodies themselves; this layer only
// moves JSON and reports transport-level errors.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/I7ZT1/club-manager-panel/internal/observability/tracing"
)

// DefaultTimeout bounds a single provider call end to end.
const DefaultTimeout = 10 * time.Second

// Response is a completed provider call: status plus the raw body.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the body into out.
func (r *Response) Decode(out any) error {
	return json.Unmarshal(r.Body, out)
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// NewClient returns an instrumented http.Client with the provider-call
// timeout applied.
func NewClient() *http.Client {
	return tracing.WrapHTTPClient(&http.Client{Timeout: DefaultTimeout})
}

// PostJSON sends body as JSON and returns the raw response regardless of
// status. A non-nil error means the call itself failed (DNS, dial, timeout,
// cancelled context); HTTP error statuses are returned to the caller intact.
func PostJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return do(ctx, hc, http.MethodPost, url, headers, payload)
}

// PostRaw sends a pre-encoded JSON payload. Used where the request signature
// is computed over the exact bytes on the wire.
func PostRaw(ctx context.Context, hc *http.Client, url string, headers map[string]string, payload []byte) (*Response, error) {
	return do(ctx, hc, http.MethodPost, url, headers, payload)
}

func do(ctx context.Context, hc *http.Client, method, url string, headers map[string]string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}
