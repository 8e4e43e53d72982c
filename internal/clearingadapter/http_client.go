package clearingadapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fintechrail/paygate/internal/secret"
)

// HTTPClient is the default flow.AdapterClient: a stdlib net/http.Client
// posting the transformed wire message to the resolved adapter endpoint,
// grounded on jonwraymond-toolops's auth/jwks.go use of a plain
// *http.Client with http.NewRequestWithContext rather than a third-party
// HTTP client library.
//
// Endpoint resolves endpoint references (e.g. "secretref:env:SAMOS_URL")
// through Resolver before dialing, satisfying the Non-goal that clearing
// adapter credentials and URLs are supplied by an external key-provider
// interface rather than stored in plaintext configuration.
type HTTPClient struct {
	Resolver *secret.Resolver
	Client   *http.Client
}

// NewHTTPClient constructs an HTTPClient. A nil client defaults to a
// 30-second-timeout *http.Client; per-call timeouts are still governed
// by the caller's context, set by the Resiliency Executor's Timeout
// component.
func NewHTTPClient(resolver *secret.Resolver, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{Resolver: resolver, Client: client}
}

// Send implements flow.AdapterClient.
func (c *HTTPClient) Send(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	resolved := endpoint
	if c.Resolver != nil {
		r, err := c.Resolver.ResolveValue(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("clearingadapter: resolve endpoint: %w", err)
		}
		resolved = r
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resolved, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("clearingadapter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clearingadapter: dispatch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("clearingadapter: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return body, fmt.Errorf("clearingadapter: scheme responded %d", resp.StatusCode)
	}
	return body, nil
}
