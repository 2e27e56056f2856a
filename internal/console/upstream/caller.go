// Package upstream performs authenticated reads against resource APIs
// (Graph, ARM, ...) with tokens from the resolver, caching successful
// responses per identity.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/cache"
	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/slogx"
)

const (
	DefaultTimeout = 30 * time.Second
	maxBody        = 4 << 20
)

// TokenSource hands out access tokens. *service.Resolver satisfies it.
type TokenSource interface {
	Resolve(ctx context.Context, audience, identity string) (service.UsableToken, error)
}

// Request describes one cached GET.
type Request struct {
	Audience  string
	Identity  string // "" means the active token's identity
	URL       string
	Operation string // cache namespace, e.g. "graph.me"
	Params    any
	TTL       time.Duration // 0 uses the cache default
}

// StatusError is a non-2xx answer from the resource API.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, truncate(e.Body, 200))
}

type Caller struct {
	Tokens     TokenSource
	Cache      cache.Cache
	HTTPClient *http.Client
}

// NewCaller builds a caller whose requests go through transport (nil for the
// default transport).
func NewCaller(tokens TokenSource, c cache.Cache, transport http.RoundTripper, timeout time.Duration) *Caller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Caller{
		Tokens: tokens,
		Cache:  c,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// GetJSON resolves a token for req.Audience, serves the body from cache when
// present and otherwise fetches req.URL, caching 2xx bodies before decoding
// them into out.
func (c *Caller) GetJSON(ctx context.Context, req Request, out any) error {
	tok, err := c.Tokens.Resolve(ctx, req.Audience, req.Identity)
	if err != nil {
		return err
	}

	log := slogx.FromContext(ctx).With("operation", req.Operation, "upn", tok.UPN)
	key := cache.Key{Scope: tok.UPN, Operation: req.Operation, Params: req.Params}

	if c.Cache != nil {
		if body, ok := c.Cache.Get(key); ok {
			log.Debug("upstream cache hit")
			return decode(body, out)
		}
	}

	body, err := c.fetch(ctx, req.URL, tok.AccessToken)
	if err != nil {
		log.Warn("upstream call failed", "error", err)
		return err
	}

	if c.Cache != nil {
		c.Cache.Set(key, body, req.TTL)
	}
	return decode(body, out)
}

func (c *Caller) fetch(ctx context.Context, url, bearer string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if entra.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %v", entra.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if entra.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %v", entra.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
