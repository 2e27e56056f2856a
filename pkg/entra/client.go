package entra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/specter/pkg/slogx"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultAuthority = "https://login.microsoftonline.com"
	DefaultTenant    = "common"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// TokenResponse is the v2.0 token endpoint success body.
type TokenResponse struct {
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
	ExtExpiresIn int64  `json:"ext_expires_in,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	FOCI         string `json:"foci,omitempty"`
}

type ClientConfig struct {
	Authority string        // default https://login.microsoftonline.com
	Tenant    string        // default common
	Timeout   time.Duration // default 30s
	RateLimit float64       // requests per second, 0 disables
	Burst     int
	UserAgent string
	Transport http.RoundTripper
}

// Client talks to the identity platform's OAuth2 token endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Authority == "" {
		cfg.Authority = DefaultAuthority
	}
	if cfg.Tenant == "" {
		cfg.Tenant = DefaultTenant
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	c := &Client{
		endpoint:  strings.TrimRight(cfg.Authority, "/") + "/" + cfg.Tenant + "/oauth2/v2.0/token",
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
	}
	if cfg.RateLimit > 0 {
		burst := max(cfg.Burst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// TokenEndpoint returns the URL grants are posted to.
func (c *Client) TokenEndpoint() string { return c.endpoint }

// RedeemRefreshToken performs a refresh_token grant as clientID for scope.
// It never retries: some provider errors (MFA required, CA block) are not
// safe to replay.
func (c *Client) RedeemRefreshToken(
	ctx context.Context,
	clientID, refreshToken, scope string,
) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"refresh_token": {refreshToken},
		"scope":         {scope},
	}
	return c.requestToken(ctx, form)
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	log := slogx.FromContext(ctx)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: waiting for outbound rate limiter: %v", ErrUpstreamTimeout, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("client-request-id", requestID)
	req.Header.Set("return-client-request-id", "true")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if IsTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("failed to send token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		if IsTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	log.Debug("token endpoint call",
		"client_id", form.Get("client_id"),
		"scope", form.Get("scope"),
		"status", resp.StatusCode,
		"client_request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, parseProviderError(resp.StatusCode, body)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		log.Warn("token endpoint returned undecodable body", slog.Int("bytes", len(body)))
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &tokenResp, nil
}

func parseProviderError(status int, body []byte) *ProviderError {
	perr := &ProviderError{}
	if err := json.Unmarshal(body, perr); err != nil || perr.Code == "" {
		perr = &ProviderError{
			Code:        "http_error",
			Description: strings.TrimSpace(string(body)),
		}
		if perr.Description == "" {
			perr.Description = http.StatusText(status)
		}
	}
	perr.HTTPStatus = status
	return perr
}
