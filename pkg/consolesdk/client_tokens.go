package consolesdk

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// ListTokens lists stored tokens, newest expiry first, with truncated
// secrets.
func (c *Client) ListTokens(ctx context.Context, opts ListTokensOptions) (*ListTokensResponse, error) {
	q := url.Values{}
	if opts.Kind != "" {
		q.Set("kind", opts.Kind)
	}
	if opts.UPN != "" {
		q.Set("upn", opts.UPN)
	}
	if opts.Audience != "" {
		q.Set("audience", opts.Audience)
	}
	if opts.ClientID != "" {
		q.Set("client_id", opts.ClientID)
	}
	if opts.ActiveOnly {
		q.Set("active_only", "true")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/v1/tokens"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out ListTokensResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetToken fetches one token. full reveals the untruncated secrets.
func (c *Client) GetToken(ctx context.Context, id string, full bool) (*Token, error) {
	path := "/v1/tokens/" + pathID(id)
	if full {
		path += "?full=true"
	}

	var out Token
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetActiveToken(ctx context.Context) (*Token, error) {
	var out Token
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tokens/active", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ActivateToken(ctx context.Context, id string) (*Token, error) {
	var out Token
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tokens/"+pathID(id)+"/activate", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteToken(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/tokens/"+pathID(id), nil, nil, http.StatusNoContent)
}

// DeleteExpired removes expired access tokens that carry no refresh token.
func (c *Client) DeleteExpired(ctx context.Context) (*DeleteExpiredResponse, error) {
	var out DeleteExpiredResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/v1/tokens/expired", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TokenStats(ctx context.Context) (*TokenStats, error) {
	var out TokenStats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tokens/stats", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportBroker uploads a broker cache export as-is. filename is recorded as
// the import source.
func (c *Client) ImportBroker(ctx context.Context, export io.Reader, filename string) (*ImportResponse, error) {
	path := "/v1/tokens/import"
	if filename != "" {
		path += "?filename=" + url.QueryEscape(filename)
	}

	resp, err := c.doAuthRequest(ctx, http.MethodPost, path, export)
	if err != nil {
		return nil, err
	}

	var out ImportResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ImportJWT(ctx context.Context, req ImportJWTRequest) (*Token, error) {
	var out Token
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tokens/import-jwt", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ImportRefresh(ctx context.Context, req ImportRefreshRequest) (*Token, error) {
	var out Token
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tokens/import-refresh", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
