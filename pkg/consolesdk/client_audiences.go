package consolesdk

import (
	"context"
	"net/http"
	"net/url"
)

// Resolve returns a usable access token for audience. An empty upn means the
// active token's identity. The raw token is only returned with reveal.
func (c *Client) Resolve(ctx context.Context, req ResolveRequest) (*ResolveResponse, error) {
	var out ResolveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/audiences/resolve", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAudiences reports which well-known audiences the identity can reach.
func (c *Client) ListAudiences(ctx context.Context, upn string) (*AudiencesResponse, error) {
	path := "/v1/audiences"
	if upn != "" {
		path += "?upn=" + url.QueryEscape(upn)
	}

	var out AudiencesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListClients returns the client registry. fociOnly limits it to family
// members.
func (c *Client) ListClients(ctx context.Context, fociOnly bool) (*ListClientsResponse, error) {
	path := "/v1/clients"
	if fociOnly {
		path += "?foci=true"
	}

	var out ListClientsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GraphMe fetches /me from Microsoft Graph as upn, through the console's
// response cache. The body is returned undecoded.
func (c *Client) GraphMe(ctx context.Context, upn string) (map[string]any, error) {
	path := "/v1/graph/me"
	if upn != "" {
		path += "?upn=" + url.QueryEscape(upn)
	}

	var out map[string]any
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearCache drops cached upstream responses, for one identity when upn is
// set and otherwise all of them.
func (c *Client) ClearCache(ctx context.Context, upn string) error {
	path := "/v1/cache"
	if upn != "" {
		path += "?upn=" + url.QueryEscape(upn)
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent)
}
