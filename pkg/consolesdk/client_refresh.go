package consolesdk

import (
	"context"
	"net/http"
)

// UseRefreshToken redeems a stored refresh token, optionally as another FOCI
// client.
func (c *Client) UseRefreshToken(ctx context.Context, id string, req UseRefreshRequest) (*UseRefreshResponse, error) {
	var out UseRefreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/refresh/"+pathID(id)+"/use", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FOCITargets(ctx context.Context, id string) (*FOCITargetsResponse, error) {
	var out FOCITargetsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/refresh/"+pathID(id)+"/foci-targets", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RefreshStats(ctx context.Context) (*RefreshStats, error) {
	var out RefreshStats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/refresh/stats", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
