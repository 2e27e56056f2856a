package consolesdk

import (
	"context"
	"net/http"
)

// EnrollTOTP starts TOTP enrollment for the calling operator. The secret is
// not enforced until VerifyTOTP succeeds.
func (c *Client) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/operators/me/totp/enroll", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyTOTP(ctx context.Context, code string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/operators/me/totp/verify", TOTPVerifyRequest{Code: code}, nil, http.StatusNoContent)
}

// RotateAPIKey replaces the calling operator's key. The old key stops
// working immediately; the client keeps using the new one.
func (c *Client) RotateAPIKey(ctx context.Context) (string, error) {
	var out APIKeyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/operators/me/api-key", nil, &out, http.StatusOK); err != nil {
		return "", err
	}
	c.APIKey = out.APIKey
	return out.APIKey, nil
}
