package consolesdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to a specter console. Every /v1 call carries APIKey; OTP is
// sent when set, for operators with TOTP enabled.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	APIKey string
	OTP    string
}

// NewClient creates a console client. Exchanges can wait on the identity
// provider, so the timeout is generous.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		APIKey: apiKey,
	}
}

// WithOTP returns a copy of c that sends code in X-OTP.
func (c *Client) WithOTP(code string) *Client {
	cp := *c
	cp.OTP = code
	return &cp
}
