package consolesdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/specter/pkg/httpx"
)

// Error codes carried in the "error" field of every error body.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeUnauthorized         = "unauthorized"
	ErrorCodeOTPRequired          = "otp_required"
	ErrorCodeNotFound             = "not_found"
	ErrorCodeConflict             = "conflict"
	ErrorCodeNoActiveContext      = "no_active_context"
	ErrorCodeNoRefreshToken       = "no_refresh_token"
	ErrorCodeCrossIdentity        = "cross_identity_tokens_available"
	ErrorCodeExchangeFailed       = "exchange_failed"
	ErrorCodeInvalidTokenReceived = "invalid_token_received"
	ErrorCodeUpstreamTimeout      = "upstream_timeout"
	ErrorCodeUpstreamError        = "upstream_error"
	ErrorCodeStorageError         = "storage_error"
	ErrorCodeNotRefreshToken      = "not_refresh_token"
	ErrorCodeClientNotInFamily    = "client_not_in_family"
	ErrorCodeSchedulerState       = "scheduler_state"
	ErrorCodeServerError          = "server_error"
)

// Candidate is another identity holding a live token for the requested
// audience.
type Candidate struct {
	UPN       string     `json:"upn"`
	TokenID   string     `json:"token_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// APIError is the console's error body. The server writes it with WriteError
// and the client parses it back from non-2xx responses.
type APIError struct {
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`

	// Set for cross_identity_tokens_available.
	Candidates []Candidate `json:"candidates,omitempty"`

	// Set for exchange_failed: the identity provider's answer, verbatim.
	ProviderError            string `json:"provider_error,omitempty"`
	ProviderErrorDescription string `json:"provider_error_description,omitempty"`
	ProviderStatus           int    `json:"provider_status,omitempty"`
	ErrorCodes               []int  `json:"error_codes,omitempty"`
}

func (e *APIError) Error() string {
	if e.ProviderError != "" {
		return fmt.Sprintf("%s: %s (%s: %s)", e.Code, e.Description, e.ProviderError, e.ProviderErrorDescription)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on the error code so callers can use errors.Is with the
// predefined errors below.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes e as the JSON error body with e.StatusCode.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// WithDescription returns a copy of e carrying desc.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}
	ErrInvalidJSON = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid JSON in request body",
	}
	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}
	ErrNoActiveContext = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeNoActiveContext,
		Description: "no identity given and no active token to take one from",
	}
	ErrNoRefreshToken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeNoRefreshToken,
		Description: "no usable refresh token for this identity",
	}
	ErrInvalidTokenReceived = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        ErrorCodeInvalidTokenReceived,
		Description: "the identity provider returned an unusable access token",
	}
	ErrUpstreamTimeout = &APIError{
		StatusCode:  http.StatusGatewayTimeout,
		Code:        ErrorCodeUpstreamTimeout,
		Description: "the upstream call timed out",
	}
	ErrStorage = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeStorageError,
		Description: "token store failure",
	}
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
