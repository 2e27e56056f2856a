package entra

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUpstreamTimeout is returned when an outbound call ran out of time,
// either on the HTTP client deadline or the caller's context.
var ErrUpstreamTimeout = errors.New("upstream_timeout")

// ProviderError is a non-success response from the token endpoint, kept
// verbatim so operators see the exact AADSTS diagnostics.
type ProviderError struct {
	HTTPStatus    int    `json:"-"`
	Code          string `json:"error"`
	Description   string `json:"error_description"`
	ErrorCodes    []int  `json:"error_codes,omitempty"`
	TraceID       string `json:"trace_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("token endpoint returned %d: %s", e.HTTPStatus, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

var aadstsPattern = regexp.MustCompile(`AADSTS\d+`)

// AADSTS returns the first AADSTS code in the description, e.g. "AADSTS50076".
func (e *ProviderError) AADSTS() string {
	return aadstsPattern.FindString(e.Description)
}
