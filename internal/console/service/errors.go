package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/specter/pkg/entra"
)

var (
	ErrNoActiveContext         = errors.New("no_active_context")
	ErrNoRefreshTokenAvailable = errors.New("no_refresh_token")
	ErrInvalidTokenReceived    = errors.New("invalid_token_received")
	ErrInvalidRequest          = errors.New("invalid_request")

	// ErrNotRedeemable is returned when a refresh token is asked to redeem as a
	// client outside its family.
	ErrNotRedeemable = errors.New("client_not_in_family")

	// ErrUpstreamTimeout is the identity platform or a resource API running
	// out of time.
	ErrUpstreamTimeout = entra.ErrUpstreamTimeout
)

// ExchangeError is the identity platform rejecting a grant. Code and
// Description are the provider's own text.
type ExchangeError = entra.ProviderError

// Candidate is another identity holding a usable token for the audience.
type Candidate struct {
	UPN       string     `json:"upn"`
	TokenID   string     `json:"token_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CrossIdentityError reports that the requested identity has nothing for the
// audience while other identities do. The caller decides whether to switch.
type CrossIdentityError struct {
	Audience   string
	Identity   string
	Candidates []Candidate
}

func (e *CrossIdentityError) Error() string {
	upns := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		upns[i] = c.UPN
	}
	return fmt.Sprintf("no %s token for %s; available for: %s",
		e.Audience, e.Identity, strings.Join(upns, ", "))
}
