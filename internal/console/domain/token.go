package domain

import (
	"strings"
	"time"

	"github.com/aussiebroadwan/specter/pkg/entra"
)

type TokenKind string

const (
	KindAccessToken  TokenKind = "access_token"
	KindRefreshToken TokenKind = "refresh_token"
	KindNGCToken     TokenKind = "ngc_token"
)

func (k TokenKind) Valid() bool {
	switch k {
	case KindAccessToken, KindRefreshToken, KindNGCToken:
		return true
	}
	return false
}

type TokenSource string

const (
	SourceImported     TokenSource = "imported"
	SourceImportedJWT  TokenSource = "imported_jwt"
	SourceBroker       TokenSource = "broker"
	SourceRefresh      TokenSource = "refresh"
	SourceFOCIExchange TokenSource = "foci_exchange"
)

// Classification applies to refresh tokens only and is fixed at creation.
type Classification string

const (
	ClassFOCI       Classification = "FOCI"
	ClassPRTBound   Classification = "PRT_BOUND"
	ClassStandalone Classification = "STANDALONE"
)

// Classify derives a refresh token's classification. PRT binding wins over
// family membership because a PRT-bound token cannot be redeemed off-device.
func Classify(clientID string, prtBound bool) Classification {
	switch {
	case prtBound:
		return ClassPRTBound
	case entra.IsFOCI(clientID):
		return ClassFOCI
	default:
		return ClassStandalone
	}
}

// Token is a captured or derived credential.
type Token struct {
	ID              string
	Kind            TokenKind
	ClientID        string
	UPN             string // "" when unknown, e.g. service principals
	Scope           string
	Audience        string // normalized resource URL
	Secret          string
	EmbeddedRefresh string // refresh token captured with an access token
	ExpiresAt       *time.Time
	IsActive        bool
	Source          TokenSource
	ParentID        string
	Classification  Classification
	PRTBound        bool
	DisplayName     string
	SourceType      string
	BrokerCachePath string
	ImportedFrom    string
	TenantID        string
	Metadata        map[string]string
	LastUsedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsExpired reports whether the token has an expiry at or before now. Tokens
// without an expiry never expire.
func (t Token) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

func (t Token) IsAccessToken() bool  { return t.Kind == KindAccessToken }
func (t Token) IsRefreshToken() bool { return t.Kind == KindRefreshToken }

// IsFOCI reports whether the issuing client belongs to the FOCI family.
func (t Token) IsFOCI() bool { return entra.IsFOCI(t.ClientID) }

// IsPlaceholder reports whether the secret is a truncated display value
// rather than a usable bearer string.
func (t Token) IsPlaceholder() bool {
	return t.Secret == "" || strings.HasSuffix(t.Secret, TruncationMarker)
}

const (
	TruncationMarker = "..."
	truncateLen      = 50
)

// TruncateSecret shortens a secret for display.
func TruncateSecret(s string) string {
	if len(s) <= truncateLen {
		return s
	}
	return s[:truncateLen] + TruncationMarker
}

// Truncated returns a copy safe to hand out without the privileged reveal.
func (t Token) Truncated() Token {
	t.Secret = TruncateSecret(t.Secret)
	t.EmbeddedRefresh = TruncateSecret(t.EmbeddedRefresh)
	return t
}
