package jwtx

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the Entra ID access-token claims the console cares about. The
// identity platform emits several overlapping identity and client claims
// depending on token version, so accessors below pick the first populated one.
type Claims struct {
	jwt.RegisteredClaims

	UPN               string   `json:"upn,omitempty"`
	UniqueName        string   `json:"unique_name,omitempty"`
	PreferredUsername string   `json:"preferred_username,omitempty"`
	Email             string   `json:"email,omitempty"`
	Name              string   `json:"name,omitempty"`
	AppID             string   `json:"appid,omitempty"` // v1 tokens
	AuthorizedParty   string   `json:"azp,omitempty"`   // v2 tokens
	Scp               string   `json:"scp,omitempty"`
	Roles             []string `json:"roles,omitempty"`
	TenantID          string   `json:"tid,omitempty"`
	ObjectID          string   `json:"oid,omitempty"`
	IdentityType      string   `json:"idtyp,omitempty"`
}

// Identity returns the user principal name, falling back through the
// alternative claims. Empty for app-only tokens.
func (c Claims) Identity() string {
	for _, v := range []string{c.UPN, c.UniqueName, c.PreferredUsername, c.Email} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c Claims) ClientID() string {
	if c.AppID != "" {
		return c.AppID
	}
	return c.AuthorizedParty
}

// Scope returns delegated scopes, or application roles for app-only tokens.
func (c Claims) Scope() string {
	if c.Scp != "" {
		return c.Scp
	}
	return strings.Join(c.Roles, " ")
}

// Aud returns the first aud value.
func (c Claims) Aud() string {
	if len(c.RegisteredClaims.Audience) == 0 {
		return ""
	}
	return c.RegisteredClaims.Audience[0]
}

// Expiry returns the exp claim, or nil when absent.
func (c Claims) Expiry() *time.Time {
	if c.ExpiresAt == nil {
		return nil
	}
	t := c.ExpiresAt.Time.UTC()
	return &t
}
