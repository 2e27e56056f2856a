// Package jwtxtest mints unsigned-looking Entra ID style tokens for tests.
package jwtxtest

import (
	"time"

	"github.com/aussiebroadwan/specter/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("jwtxtest-signing-key")

// Options describe the token to mint. Zero values are omitted from the
// payload, except ExpiresIn which defaults to one hour.
type Options struct {
	Audience  string
	UPN       string
	ClientID  string
	Scope     string
	TenantID  string
	ExpiresIn time.Duration
	NoExpiry  bool
	Now       time.Time
}

// Mint returns an HS256-signed JWT carrying the requested claims.
func Mint(opts Options) string {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	ttl := opts.ExpiresIn
	if ttl == 0 {
		ttl = time.Hour
	}

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
		UPN:      opts.UPN,
		AppID:    opts.ClientID,
		Scp:      opts.Scope,
		TenantID: opts.TenantID,
	}
	if opts.Audience != "" {
		claims.RegisteredClaims.Audience = jwt.ClaimStrings{opts.Audience}
	}
	if !opts.NoExpiry {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		panic(err)
	}
	return s
}
