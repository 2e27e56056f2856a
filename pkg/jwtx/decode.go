// Package jwtx decodes captured Entra ID JWTs without verifying signatures.
// The identity provider is the trust root; these helpers only read what it
// already issued.
package jwtx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed       = errors.New("jwtx: malformed token")
	ErrMissingAudience = errors.New("jwtx: missing aud claim")
	ErrMissingExpiry   = errors.New("jwtx: missing exp claim")
)

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// LooksLikeJWT reports whether s has exactly three dot-separated segments
// that are each valid base64url.
func LooksLikeJWT(s string) bool {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return false
	}
	for _, p := range parts {
		if _, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(p, "=")); err != nil {
			return false
		}
	}
	return true
}

// Decode parses the payload of a JWT without any claim requirements.
func Decode(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if !LooksLikeJWT(raw) {
		return Claims{}, ErrMalformed
	}

	var claims Claims
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

// DecodeAccessToken is Decode plus the requirement that both aud and exp are
// present, which is what makes a string usable as an access token here.
func DecodeAccessToken(raw string) (Claims, error) {
	claims, err := Decode(raw)
	if err != nil {
		return Claims{}, err
	}
	if claims.Aud() == "" {
		return Claims{}, ErrMissingAudience
	}
	if claims.ExpiresAt == nil {
		return Claims{}, ErrMissingExpiry
	}
	return claims, nil
}
