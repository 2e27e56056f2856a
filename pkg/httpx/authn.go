package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/specter/pkg/slogx"
)

const (
	HeaderAPIKey = "X-API-Key"
	HeaderOTP    = "X-OTP"
)

var (
	// ErrUnauthenticated means the credentials were missing or wrong.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrOTPRequired means the key is valid but the operator has TOTP enabled
	// and the request carried no valid code.
	ErrOTPRequired = errors.New("otp required")
)

// Principal is who a request is acting as.
type Principal struct {
	OperatorID string
	Username   string
}

// Authenticator checks an operator API key and optional one-time code.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey, otp string) (Principal, error)
}

// APIKeyFromRequest pulls the key from "Authorization: Bearer" or X-API-Key.
func APIKeyFromRequest(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		if key, ok := strings.CutPrefix(authz, "Bearer "); ok {
			return strings.TrimSpace(key)
		}
	}
	return strings.TrimSpace(r.Header.Get(HeaderAPIKey))
}

// AuthnMiddleware rejects requests without a valid operator API key and puts
// the operator on the request context.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := APIKeyFromRequest(r)
			if key == "" {
				writeAuthError(w, "missing api key")
				return
			}

			p, err := a.Authenticate(ctx, key, strings.TrimSpace(r.Header.Get(HeaderOTP)))
			switch {
			case err == nil:
			case errors.Is(err, ErrOTPRequired):
				WriteError(w, http.StatusUnauthorized, "otp_required", "a valid X-OTP code is required")
				return
			case errors.Is(err, ErrUnauthenticated):
				writeAuthError(w, "invalid api key")
				return
			default:
				log.Error("operator authentication failed", "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "authentication unavailable")
				return
			}

			ctx = WithOperator(ctx, p.OperatorID, p.Username)
			ctx = slogx.WithAttrs(ctx, "operator", p.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", desc)
}
