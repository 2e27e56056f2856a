package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/idx"
	"github.com/aussiebroadwan/specter/pkg/jwtx"
	"github.com/aussiebroadwan/specter/pkg/slogx"
)

// TokenRedeemer is the identity-platform call the exchange depends on.
// *entra.Client satisfies it.
type TokenRedeemer interface {
	RedeemRefreshToken(ctx context.Context, clientID, refreshToken, scope string) (*entra.TokenResponse, error)
}

// ExchangeOutcome is a validated token endpoint answer. Nothing is persisted
// yet.
type ExchangeOutcome struct {
	AccessToken  string
	RefreshToken string // as returned; equals the submitted one when not rotated
	Rotated      bool
	ClientID     string
	Scope        string // granted scope as reported by the provider
	Audience     string // normalized
	UPN          string
	TenantID     string
	ExpiresAt    time.Time // from the exp claim
	ExpiresIn    int64     // advisory value from the response body
}

// ExchangeService mints access tokens from refresh tokens.
type ExchangeService struct {
	Provider TokenRedeemer
	Store    store.Store
	Now      func() time.Time
}

func (s *ExchangeService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Exchange redeems refreshSecret as clientID for targetScope and validates the
// returned access token. It never retries and never writes to the store.
func (s *ExchangeService) Exchange(ctx context.Context, refreshSecret, clientID, targetScope string) (ExchangeOutcome, error) {
	log := slogx.FromContext(ctx).With("client_id", clientID, "scope", targetScope)

	if refreshSecret == "" || clientID == "" || targetScope == "" {
		return ExchangeOutcome{}, fmt.Errorf("%w: refresh token, client id and scope are required", ErrInvalidRequest)
	}

	resp, err := s.Provider.RedeemRefreshToken(ctx, clientID, refreshSecret, targetScope)
	if err != nil {
		var perr *entra.ProviderError
		if errors.As(err, &perr) {
			log.Warn("token exchange rejected",
				"status", perr.HTTPStatus,
				"error", perr.Code,
				"aadsts", perr.AADSTS(),
			)
			return ExchangeOutcome{}, perr
		}
		log.Warn("token exchange failed", "error", err)
		return ExchangeOutcome{}, err
	}

	claims, err := jwtx.DecodeAccessToken(resp.AccessToken)
	if err != nil {
		log.Warn("token endpoint returned an unusable access token", "error", err)
		return ExchangeOutcome{}, fmt.Errorf("%w: %v", ErrInvalidTokenReceived, err)
	}

	out := ExchangeOutcome{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Rotated:      resp.RefreshToken != "" && resp.RefreshToken != refreshSecret,
		ClientID:     clientID,
		Scope:        resp.Scope,
		Audience:     entra.NormalizeAudience(claims.Aud(), targetScope),
		UPN:          normalizeUPN(claims.Identity()),
		TenantID:     claims.TenantID,
		ExpiresAt:    *claims.Expiry(),
		ExpiresIn:    resp.ExpiresIn,
	}
	if out.RefreshToken == "" {
		out.RefreshToken = refreshSecret
	}
	if claims.Scope() != "" {
		out.Scope = claims.Scope()
	}

	log.Info("token exchanged",
		"audience", out.Audience,
		"expires_at", out.ExpiresAt,
		"rotated", out.Rotated,
	)
	return out, nil
}

// RedeemRequest asks for a refresh token to be exchanged and the result
// stored.
type RedeemRequest struct {
	Source   RefreshSource
	ClientID string // client to redeem as
	Scope    string
	UPN      string // used when the new token carries no identity claim
	Origin   domain.TokenSource
	Activate bool
}

// Redeem runs Exchange and, in one transaction, stores the derived access
// token with lineage to the refresh token's record, writes back a rotated
// refresh token and marks the source used. A failed exchange writes nothing.
// Cancelling ctx does not abort a redemption in flight.
func (s *ExchangeService) Redeem(ctx context.Context, req RedeemRequest) (domain.Token, ExchangeOutcome, error) {
	// Once issued, an exchange runs until it completes or the client times
	// out. The provider may already have rotated the refresh token.
	ctx = context.WithoutCancel(ctx)

	out, err := s.Exchange(ctx, req.Source.Secret, req.ClientID, req.Scope)
	if err != nil {
		return domain.Token{}, ExchangeOutcome{}, err
	}

	now := s.now()
	expires := out.ExpiresAt
	tok := domain.Token{
		ID:        idx.NewAt(now).String(),
		Kind:      domain.KindAccessToken,
		ClientID:  req.ClientID,
		UPN:       out.UPN,
		Scope:     out.Scope,
		Audience:  out.Audience,
		Secret:    out.AccessToken,
		ExpiresAt: &expires,
		Source:    req.Origin,
		ParentID:  req.Source.TokenID,
		TenantID:  out.TenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tok.UPN == "" {
		tok.UPN = normalizeUPN(req.UPN)
	}
	if tok.Source == "" {
		tok.Source = domain.SourceRefresh
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		tokens := tx.Tokens()
		if err := tokens.CreateToken(ctx, tok); err != nil {
			return fmt.Errorf("storing derived token: %w", err)
		}
		if req.Source.TokenID == "" {
			return nil
		}
		if out.Rotated {
			rotate := tokens.RotateSecret
			if req.Source.Embedded {
				rotate = tokens.RotateEmbeddedRefresh
			}
			if err := rotate(ctx, req.Source.TokenID, out.RefreshToken, now); err != nil {
				return fmt.Errorf("rotating refresh token: %w", err)
			}
		}
		if err := tokens.MarkUsed(ctx, req.Source.TokenID, now); err != nil {
			return fmt.Errorf("marking refresh token used: %w", err)
		}
		if req.Activate {
			if err := tokens.SetActive(ctx, tok.ID); err != nil {
				return fmt.Errorf("activating derived token: %w", err)
			}
			tok.IsActive = true
		}
		return nil
	})
	if err != nil {
		return domain.Token{}, ExchangeOutcome{}, err
	}

	slogx.FromContext(ctx).Info("derived token stored",
		"token_id", tok.ID,
		"parent_id", tok.ParentID,
		"audience", tok.Audience,
		"source", tok.Source,
	)
	return tok, out, nil
}

func normalizeUPN(upn string) string {
	return strings.ToLower(strings.TrimSpace(upn))
}
