package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/pkg/entra"
)

// RefreshSource is a refresh token picked for redemption and the record that
// holds it, so a rotated value can be written back.
type RefreshSource struct {
	Secret   string
	ClientID string // client the refresh token was issued to
	TokenID  string
	Origin   domain.RTOrigin
	Embedded bool // secret lives in the access token's embedded column
}

// RefreshLocator finds a refresh token for an identity. The resolver and the
// scheduler share it so both walk the same tiers:
//
//  1. a refresh token record for the identity issued to targetClient
//  2. a refresh token embedded in an access token record for the identity
//     issued to targetClient, preferred first
//  3. when targetClient is a FOCI member, any refresh token record and then
//     any embedded refresh token for the identity issued to a FOCI member
//     that is not PRT-bound
type RefreshLocator struct {
	Store store.Store
}

func (l *RefreshLocator) Locate(
	ctx context.Context,
	identity, targetClient string,
	preferred *domain.Token,
) (RefreshSource, error) {
	if identity == "" {
		return RefreshSource{}, ErrNoRefreshTokenAvailable
	}
	tokens := l.Store.Tokens()

	records, err := tokens.ListTokens(ctx, store.TokenFilter{
		Kind: domain.KindRefreshToken,
		UPN:  identity,
	})
	if err != nil {
		return RefreshSource{}, fmt.Errorf("listing refresh tokens: %w", err)
	}
	carriers, err := tokens.ListTokens(ctx, store.TokenFilter{
		Kind:               domain.KindAccessToken,
		UPN:                identity,
		HasEmbeddedRefresh: true,
	})
	if err != nil {
		return RefreshSource{}, fmt.Errorf("listing embedded refresh tokens: %w", err)
	}
	if preferred != nil && preferred.EmbeddedRefresh != "" && preferred.UPN == identity {
		carriers = preferFirst(carriers, *preferred)
	}

	for _, rt := range records {
		if sameClient(rt.ClientID, targetClient) && usableRefresh(rt.Secret) {
			return fromRecord(rt, domain.OriginRefreshRecord), nil
		}
	}
	for _, at := range carriers {
		if sameClient(at.ClientID, targetClient) && usableRefresh(at.EmbeddedRefresh) {
			return fromCarrier(at, domain.OriginEmbedded), nil
		}
	}

	if !entra.IsFOCI(targetClient) {
		return RefreshSource{}, ErrNoRefreshTokenAvailable
	}
	for _, rt := range records {
		if rt.IsFOCI() && !rt.PRTBound && rt.Classification != domain.ClassPRTBound && usableRefresh(rt.Secret) {
			return fromRecord(rt, domain.OriginFOCIFamily), nil
		}
	}
	for _, at := range carriers {
		if at.IsFOCI() && !at.PRTBound && usableRefresh(at.EmbeddedRefresh) {
			return fromCarrier(at, domain.OriginFOCIFamily), nil
		}
	}
	return RefreshSource{}, ErrNoRefreshTokenAvailable
}

func fromRecord(t domain.Token, origin domain.RTOrigin) RefreshSource {
	return RefreshSource{Secret: t.Secret, ClientID: t.ClientID, TokenID: t.ID, Origin: origin}
}

func fromCarrier(t domain.Token, origin domain.RTOrigin) RefreshSource {
	return RefreshSource{Secret: t.EmbeddedRefresh, ClientID: t.ClientID, TokenID: t.ID, Origin: origin, Embedded: true}
}

func preferFirst(list []domain.Token, p domain.Token) []domain.Token {
	out := make([]domain.Token, 0, len(list)+1)
	out = append(out, p)
	for _, t := range list {
		if t.ID != p.ID {
			out = append(out, t)
		}
	}
	return out
}

func sameClient(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func usableRefresh(secret string) bool {
	return secret != "" && !strings.HasSuffix(secret, domain.TruncationMarker)
}
