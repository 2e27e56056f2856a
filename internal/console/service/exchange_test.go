package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/entra/entratest"
	"github.com/aussiebroadwan/specter/pkg/jwtx/jwtxtest"
	"github.com/stretchr/testify/require"
)

func tokenTotal(t *testing.T, f *fixture) int64 {
	t.Helper()
	counts, err := f.store.Tokens().CountTokens(context.Background(), time.Now())
	require.NoError(t, err)
	return counts.Total
}

func TestExchangeExpiryComesFromClaim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.idp.Respond(func(c entratest.Call) entratest.Response {
		body := f.idp.Minted(c)
		body["expires_in"] = 999999
		body["access_token"] = jwtxtest.Mint(jwtxtest.Options{
			Audience:  entra.AudienceGraph,
			UPN:       alice,
			ExpiresIn: time.Hour,
		})
		return entratest.Response{Status: http.StatusOK, Body: body}
	})

	rt := refreshToken(alice, entra.BrokerClientID)
	f.add(t, rt)

	tok, out, err := f.exchange.Redeem(ctx, RedeemRequest{
		Source:   RefreshSource{Secret: rt.Secret, ClientID: rt.ClientID, TokenID: rt.ID, Origin: domain.OriginRefreshRecord},
		ClientID: entra.BrokerClientID,
		Scope:    entra.DefaultScope(entra.AudienceGraph),
	})
	require.NoError(t, err)
	require.EqualValues(t, 999999, out.ExpiresIn)

	limit := time.Now().Add(time.Hour + time.Minute)
	require.True(t, out.ExpiresAt.Before(limit), "expiry must come from exp, got %s", out.ExpiresAt)

	stored := f.get(t, tok.ID)
	require.NotNil(t, stored.ExpiresAt)
	require.True(t, stored.ExpiresAt.Before(limit))
	require.WithinDuration(t, out.ExpiresAt, *stored.ExpiresAt, time.Second)
}

func TestExchangeRejectsInvalidTokens(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		token string
	}{
		{"opaque", "not-a-jwt"},
		{"two segments", "eyJhbGciOiJIUzI1NiJ9.eyJhdWQiOiJ4In0"},
		{"missing exp", jwtxtest.Mint(jwtxtest.Options{Audience: entra.AudienceGraph, NoExpiry: true})},
		{"missing aud", jwtxtest.Mint(jwtxtest.Options{UPN: alice})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newFixture(t)

			f.idp.Respond(func(c entratest.Call) entratest.Response {
				body := f.idp.Minted(c)
				body["access_token"] = tc.token
				body["refresh_token"] = "rotated-but-ignored"
				return entratest.Response{Status: http.StatusOK, Body: body}
			})

			rt := refreshToken(alice, entra.BrokerClientID)
			f.add(t, rt)
			before := tokenTotal(t, f)

			_, _, err := f.exchange.Redeem(ctx, RedeemRequest{
				Source:   RefreshSource{Secret: rt.Secret, ClientID: rt.ClientID, TokenID: rt.ID},
				ClientID: entra.BrokerClientID,
				Scope:    entra.DefaultScope(entra.AudienceGraph),
			})
			require.ErrorIs(t, err, ErrInvalidTokenReceived)
			require.Equal(t, before, tokenTotal(t, f), "a rejected token must not be stored")
			require.Equal(t, rt.Secret, f.get(t, rt.ID).Secret, "no rotation on failure")
		})
	}
}

func TestExchangeSurfacesProviderErrorVerbatim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	const desc = "AADSTS50076: Due to a configuration change made by your administrator, you must use multi-factor authentication."
	f.idp.Respond(func(entratest.Call) entratest.Response {
		return entratest.Error(http.StatusBadRequest, "invalid_grant", desc)
	})

	rt := refreshToken(alice, entra.BrokerClientID)
	f.add(t, rt)

	_, _, err := f.exchange.Redeem(ctx, RedeemRequest{
		Source:   RefreshSource{Secret: rt.Secret, ClientID: rt.ClientID, TokenID: rt.ID},
		ClientID: entra.BrokerClientID,
		Scope:    entra.DefaultScope(entra.AudienceGraph),
	})

	var xerr *ExchangeError
	require.True(t, errors.As(err, &xerr))
	require.Equal(t, http.StatusBadRequest, xerr.HTTPStatus)
	require.Equal(t, "invalid_grant", xerr.Code)
	require.Equal(t, desc, xerr.Description)
	require.Equal(t, "AADSTS50076", xerr.AADSTS())

	require.Len(t, f.idp.Calls(), 1, "provider errors are never retried")
	require.Nil(t, f.get(t, rt.ID).LastUsedAt)
}

func TestRedeemRotatesAndRecordsLineage(t *testing.T) {
	t.Parallel()

	t.Run("refresh token record", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		f := newFixture(t)
		f.idp.Respond(func(c entratest.Call) entratest.Response {
			body := f.idp.Minted(c)
			body["refresh_token"] = "rotated-refresh-token"
			return entratest.Response{Status: http.StatusOK, Body: body}
		})

		rt := refreshToken(alice, teamsClient)
		f.add(t, rt)

		tok, out, err := f.exchange.Redeem(ctx, RedeemRequest{
			Source:   RefreshSource{Secret: rt.Secret, ClientID: rt.ClientID, TokenID: rt.ID, Origin: domain.OriginFOCIFamily},
			ClientID: entra.BrokerClientID,
			Scope:    entra.DefaultScope(entra.AudienceARM),
			Origin:   domain.SourceFOCIExchange,
			Activate: true,
		})
		require.NoError(t, err)
		require.True(t, out.Rotated)
		require.Equal(t, rt.ID, tok.ParentID)
		require.Equal(t, entra.AudienceARM, tok.Audience)
		require.Equal(t, domain.SourceFOCIExchange, tok.Source)
		require.Equal(t, alice, tok.UPN)

		src := f.get(t, rt.ID)
		require.Equal(t, "rotated-refresh-token", src.Secret)
		require.NotNil(t, src.LastUsedAt)

		active, err := f.store.Tokens().GetActiveToken(ctx)
		require.NoError(t, err)
		require.Equal(t, tok.ID, active.ID)
	})

	t.Run("embedded refresh token", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		f := newFixture(t)
		f.idp.Respond(func(c entratest.Call) entratest.Response {
			body := f.idp.Minted(c)
			body["refresh_token"] = "rotated-embedded"
			return entratest.Response{Status: http.StatusOK, Body: body}
		})

		carrier := accessToken(alice, entra.BrokerClientID, entra.AudienceGraph, time.Hour)
		carrier.EmbeddedRefresh = "embedded-refresh-token"
		f.add(t, carrier)

		tok, _, err := f.exchange.Redeem(ctx, RedeemRequest{
			Source: RefreshSource{
				Secret:   carrier.EmbeddedRefresh,
				ClientID: carrier.ClientID,
				TokenID:  carrier.ID,
				Origin:   domain.OriginEmbedded,
				Embedded: true,
			},
			ClientID: entra.BrokerClientID,
			Scope:    entra.DefaultScope(entra.AudienceOutlook),
		})
		require.NoError(t, err)
		require.Equal(t, carrier.ID, tok.ParentID)

		got := f.get(t, carrier.ID)
		require.Equal(t, "rotated-embedded", got.EmbeddedRefresh)
		require.Equal(t, carrier.Secret, got.Secret, "the access token itself is untouched")
	})

	t.Run("unchanged refresh token is not rewritten", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		f := newFixture(t)

		rt := refreshToken(alice, entra.BrokerClientID)
		f.add(t, rt)

		_, out, err := f.exchange.Redeem(ctx, RedeemRequest{
			Source:   RefreshSource{Secret: rt.Secret, ClientID: rt.ClientID, TokenID: rt.ID},
			ClientID: entra.BrokerClientID,
			Scope:    entra.DefaultScope(entra.AudienceGraph),
		})
		require.NoError(t, err)
		require.False(t, out.Rotated)
		require.Equal(t, rt.Secret, f.get(t, rt.ID).Secret)
	})
}

func TestRedeemCompletesAfterCallerCancels(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.idp.Respond(func(c entratest.Call) entratest.Response {
		body := f.idp.Minted(c)
		body["refresh_token"] = "rotated-refresh-token"
		return entratest.Response{Status: http.StatusOK, Body: body, Delay: 300 * time.Millisecond}
	})

	rt := refreshToken(alice, entra.BrokerClientID)
	f.add(t, rt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for len(f.idp.Calls()) == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
	}()

	tok, out, err := f.exchange.Redeem(ctx, RedeemRequest{
		Source:   RefreshSource{Secret: rt.Secret, ClientID: rt.ClientID, TokenID: rt.ID},
		ClientID: entra.BrokerClientID,
		Scope:    entra.DefaultScope(entra.AudienceGraph),
	})
	require.NoError(t, err)
	require.Error(t, ctx.Err())
	require.True(t, out.Rotated)
	require.Equal(t, rt.ID, f.get(t, tok.ID).ParentID)
	require.Equal(t, "rotated-refresh-token", f.get(t, rt.ID).Secret)
}

func TestExchangeNormalizesAliasedAudience(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.idp.Respond(func(c entratest.Call) entratest.Response {
		body := f.idp.Minted(c)
		body["access_token"] = jwtxtest.Mint(jwtxtest.Options{
			Audience: "cfa8b339-82a2-471a-a3c9-0fc0be7a4093",
			UPN:      alice,
		})
		return entratest.Response{Status: http.StatusOK, Body: body}
	})

	out, err := f.exchange.Exchange(ctx, "some-refresh-token", entra.BrokerClientID, entra.DefaultScope(entra.AudienceKeyVault))
	require.NoError(t, err)
	require.Equal(t, entra.AudienceKeyVault, out.Audience)
	require.Equal(t, alice, out.UPN)
}

func TestExchangeTimeout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.idp.Respond(func(c entratest.Call) entratest.Response {
		return entratest.Response{Status: http.StatusOK, Body: f.idp.Minted(c), Delay: 2 * time.Second}
	})
	f.exchange.Provider = entra.NewClient(entra.ClientConfig{Authority: f.idp.URL, Timeout: 100 * time.Millisecond})

	_, err := f.exchange.Exchange(ctx, "rt", entra.BrokerClientID, entra.DefaultScope(entra.AudienceGraph))
	require.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestExchangeRequiresInputs(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.exchange.Exchange(context.Background(), "", entra.BrokerClientID, "scope")
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.Empty(t, f.idp.Calls())
}
