package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/entra/entratest"
	"github.com/aussiebroadwan/specter/pkg/jwtx/jwtxtest"
	"github.com/stretchr/testify/require"
)

func (f *fixture) activate(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.Tokens().SetActive(context.Background(), id))
}

func TestResolveActiveTokenSkipsProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	at := accessToken(alice, entra.BrokerClientID, entra.AudienceGraph, time.Hour)
	f.add(t, at, refreshToken(alice, entra.BrokerClientID))
	f.activate(t, at.ID)

	got, err := f.resolver.Resolve(ctx, entra.AudienceGraph, "")
	require.NoError(t, err)
	require.Equal(t, at.ID, got.TokenID)
	require.Equal(t, ViaActive, got.Via)
	require.Equal(t, at.Secret, got.AccessToken)
	require.Empty(t, f.idp.Calls())

	require.NotNil(t, f.get(t, at.ID).LastUsedAt)
}

func TestResolvePicksLatestExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	anchor := accessToken(alice, entra.BrokerClientID, entra.AudienceOutlook, time.Hour)
	soon := accessToken(alice, entra.BrokerClientID, entra.AudienceGraph, 30*time.Minute)
	later := accessToken(alice, teamsClient, entra.AudienceGraph, 2*time.Hour)
	theirs := accessToken(bob, entra.BrokerClientID, entra.AudienceGraph, 3*time.Hour)
	f.add(t, anchor, soon, later, theirs)
	f.activate(t, anchor.ID)

	got, err := f.resolver.Resolve(ctx, "https://graph.microsoft.com/", "")
	require.NoError(t, err)
	require.Equal(t, later.ID, got.TokenID)
	require.Equal(t, ViaExisting, got.Via)
	require.Empty(t, f.idp.Calls())
}

func TestResolveIdentityIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	at := accessToken(alice, entra.BrokerClientID, entra.AudienceGraph, time.Hour)
	f.add(t, at)

	got, err := f.resolver.Resolve(context.Background(), entra.AudienceGraph, "  Alice@Contoso.COM ")
	require.NoError(t, err)
	require.Equal(t, at.ID, got.TokenID)
}

func TestResolveAcceptsResourceAppID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	at := accessToken(alice, entra.BrokerClientID, entra.AudienceARM, time.Hour)
	f.add(t, at)

	got, err := f.resolver.Resolve(context.Background(), "797f4846-ba00-4fd7-ba43-dac1f8f63013", alice)
	require.NoError(t, err)
	require.Equal(t, at.ID, got.TokenID)
}

func TestResolveExchangesThroughFOCIFamily(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	rt := refreshToken(alice, teamsClient)
	f.add(t, rt)
	f.activate(t, rt.ID)

	got, err := f.resolver.Resolve(ctx, entra.AudienceARM, "")
	require.NoError(t, err)
	require.Equal(t, ViaExchange, got.Via)
	require.Equal(t, entra.AudienceARM, got.Audience)
	require.Equal(t, alice, got.UPN)

	calls := f.idp.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "refresh_token", calls[0].GrantType)
	require.Equal(t, entra.BrokerClientID, calls[0].ClientID)
	require.Equal(t, rt.Secret, calls[0].RefreshToken)
	require.Equal(t, entra.DefaultScope(entra.AudienceARM), calls[0].Scope)

	stored := f.get(t, got.TokenID)
	require.Equal(t, domain.SourceFOCIExchange, stored.Source)
	require.Equal(t, rt.ID, stored.ParentID)
	require.Equal(t, entra.BrokerClientID, stored.ClientID)
	require.Empty(t, stored.EmbeddedRefresh)
	require.False(t, stored.IsActive, "resolution never moves the active pointer")

	// The minted token now satisfies the next request without another call.
	again, err := f.resolver.Resolve(ctx, entra.AudienceARM, alice)
	require.NoError(t, err)
	require.Equal(t, got.TokenID, again.TokenID)
	require.Equal(t, ViaExisting, again.Via)
	require.Len(t, f.idp.Calls(), 1)
}

func TestResolveBrokerRefreshIsPlainRefresh(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rt := refreshToken(alice, entra.BrokerClientID)
	teams := refreshToken(alice, teamsClient)
	f.add(t, teams, rt)

	got, err := f.resolver.Resolve(context.Background(), entra.AudienceGraph, alice)
	require.NoError(t, err)

	calls := f.idp.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, rt.Secret, calls[0].RefreshToken, "same-client refresh token wins over the family")
	require.Equal(t, domain.SourceRefresh, f.get(t, got.TokenID).Source)
}

func TestResolveUsesEmbeddedRefreshToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	carrier := accessToken(alice, azureCLI, entra.AudienceGraph, -time.Hour)
	carrier.EmbeddedRefresh = "embedded-refresh-token"
	f.add(t, carrier)

	got, err := f.resolver.Resolve(context.Background(), entra.AudienceKeyVault, alice)
	require.NoError(t, err)
	require.Equal(t, ViaExchange, got.Via)

	calls := f.idp.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "embedded-refresh-token", calls[0].RefreshToken)
	require.Equal(t, carrier.ID, f.get(t, got.TokenID).ParentID)
}

func TestResolveWithoutFOCIRefreshToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rt := refreshToken(alice, graphExplorer)
	f.add(t, rt)
	f.activate(t, rt.ID)

	_, err := f.resolver.Resolve(context.Background(), entra.AudienceGraph, "")
	require.ErrorIs(t, err, ErrNoRefreshTokenAvailable)
	require.Empty(t, f.idp.Calls())
}

func TestResolveSkipsPRTBoundAndTruncated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	bound := refreshToken(alice, teamsClient)
	bound.PRTBound = true
	bound.Classification = domain.ClassPRTBound
	truncated := refreshToken(alice, azureCLI)
	truncated.Secret = domain.TruncateSecret(truncated.Secret)
	f.add(t, bound, truncated)

	_, err := f.resolver.Resolve(context.Background(), entra.AudienceGraph, alice)
	require.ErrorIs(t, err, ErrNoRefreshTokenAvailable)
	require.Empty(t, f.idp.Calls())
}

func TestResolveNoActiveContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), entra.AudienceGraph, "")
	require.ErrorIs(t, err, ErrNoActiveContext)

	_, err = f.resolver.ListAvailableAudiences(context.Background(), "")
	require.ErrorIs(t, err, ErrNoActiveContext)
}

func TestResolveRequiresAudience(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), "  ", alice)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestResolveDeletesExpiredMatches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	stale := accessToken(alice, entra.BrokerClientID, entra.AudienceGraph, -time.Hour)
	carrier := accessToken(alice, teamsClient, entra.AudienceGraph, -2*time.Hour)
	carrier.EmbeddedRefresh = "carrier-refresh-token"
	rt := refreshToken(alice, entra.BrokerClientID)
	f.add(t, stale, carrier, rt)

	got, err := f.resolver.Resolve(ctx, entra.AudienceGraph, alice)
	require.NoError(t, err)
	require.Equal(t, ViaExchange, got.Via)

	_, err = f.store.Tokens().GetToken(ctx, stale.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	kept := f.get(t, carrier.ID)
	require.Equal(t, "carrier-refresh-token", kept.EmbeddedRefresh)
}

func TestResolveCrossIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	mine := accessToken(alice, entra.BrokerClientID, entra.AudienceGraph, time.Hour)
	theirs := accessToken(bob, entra.BrokerClientID, entra.AudienceARM, time.Hour)
	gone := accessToken("carol@contoso.com", entra.BrokerClientID, entra.AudienceARM, -time.Hour)
	f.add(t, mine, theirs, gone)
	f.activate(t, mine.ID)

	_, err := f.resolver.Resolve(ctx, entra.AudienceARM, "")

	var cerr *CrossIdentityError
	require.True(t, errors.As(err, &cerr), "got %v", err)
	require.Equal(t, entra.AudienceARM, cerr.Audience)
	require.Equal(t, alice, cerr.Identity)
	require.Len(t, cerr.Candidates, 1)
	require.Equal(t, bob, cerr.Candidates[0].UPN)
	require.Equal(t, theirs.ID, cerr.Candidates[0].TokenID)
	require.Empty(t, f.idp.Calls())

	t.Run("only for management audience", func(t *testing.T) {
		other := accessToken(bob, entra.BrokerClientID, entra.AudienceKeyVault, time.Hour)
		f.add(t, other)

		_, err := f.resolver.Resolve(ctx, entra.AudienceKeyVault, alice)
		require.ErrorIs(t, err, ErrNoRefreshTokenAvailable)
		require.False(t, errors.As(err, &cerr))
	})
}

func TestResolveCollapsesConcurrentExchanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.idp.Respond(func(c entratest.Call) entratest.Response {
		return entratest.Response{Status: http.StatusOK, Body: f.idp.Minted(c), Delay: 300 * time.Millisecond}
	})
	f.add(t, refreshToken(alice, entra.BrokerClientID))

	const callers = 6
	var wg sync.WaitGroup
	ids := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.resolver.Resolve(ctx, entra.AudienceGraph, alice)
			ids[i], errs[i] = got.TokenID, err
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}
	require.Len(t, f.idp.Calls(), 1)
}

func TestResolveJoinedCallerOutlivesCancelledLeader(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.idp.Respond(func(c entratest.Call) entratest.Response {
		body := f.idp.Minted(c)
		body["refresh_token"] = "rotated-refresh-token"
		return entratest.Response{Status: http.StatusOK, Body: body, Delay: 300 * time.Millisecond}
	})
	rt := refreshToken(alice, entra.BrokerClientID)
	f.add(t, rt)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan struct{})
	go func() {
		defer close(leaderDone)
		_, _ = f.resolver.Resolve(leaderCtx, entra.AudienceGraph, alice)
	}()
	require.Eventually(t, func() bool { return len(f.idp.Calls()) == 1 }, 2*time.Second, 5*time.Millisecond)

	type result struct {
		tok UsableToken
		err error
	}
	joined := make(chan result, 1)
	go func() {
		got, err := f.resolver.Resolve(context.Background(), entra.AudienceGraph, alice)
		joined <- result{got, err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	res := <-joined
	<-leaderDone
	require.NoError(t, res.err)
	require.Equal(t, ViaExchange, res.tok.Via)
	require.Len(t, f.idp.Calls(), 1)

	stored := f.get(t, res.tok.TokenID)
	require.Equal(t, rt.ID, stored.ParentID)
	require.Equal(t, "rotated-refresh-token", f.get(t, rt.ID).Secret)
}

func TestResolveClassicManagementAudience(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	mine := accessToken(alice, entra.BrokerClientID, entra.AudienceGraph, time.Hour)
	f.add(t, mine)
	f.activate(t, mine.ID)

	classic, err := f.tokens.ImportJWT(ctx, ImportJWTRequest{
		AccessToken: jwtxtest.Mint(jwtxtest.Options{
			Audience:  "https://management.core.windows.net/",
			UPN:       bob,
			ClientID:  azureCLI,
			ExpiresIn: time.Hour,
		}),
	})
	require.NoError(t, err)
	require.Equal(t, entra.AudienceARM, classic.Audience)

	t.Run("holder resolves without an exchange", func(t *testing.T) {
		got, err := f.resolver.Resolve(ctx, entra.AudienceARM, bob)
		require.NoError(t, err)
		require.Equal(t, classic.ID, got.TokenID)
		require.Equal(t, ViaExisting, got.Via)

		got, err = f.resolver.Resolve(ctx, "https://management.core.windows.net/", bob)
		require.NoError(t, err)
		require.Equal(t, classic.ID, got.TokenID)
		require.Empty(t, f.idp.Calls())
	})

	t.Run("listed as a cross-identity candidate", func(t *testing.T) {
		_, err := f.resolver.Resolve(ctx, entra.AudienceARM, "")

		var cerr *CrossIdentityError
		require.True(t, errors.As(err, &cerr), "got %v", err)
		require.Len(t, cerr.Candidates, 1)
		require.Equal(t, bob, cerr.Candidates[0].UPN)
		require.Equal(t, classic.ID, cerr.Candidates[0].TokenID)
	})

	t.Run("reported as available", func(t *testing.T) {
		report, err := f.resolver.ListAvailableAudiences(ctx, bob)
		require.NoError(t, err)
		for _, a := range report.Audiences {
			if a.Key == "azure_mgmt" {
				require.True(t, a.Available)
				require.Equal(t, classic.ID, a.TokenID)
			}
		}
	})
}

func TestResolveSurfacesProviderError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.idp.Respond(func(entratest.Call) entratest.Response {
		return entratest.Error(http.StatusBadRequest, "invalid_grant", "AADSTS700082: The refresh token has expired due to inactivity.")
	})
	f.add(t, refreshToken(alice, entra.BrokerClientID))

	_, err := f.resolver.Resolve(context.Background(), entra.AudienceGraph, alice)

	var xerr *ExchangeError
	require.True(t, errors.As(err, &xerr))
	require.Equal(t, "AADSTS700082", xerr.AADSTS())
}

func TestListAvailableAudiences(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("with family refresh token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		graph := accessToken(alice, entra.BrokerClientID, entra.AudienceGraph, time.Hour)
		rt := refreshToken(alice, teamsClient)
		f.add(t, graph, rt)
		f.activate(t, rt.ID)

		report, err := f.resolver.ListAvailableAudiences(ctx, "")
		require.NoError(t, err)
		require.Equal(t, alice, report.Identity)
		require.True(t, report.FOCIAvailable)
		require.Len(t, report.Audiences, len(entra.KnownAudiences()))

		byKey := make(map[string]AudienceStatus)
		for _, a := range report.Audiences {
			byKey[a.Key] = a
		}
		require.True(t, byKey["ms_graph"].Available)
		require.Equal(t, graph.ID, byKey["ms_graph"].TokenID)
		require.False(t, byKey["azure_mgmt"].Available)
		require.Equal(t, "exchange_possible", byKey["azure_mgmt"].Reason)
		require.Empty(t, f.idp.Calls())
	})

	t.Run("without refresh token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.add(t, accessToken(bob, graphExplorer, entra.AudienceGraph, time.Hour))

		report, err := f.resolver.ListAvailableAudiences(ctx, bob)
		require.NoError(t, err)
		require.False(t, report.FOCIAvailable)
		for _, a := range report.Audiences {
			if a.Resource == entra.AudienceGraph {
				require.True(t, a.Available)
				continue
			}
			require.Equal(t, "no_token", a.Reason, a.Key)
		}
	})
}
