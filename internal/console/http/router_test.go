package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/cache"
	consolehttp "github.com/aussiebroadwan/specter/internal/console/http"
	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/internal/console/store/drivers/sqlite"
	"github.com/aussiebroadwan/specter/internal/console/upstream"
	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/entra/entratest"
	"github.com/aussiebroadwan/specter/pkg/jwtx/jwtxtest"
	"github.com/aussiebroadwan/specter/pkg/slogx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	alice       = "alice@contoso.com"
	teamsClient = "1fec8e78-bce4-4aaf-ab1b-5451cc387264"
	azureCLI    = "04b07795-8ddb-461a-bbee-02f9e1bf7b46"
)

type console struct {
	client    *consolesdk.Client
	idp       *entratest.Server
	graphHits *atomic.Int32
}

func newConsole(t *testing.T) *console {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "specter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	idp := entratest.NewServer(t)
	exchange := &service.ExchangeService{Provider: idp.Client(), Store: st}
	locator := &service.RefreshLocator{Store: st}
	resolver := &service.Resolver{Store: st, Exchange: exchange, Locator: locator}

	scheduler := service.NewScheduler(service.SchedulerDeps{
		Store:    st,
		Exchange: exchange,
		Locator:  locator,
		Logger:   slogx.Discard(),
	}, service.SchedulerConfig{})
	t.Cleanup(func() { _ = scheduler.Stop() })

	operators := &service.OperatorService{Store: st}
	key, err := operators.Bootstrap(ctx, "")
	require.NoError(t, err)

	hits := &atomic.Int32{}
	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/v1.0/me" || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ey") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userPrincipalName":"alice@contoso.com","displayName":"Alice"}`))
	}))
	t.Cleanup(graph.Close)

	responses := cache.NewMemory(time.Minute)

	router := consolehttp.NewRouter("test", st, slogx.Discard())
	router.TokenService = &service.TokenService{Store: st, Exchange: exchange}
	router.Resolver = resolver
	router.Scheduler = scheduler
	router.OperatorService = operators
	router.Cache = responses
	router.Upstream = upstream.NewCaller(resolver, responses, nil, time.Second)
	router.GraphBaseURL = graph.URL
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &console{
		client:    consolesdk.NewClient(srv.URL, key),
		idp:       idp,
		graphHits: hits,
	}
}

func graphJWT(upn string) string {
	return jwtxtest.Mint(jwtxtest.Options{
		Audience: entra.AudienceGraph,
		UPN:      upn,
		ClientID: teamsClient,
	})
}

func apiError(t *testing.T, err error) *consolesdk.APIError {
	t.Helper()
	var apiErr *consolesdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *APIError, got %v", err)
	return apiErr
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	live, err := c.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "stopped", ready.Checks.Scheduler)
}

func TestAPIKeyRequired(t *testing.T) {
	t.Parallel()
	c := newConsole(t)

	bad := *c.client
	bad.APIKey = "sk_01J00000000000000000000000_nope"

	_, err := bad.ListTokens(context.Background(), consolesdk.ListTokensOptions{})
	apiErr := apiError(t, err)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, consolesdk.ErrorCodeUnauthorized, apiErr.Code)
}

func TestImportAndResolve(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	_, err := c.client.Resolve(ctx, consolesdk.ResolveRequest{Audience: "graph"})
	require.ErrorIs(t, err, consolesdk.ErrNoActiveContext)

	imported, err := c.client.ImportJWT(ctx, consolesdk.ImportJWTRequest{AccessToken: graphJWT(alice), Activate: true})
	require.NoError(t, err)
	require.True(t, imported.IsActive)
	require.Equal(t, alice, imported.UPN)
	require.Equal(t, entra.AudienceGraph, imported.Audience)

	res, err := c.client.Resolve(ctx, consolesdk.ResolveRequest{Audience: entra.AudienceGraph})
	require.NoError(t, err)
	require.Equal(t, "active", res.Via)
	require.Equal(t, imported.ID, res.TokenID)
	require.Empty(t, res.AccessToken, "secret only with reveal")

	res, err = c.client.Resolve(ctx, consolesdk.ResolveRequest{Audience: entra.AudienceGraph, Reveal: true})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.AccessToken, "ey"))

	_, err = c.client.ImportRefresh(ctx, consolesdk.ImportRefreshRequest{
		RefreshToken: "1.AQ" + strings.Repeat("r", 200),
		ClientID:     teamsClient,
		UPN:          alice,
	})
	require.NoError(t, err)

	res, err = c.client.Resolve(ctx, consolesdk.ResolveRequest{Audience: entra.AudienceARM})
	require.NoError(t, err)
	require.Equal(t, "exchange", res.Via)
	require.Equal(t, entra.BrokerClientID, res.ClientID)
	require.Len(t, c.idp.Calls(), 1)

	active, err := c.client.GetActiveToken(ctx)
	require.NoError(t, err)
	require.Equal(t, imported.ID, active.ID, "resolution never moves the active flag")
}

func TestResolveSurfacesProviderError(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	c.idp.Respond(func(entratest.Call) entratest.Response {
		return entratest.Error(http.StatusBadRequest, "invalid_grant", "AADSTS50076: multi-factor authentication required")
	})

	_, err := c.client.ImportRefresh(ctx, consolesdk.ImportRefreshRequest{
		RefreshToken: "1.AQ" + strings.Repeat("r", 200),
		ClientID:     teamsClient,
		UPN:          alice,
	})
	require.NoError(t, err)

	_, err = c.client.Resolve(ctx, consolesdk.ResolveRequest{Audience: entra.AudienceKeyVault, UPN: alice})
	apiErr := apiError(t, err)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, consolesdk.ErrorCodeExchangeFailed, apiErr.Code)
	require.Equal(t, "invalid_grant", apiErr.ProviderError)
	require.Contains(t, apiErr.ProviderErrorDescription, "AADSTS50076")
	require.Equal(t, http.StatusBadRequest, apiErr.ProviderStatus)
	require.Equal(t, []int{50076}, apiErr.ErrorCodes)
}

func TestResolveWithoutRefreshToken(t *testing.T) {
	t.Parallel()
	c := newConsole(t)

	_, err := c.client.Resolve(context.Background(), consolesdk.ResolveRequest{Audience: entra.AudienceKeyVault, UPN: alice})
	require.ErrorIs(t, err, consolesdk.ErrNoRefreshToken)
	require.Equal(t, http.StatusConflict, apiError(t, err).StatusCode)
}

func TestTokenEndpoints(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	at, err := c.client.ImportJWT(ctx, consolesdk.ImportJWTRequest{
		AccessToken:  graphJWT(alice),
		RefreshToken: "1.AQ" + strings.Repeat("e", 200),
	})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(at.EmbeddedRefresh, "..."))

	list, err := c.client.ListTokens(ctx, consolesdk.ListTokensOptions{Kind: "access_token"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Microsoft Teams", list.Tokens[0].ClientName)

	full, err := c.client.GetToken(ctx, at.ID, true)
	require.NoError(t, err)
	require.Len(t, full.EmbeddedRefresh, 204)

	_, err = c.client.ListTokens(ctx, consolesdk.ListTokensOptions{Kind: "bogus"})
	require.ErrorIs(t, err, consolesdk.ErrInvalidRequest)

	stats, err := c.client.TokenStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Total)
	require.EqualValues(t, 1, stats.ByKind["access_token"])

	_, err = c.client.GetActiveToken(ctx)
	require.ErrorIs(t, err, consolesdk.ErrNotFound)

	activated, err := c.client.ActivateToken(ctx, at.ID)
	require.NoError(t, err)
	require.True(t, activated.IsActive)

	require.NoError(t, c.client.DeleteToken(ctx, at.ID))
	_, err = c.client.GetToken(ctx, at.ID, false)
	require.ErrorIs(t, err, consolesdk.ErrNotFound)

	deleted, err := c.client.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted.Deleted)
}

func TestImportBrokerEndpoint(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	export := `{
		"metadata": {"hostname": "WS-0142", "extra": "ignored"},
		"tokens": [
			{"type": "refresh_token", "token": "1.AQ` + strings.Repeat("b", 200) + `", "client_id": "` + teamsClient + `", "upn": "Alice@Contoso.com", "cache_path": "a/1.bin"},
			{"type": "access_token", "access_token": "` + graphJWT(alice) + `", "client_id": "` + teamsClient + `", "cache_path": "a/2.bin"}
		]
	}`

	res, err := c.client.ImportBroker(ctx, strings.NewReader(export), "ws-0142.json")
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 1, res.ByKind["refresh_token"])
	require.Contains(t, res.Message, "WS-0142")

	_, err = c.client.ImportBroker(ctx, strings.NewReader(`{"tokens": []}`), "")
	require.ErrorIs(t, err, consolesdk.ErrInvalidRequest)

	_, err = c.client.ImportBroker(ctx, strings.NewReader(`not json`), "")
	require.ErrorIs(t, err, consolesdk.ErrInvalidRequest)
}

func TestRefreshEndpoints(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	rt, err := c.client.ImportRefresh(ctx, consolesdk.ImportRefreshRequest{
		RefreshToken: "1.AQ" + strings.Repeat("r", 200),
		ClientID:     teamsClient,
		UPN:          alice,
	})
	require.NoError(t, err)
	require.Equal(t, "FOCI", rt.Classification)

	targets, err := c.client.FOCITargets(ctx, rt.ID)
	require.NoError(t, err)
	var current []string
	for _, tgt := range targets.Targets {
		if tgt.IsCurrent {
			current = append(current, tgt.ClientID)
		}
	}
	require.Equal(t, []string{teamsClient}, current)

	used, err := c.client.UseRefreshToken(ctx, rt.ID, consolesdk.UseRefreshRequest{
		ClientID: azureCLI,
		Scope:    entra.AudienceARM,
	})
	require.NoError(t, err)
	require.Equal(t, azureCLI, used.Token.ClientID)
	require.Equal(t, entra.AudienceARM, used.Token.Audience)
	require.Equal(t, "foci_exchange", used.Token.Source)
	require.Equal(t, rt.ID, used.Token.ParentID)
	require.False(t, used.Rotated)

	// Empty body: own client, Graph.
	used, err = c.client.UseRefreshToken(ctx, rt.ID, consolesdk.UseRefreshRequest{})
	require.NoError(t, err)
	require.Equal(t, teamsClient, used.Token.ClientID)
	require.Equal(t, entra.AudienceGraph, used.Token.Audience)

	_, err = c.client.UseRefreshToken(ctx, used.Token.ID, consolesdk.UseRefreshRequest{})
	apiErr := apiError(t, err)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, consolesdk.ErrorCodeNotRefreshToken, apiErr.Code)

	_, err = c.client.UseRefreshToken(ctx, rt.ID, consolesdk.UseRefreshRequest{ClientID: "de8bc8b5-d9f9-48b1-a8ad-b748da725064"})
	require.Equal(t, consolesdk.ErrorCodeClientNotInFamily, apiError(t, err).Code)

	stats, err := c.client.RefreshStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Total)
	require.EqualValues(t, 1, stats.FOCI)
	require.EqualValues(t, 1, stats.Used)
}

func TestClientsEndpoint(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	all, err := c.client.ListClients(ctx, false)
	require.NoError(t, err)
	foci, err := c.client.ListClients(ctx, true)
	require.NoError(t, err)

	require.Equal(t, all.FOCI, foci.Count)
	require.Greater(t, all.Count, foci.Count)
	for _, cl := range foci.Clients {
		require.True(t, cl.FOCI, cl.DisplayName)
	}
}

func TestSchedulerEndpoints(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	st, err := c.client.SchedulerStatus(ctx)
	require.NoError(t, err)
	require.False(t, st.Running)
	require.InDelta(t, 5, st.IntervalMinutes, 0.001)
	require.InDelta(t, 10, st.ThresholdMinutes, 0.001)

	_, err = c.client.StopScheduler(ctx)
	require.Equal(t, consolesdk.ErrorCodeSchedulerState, apiError(t, err).Code)

	st, err = c.client.StartScheduler(ctx)
	require.NoError(t, err)
	require.True(t, st.Running)

	_, err = c.client.StartScheduler(ctx)
	apiErr := apiError(t, err)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)

	zero := 0.0
	_, err = c.client.UpdateSchedulerConfig(ctx, consolesdk.SchedulerConfigRequest{IntervalMinutes: &zero})
	require.ErrorIs(t, err, consolesdk.ErrInvalidRequest)

	thirty := 30.0
	st, err = c.client.UpdateSchedulerConfig(ctx, consolesdk.SchedulerConfigRequest{ThresholdMinutes: &thirty})
	require.NoError(t, err)
	require.InDelta(t, 30, st.ThresholdMinutes, 0.001)

	report, err := c.client.TriggerScheduler(ctx)
	require.NoError(t, err)
	require.Zero(t, report.Candidates)

	expiring, err := c.client.ExpiringTokens(ctx, 0)
	require.NoError(t, err)
	require.InDelta(t, 30, expiring.ThresholdMinutes, 0.001)
	require.Empty(t, expiring.Tokens)

	st, err = c.client.StopScheduler(ctx)
	require.NoError(t, err)
	require.False(t, st.Running)

	history, err := c.client.SchedulerHistory(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, history.Events)
	require.Equal(t, "scheduler_stopped", history.Events[0].Type)
}

func TestGraphMeIsCached(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	_, err := c.client.ImportJWT(ctx, consolesdk.ImportJWTRequest{AccessToken: graphJWT(alice), Activate: true})
	require.NoError(t, err)

	for range 2 {
		me, err := c.client.GraphMe(ctx, "")
		require.NoError(t, err)
		require.Equal(t, "Alice", me["displayName"])
	}
	require.EqualValues(t, 1, c.graphHits.Load())

	require.NoError(t, c.client.ClearCache(ctx, alice))
	_, err = c.client.GraphMe(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 2, c.graphHits.Load())
}

func TestOperatorTOTPFlow(t *testing.T) {
	t.Parallel()
	c := newConsole(t)
	ctx := context.Background()

	enr, err := c.client.EnrollTOTP(ctx)
	require.NoError(t, err)
	require.Equal(t, "admin", enr.Account)
	require.True(t, strings.HasPrefix(enr.URL, "otpauth://totp/"))

	require.ErrorIs(t, c.client.VerifyTOTP(ctx, "000000"), consolesdk.ErrInvalidRequest)

	code, err := totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, c.client.VerifyTOTP(ctx, code))

	_, err = c.client.ListTokens(ctx, consolesdk.ListTokensOptions{})
	apiErr := apiError(t, err)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, consolesdk.ErrorCodeOTPRequired, apiErr.Code)

	withOTP := c.client.WithOTP(code)
	_, err = withOTP.ListTokens(ctx, consolesdk.ListTokensOptions{})
	require.NoError(t, err)

	oldKey := withOTP.APIKey
	newKey, err := withOTP.RotateAPIKey(ctx)
	require.NoError(t, err)
	require.NotEqual(t, oldKey, newKey)

	stale := *withOTP
	stale.APIKey = oldKey
	_, err = stale.ListTokens(ctx, consolesdk.ListTokensOptions{})
	require.Equal(t, consolesdk.ErrorCodeUnauthorized, apiError(t, err).Code)
}
