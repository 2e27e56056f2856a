package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/jwtx/jwtxtest"
	"github.com/stretchr/testify/require"
)

func brokerExport(t *testing.T, raw string) BrokerExport {
	t.Helper()
	var export BrokerExport
	require.NoError(t, json.Unmarshal([]byte(raw), &export))
	return export
}

func TestImportBroker(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	live := jwtxtest.Mint(jwtxtest.Options{Audience: entra.AudienceGraph, UPN: "Carol@Contoso.com", ExpiresIn: time.Hour})
	dead := jwtxtest.Mint(jwtxtest.Options{Audience: entra.AudienceGraph, UPN: alice, ExpiresIn: -time.Hour})

	export := brokerExport(t, `{
		"metadata": {"hostname": "WS-0142"},
		"tokens": [
			{"type": "refresh_token", "token": "1.AQ-teams", "client_id": "`+teamsClient+`", "email": "Alice@Contoso.com", "cache_path": "a/1.bin"},
			{"type": "refresh_token", "token": "1.AQ-teams-again", "client_id": "`+teamsClient+`", "email": "alice@contoso.com", "cache_path": "a/1.bin"},
			{"type": "refresh_token", "token": "1.AQ-bound", "client_id": "`+azureCLI+`", "upn": "alice@contoso.com", "cache_path": "a/2.bin", "is_prt_bound": true, "source_type": "PRT_FILE"},
			{"type": "access_token", "access_token": "`+live+`", "client_id": "`+entra.BrokerClientID+`", "cache_path": "a/3.bin", "login_url": "https://login.microsoftonline.com"},
			{"type": "access_token", "access_token": "`+dead+`", "client_id": "`+entra.BrokerClientID+`", "cache_path": "a/4.bin"},
			{"type": "mystery", "token": "x", "cache_path": "a/5.bin"},
			{"type": "refresh_token", "token": "", "client_id": "`+teamsClient+`"}
		]
	}`)

	res, err := f.tokens.ImportBroker(ctx, export, "wks-0142.json")
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)
	require.Equal(t, 1, res.Duplicates)
	require.Equal(t, 1, res.Expired)
	require.Equal(t, 2, res.Skipped)
	require.Equal(t, 2, res.ByKind[domain.KindRefreshToken])
	require.Equal(t, 1, res.ByKind[domain.KindAccessToken])
	require.Contains(t, res.Errors, "a/5.bin")
	require.Contains(t, res.Errors, "#6")
	require.Contains(t, res.Message, "imported 3 token(s) from WS-0142")
	require.Len(t, res.TokenIDs, 3)

	teams := f.get(t, res.TokenIDs[0])
	require.Equal(t, alice, teams.UPN)
	require.Equal(t, domain.ClassFOCI, teams.Classification)
	require.Equal(t, domain.SourceBroker, teams.Source)
	require.Equal(t, "wks-0142.json", teams.ImportedFrom)

	bound := f.get(t, res.TokenIDs[1])
	require.True(t, bound.PRTBound)
	require.Equal(t, domain.ClassPRTBound, bound.Classification)
	require.Equal(t, "PRT_FILE", bound.SourceType)

	at := f.get(t, res.TokenIDs[2])
	require.Equal(t, "carol@contoso.com", at.UPN, "identity is read from the token when the export has none")
	require.Equal(t, entra.AudienceGraph, at.Audience)
	require.NotNil(t, at.ExpiresAt)
	require.Equal(t, "https://login.microsoftonline.com", at.Metadata["login_url"])

	t.Run("reimport is all duplicates", func(t *testing.T) {
		again, err := f.tokens.ImportBroker(ctx, export, "wks-0142.json")
		require.NoError(t, err)
		require.Zero(t, again.Imported)
		require.Equal(t, 4, again.Duplicates)
		require.Equal(t, 1, again.Expired)
	})

	t.Run("empty export", func(t *testing.T) {
		_, err := f.tokens.ImportBroker(ctx, BrokerExport{}, "")
		require.ErrorIs(t, err, ErrEmptyImport)
	})
}

func TestImportBrokerUsesExportClaims(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	exp := time.Now().Add(20 * time.Minute).Unix()
	export := brokerExport(t, `{
		"tokens": [
			{"type": "access_token", "access_token": "opaque-compact-token", "client_id": "`+azureCLI+`",
			 "email": "bob@contoso.com", "claims": {"aud": "797f4846-ba00-4fd7-ba43-dac1f8f63013", "exp": `+strconv.FormatInt(exp, 10)+`}}
		]
	}`)

	res, err := f.tokens.ImportBroker(context.Background(), export, "")
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Contains(t, res.Message, "unknown host")

	tok := f.get(t, res.TokenIDs[0])
	require.Equal(t, entra.AudienceARM, tok.Audience)
	require.Equal(t, bob, tok.UPN)
	require.Equal(t, "BrokerDecrypt", tok.ImportedFrom)
	require.Equal(t, exp, tok.ExpiresAt.Unix())
}

func TestImportJWT(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	raw := jwtxtest.Mint(jwtxtest.Options{
		Audience: "https://management.azure.com/",
		UPN:      "Alice@Contoso.com",
		ClientID: azureCLI,
		Scope:    "user_impersonation",
		TenantID: "72f988bf-86f1-41af-91ab-2d7cd011db47",
	})

	tok, err := f.tokens.ImportJWT(ctx, ImportJWTRequest{
		AccessToken:  "  " + raw + "\n",
		RefreshToken: "embedded-refresh",
		Activate:     true,
	})
	require.NoError(t, err)
	require.Equal(t, entra.AudienceARM, tok.Audience)
	require.Equal(t, alice, tok.UPN)
	require.Equal(t, azureCLI, tok.ClientID)
	require.Equal(t, "user_impersonation", tok.Scope)
	require.Equal(t, domain.SourceImportedJWT, tok.Source)
	require.True(t, tok.IsActive)

	stored := f.get(t, tok.ID)
	require.Equal(t, raw, stored.Secret)
	require.Equal(t, "embedded-refresh", stored.EmbeddedRefresh)
	require.True(t, stored.IsActive)

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := f.tokens.ImportJWT(ctx, ImportJWTRequest{AccessToken: "not.a.jwt"})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("rejects expired", func(t *testing.T) {
		expired := jwtxtest.Mint(jwtxtest.Options{Audience: entra.AudienceGraph, UPN: alice, ExpiresIn: -time.Minute})
		_, err := f.tokens.ImportJWT(ctx, ImportJWTRequest{AccessToken: expired})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("maps resource app id audience", func(t *testing.T) {
		devops := jwtxtest.Mint(jwtxtest.Options{Audience: "499b84ac-1321-427f-aa17-267ca6975798", UPN: alice, ClientID: azureCLI})
		tok, err := f.tokens.ImportJWT(ctx, ImportJWTRequest{AccessToken: devops})
		require.NoError(t, err)
		require.Equal(t, entra.AudienceDevOps, tok.Audience)
		require.Equal(t, entra.AudienceDevOps, f.get(t, tok.ID).Audience)
	})
}

func TestImportRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	tok, err := f.tokens.ImportRefresh(ctx, ImportRefreshRequest{
		RefreshToken: " 1.AQ-manual ",
		ClientID:     teamsClient,
		UPN:          "ALICE@contoso.com",
	})
	require.NoError(t, err)
	require.Equal(t, domain.KindRefreshToken, tok.Kind)
	require.Equal(t, "1.AQ-manual", tok.Secret)
	require.Equal(t, alice, tok.UPN)
	require.Equal(t, domain.ClassFOCI, tok.Classification)

	standalone, err := f.tokens.ImportRefresh(ctx, ImportRefreshRequest{RefreshToken: "x", ClientID: graphExplorer})
	require.NoError(t, err)
	require.Equal(t, domain.ClassStandalone, standalone.Classification)

	_, err = f.tokens.ImportRefresh(ctx, ImportRefreshRequest{RefreshToken: "x"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestTokenListingTruncatesSecrets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	at := accessToken(alice, azureCLI, entra.AudienceGraph, time.Hour)
	rt := refreshToken(bob, teamsClient)
	f.add(t, at, rt)

	all, err := f.tokens.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, tok := range all {
		require.True(t, strings.HasSuffix(tok.Secret, domain.TruncationMarker))
	}

	onlyRT, err := f.tokens.List(ctx, ListFilter{Kind: domain.KindRefreshToken})
	require.NoError(t, err)
	require.Len(t, onlyRT, 1)
	require.Equal(t, rt.ID, onlyRT[0].ID)

	byAudience, err := f.tokens.List(ctx, ListFilter{Audience: "graph"})
	require.NoError(t, err)
	require.Len(t, byAudience, 1)

	_, err = f.tokens.List(ctx, ListFilter{Kind: "cookie"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	full, err := f.tokens.Get(ctx, at.ID, true)
	require.NoError(t, err)
	require.Equal(t, at.Secret, full.Secret)

	short, err := f.tokens.Get(ctx, at.ID, false)
	require.NoError(t, err)
	require.NotEqual(t, at.Secret, short.Secret)

	_, err = f.tokens.Active(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	activated, err := f.tokens.Activate(ctx, rt.ID)
	require.NoError(t, err)
	require.True(t, activated.IsActive)

	active, err := f.tokens.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, rt.ID, active.ID)

	require.NoError(t, f.tokens.Delete(ctx, at.ID))
	require.ErrorIs(t, f.tokens.Delete(ctx, at.ID), store.ErrNotFound)
}

func TestUseRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("family member redeems as another member", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rt := refreshToken(alice, teamsClient)
		f.add(t, rt)

		tok, out, err := f.tokens.UseRefreshToken(ctx, rt.ID, UseRefreshRequest{
			TargetClientID: azureCLI,
			Scope:          entra.AudienceARM,
			Activate:       true,
		})
		require.NoError(t, err)
		require.Equal(t, entra.AudienceARM, out.Audience)
		require.Equal(t, domain.SourceFOCIExchange, tok.Source)
		require.Equal(t, azureCLI, tok.ClientID)
		require.True(t, tok.IsActive)

		calls := f.idp.Calls()
		require.Len(t, calls, 1)
		require.Equal(t, azureCLI, calls[0].ClientID)
		require.Equal(t, entra.DefaultScope(entra.AudienceARM), calls[0].Scope)
	})

	t.Run("defaults to own client and graph", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rt := refreshToken(alice, graphExplorer)
		f.add(t, rt)

		tok, _, err := f.tokens.UseRefreshToken(ctx, rt.ID, UseRefreshRequest{})
		require.NoError(t, err)
		require.Equal(t, domain.SourceRefresh, tok.Source)
		require.Equal(t, entra.AudienceGraph, tok.Audience)

		calls := f.idp.Calls()
		require.Len(t, calls, 1)
		require.Equal(t, graphExplorer, calls[0].ClientID)
	})

	t.Run("outsider cannot borrow a family client", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rt := refreshToken(alice, graphExplorer)
		f.add(t, rt)

		_, _, err := f.tokens.UseRefreshToken(ctx, rt.ID, UseRefreshRequest{TargetClientID: teamsClient})
		require.ErrorIs(t, err, ErrNotRedeemable)
		require.Empty(t, f.idp.Calls())
	})

	t.Run("access tokens are refused", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		at := accessToken(alice, teamsClient, entra.AudienceGraph, time.Hour)
		f.add(t, at)

		_, _, err := f.tokens.UseRefreshToken(ctx, at.ID, UseRefreshRequest{})
		require.ErrorIs(t, err, ErrNotRefreshToken)

		_, err = f.tokens.FOCITargets(ctx, at.ID)
		require.ErrorIs(t, err, ErrNotRefreshToken)
	})
}

func TestFOCITargets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	teams := refreshToken(alice, teamsClient)
	outsider := refreshToken(alice, graphExplorer)
	f.add(t, teams, outsider)

	targets, err := f.tokens.FOCITargets(ctx, teams.ID)
	require.NoError(t, err)
	require.Len(t, targets, len(entra.FOCIApps()))

	current := 0
	for _, tgt := range targets {
		require.True(t, tgt.FOCI)
		if tgt.Current {
			current++
			require.Equal(t, teamsClient, tgt.ClientID)
		}
	}
	require.Equal(t, 1, current)

	_, err = f.tokens.FOCITargets(ctx, outsider.ID)
	require.ErrorIs(t, err, ErrNotRedeemable)

	_, err = f.tokens.FOCITargets(ctx, "01J00000000000000000000000")
	require.True(t, errors.Is(err, store.ErrNotFound))
}

func TestTokenStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	used := refreshToken(alice, teamsClient)
	unused := refreshToken(bob, graphExplorer)
	f.add(t, used, unused, accessToken(alice, teamsClient, entra.AudienceGraph, time.Hour))
	require.NoError(t, f.store.Tokens().MarkUsed(ctx, used.ID, time.Now()))

	stats, err := f.tokens.RefreshStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Total)
	require.EqualValues(t, 1, stats.FOCI)
	require.EqualValues(t, 1, stats.Used)
	require.EqualValues(t, 1, stats.Unused)

	counts, err := f.tokens.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, counts.Total)
}

func TestScopeFor(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                 entra.AudienceGraph + "/.default",
		"https://vault.azure.net":          "https://vault.azure.net/.default",
		"https://vault.azure.net/":         "https://vault.azure.net/.default",
		"https://vault.azure.net/.default": "https://vault.azure.net/.default",
		"openid offline_access":            "openid offline_access",
	}
	for in, want := range cases {
		require.Equal(t, want, scopeFor(in), "input %q", in)
	}
}
