package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/pkg/jwtx"
	"github.com/aussiebroadwan/specter/pkg/jwtx/jwtxtest"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeJWT(t *testing.T) {
	t.Parallel()

	require.True(t, jwtx.LooksLikeJWT(jwtxtest.Mint(jwtxtest.Options{Audience: "x"})))
	require.False(t, jwtx.LooksLikeJWT("opaque-refresh-token"))
	require.False(t, jwtx.LooksLikeJWT("a.b"))
	require.False(t, jwtx.LooksLikeJWT("a.b.c.d"))
	require.False(t, jwtx.LooksLikeJWT("a!.b.c"))
	require.False(t, jwtx.LooksLikeJWT(".b.c"))
}

func TestDecodeAccessToken(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_750_000_000, 0).UTC()
	raw := jwtxtest.Mint(jwtxtest.Options{
		Audience:  "00000003-0000-0000-c000-000000000000",
		UPN:       "alice@contoso.com",
		ClientID:  "d3590ed6-52b3-4102-aeff-aad2292ab01c",
		Scope:     "User.Read Mail.Read",
		TenantID:  "tenant-1",
		ExpiresIn: time.Hour,
		Now:       now,
	})

	claims, err := jwtx.DecodeAccessToken(raw)
	require.NoError(t, err)
	require.Equal(t, "00000003-0000-0000-c000-000000000000", claims.Aud())
	require.Equal(t, "alice@contoso.com", claims.Identity())
	require.Equal(t, "d3590ed6-52b3-4102-aeff-aad2292ab01c", claims.ClientID())
	require.Equal(t, "User.Read Mail.Read", claims.Scope())
	require.Equal(t, "tenant-1", claims.TenantID)
	require.NotNil(t, claims.Expiry())
	require.True(t, claims.Expiry().Equal(now.Add(time.Hour)))

	t.Run("expired tokens still decode", func(t *testing.T) {
		old := jwtxtest.Mint(jwtxtest.Options{Audience: "a", Now: now.Add(-48 * time.Hour)})
		_, err := jwtx.DecodeAccessToken(old)
		require.NoError(t, err)
	})

	t.Run("missing aud", func(t *testing.T) {
		_, err := jwtx.DecodeAccessToken(jwtxtest.Mint(jwtxtest.Options{UPN: "a"}))
		require.ErrorIs(t, err, jwtx.ErrMissingAudience)
	})

	t.Run("missing exp", func(t *testing.T) {
		_, err := jwtx.DecodeAccessToken(jwtxtest.Mint(jwtxtest.Options{Audience: "a", NoExpiry: true}))
		require.ErrorIs(t, err, jwtx.ErrMissingExpiry)
	})

	t.Run("opaque", func(t *testing.T) {
		_, err := jwtx.DecodeAccessToken("0.AXoAopaque")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestClaimsFallbacks(t *testing.T) {
	t.Parallel()

	c := jwtx.Claims{UniqueName: "bob@contoso.com", AuthorizedParty: "client-b", Roles: []string{"Directory.Read.All", "User.Read.All"}}
	require.Equal(t, "bob@contoso.com", c.Identity())
	require.Equal(t, "client-b", c.ClientID())
	require.Equal(t, "Directory.Read.All User.Read.All", c.Scope())
	require.Nil(t, c.Expiry())
	require.Empty(t, c.Aud())
}
