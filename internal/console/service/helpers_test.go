package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store/drivers/sqlite"
	"github.com/aussiebroadwan/specter/pkg/entra/entratest"
	"github.com/aussiebroadwan/specter/pkg/idx"
	"github.com/aussiebroadwan/specter/pkg/jwtx/jwtxtest"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice@contoso.com"
	bob   = "bob@contoso.com"

	teamsClient   = "1fec8e78-bce4-4aaf-ab1b-5451cc387264" // FOCI
	azureCLI      = "04b07795-8ddb-461a-bbee-02f9e1bf7b46" // FOCI
	graphExplorer = "de8bc8b5-d9f9-48b1-a8ad-b748da725064" // not FOCI
)

type fixture struct {
	store    *sqlite.Store
	idp      *entratest.Server
	exchange *ExchangeService
	locator  *RefreshLocator
	resolver *Resolver
	tokens   *TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "specter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	idp := entratest.NewServer(t)
	exchange := &ExchangeService{Provider: idp.Client(), Store: s}
	locator := &RefreshLocator{Store: s}

	return &fixture{
		store:    s,
		idp:      idp,
		exchange: exchange,
		locator:  locator,
		resolver: &Resolver{Store: s, Exchange: exchange, Locator: locator},
		tokens:   &TokenService{Store: s, Exchange: exchange},
	}
}

func (f *fixture) add(t *testing.T, toks ...domain.Token) {
	t.Helper()
	for _, tok := range toks {
		require.NoError(t, f.store.Tokens().CreateToken(context.Background(), tok))
	}
}

func (f *fixture) get(t *testing.T, id string) domain.Token {
	t.Helper()
	tok, err := f.store.Tokens().GetToken(context.Background(), id)
	require.NoError(t, err)
	return tok
}

func accessToken(upn, clientID, audience string, ttl time.Duration) domain.Token {
	now := time.Now().UTC()
	exp := now.Add(ttl).Truncate(time.Second)
	return domain.Token{
		ID:       idx.New().String(),
		Kind:     domain.KindAccessToken,
		ClientID: clientID,
		UPN:      upn,
		Audience: audience,
		Secret: jwtxtest.Mint(jwtxtest.Options{
			Audience:  audience,
			UPN:       upn,
			ClientID:  clientID,
			ExpiresIn: ttl,
		}),
		ExpiresAt: &exp,
		Source:    domain.SourceImported,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func refreshToken(upn, clientID string) domain.Token {
	now := time.Now().UTC()
	return domain.Token{
		ID:             idx.New().String(),
		Kind:           domain.KindRefreshToken,
		ClientID:       clientID,
		UPN:            upn,
		Secret:         "1.AQ" + strings.Repeat("r", 300) + idx.New().String(),
		Source:         domain.SourceImported,
		Classification: domain.Classify(clientID, false),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
