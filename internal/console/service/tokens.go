package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/idx"
	"github.com/aussiebroadwan/specter/pkg/jwtx"
	"github.com/aussiebroadwan/specter/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotRefreshToken = errors.New("token is not a refresh token")
	ErrEmptyImport     = errors.New("no tokens to import")
)

const defaultUseScope = entra.AudienceGraph + "/.default"

// TokenService manages the captured token pool.
type TokenService struct {
	Store    store.Store
	Exchange *ExchangeService
	Now      func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// BrokerExport is the JSON written by the broker cache extraction tooling.
type BrokerExport struct {
	Metadata BrokerMetadata `json:"metadata"`
	Tokens   []BrokerToken  `json:"tokens"`
}

type BrokerMetadata struct {
	Hostname       string `json:"hostname,omitempty"`
	TargetComputer string `json:"target_computer,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

func (m BrokerMetadata) target() string {
	switch {
	case m.Hostname != "":
		return m.Hostname
	case m.TargetComputer != "":
		return m.TargetComputer
	default:
		return "unknown host"
	}
}

type BrokerToken struct {
	Type        string           `json:"type"`
	Token       string           `json:"token,omitempty"`        // refresh and NGC tokens
	AccessToken string           `json:"access_token,omitempty"` // access tokens
	ClientID    string           `json:"client_id,omitempty"`
	Email       string           `json:"email,omitempty"`
	UPN         string           `json:"upn,omitempty"`
	Scope       string           `json:"scope,omitempty"`
	ExpiresAt   string           `json:"expires_at,omitempty"`
	Claims      *BrokerClaims    `json:"claims,omitempty"`
	Metadata    *BrokerTokenMeta `json:"metadata,omitempty"`
	CachePath   string           `json:"cache_path,omitempty"`
	SourceType  string           `json:"source_type,omitempty"` // AUTHORITY_FILE, PRT_FILE
	IsPRTBound  bool             `json:"is_prt_bound,omitempty"`
	DisplayName string           `json:"display_name,omitempty"`
	LoginURL    string           `json:"login_url,omitempty"`
	TenantID    string           `json:"tenant_id,omitempty"`
	UserOID     string           `json:"user_oid,omitempty"`
	SessionKey  string           `json:"session_key,omitempty"`
	RedirectURI string           `json:"redirect_uri,omitempty"`
}

// BrokerClaims is the decoded claim subset the export carries for access
// tokens.
type BrokerClaims struct {
	Aud jwt.ClaimStrings `json:"aud,omitempty"`
	Exp *jwt.NumericDate `json:"exp,omitempty"`
}

type BrokerTokenMeta struct {
	Audience string `json:"audience,omitempty"`
}

type ImportResult struct {
	Imported   int                      `json:"imported"`
	Skipped    int                      `json:"skipped"`
	Expired    int                      `json:"expired"`
	Duplicates int                      `json:"duplicates"`
	ByKind     map[domain.TokenKind]int `json:"by_kind"`
	TokenIDs   []string                 `json:"token_ids"`
	Message    string                   `json:"message"`
	Errors     map[string]string        `json:"errors,omitempty"` // cache path or index -> reason
}

// ImportBroker stores every usable token of a broker export. Duplicate cache
// paths (in the file or already stored) and expired access tokens are
// skipped. The import is one transaction.
func (s *TokenService) ImportBroker(ctx context.Context, export BrokerExport, filename string) (ImportResult, error) {
	if len(export.Tokens) == 0 {
		return ImportResult{}, ErrEmptyImport
	}
	if filename == "" {
		filename = "BrokerDecrypt"
	}

	now := s.now()
	res := ImportResult{ByKind: map[domain.TokenKind]int{}}
	seen := make(map[string]struct{})

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		tokens := tx.Tokens()
		for i, bt := range export.Tokens {
			if bt.CachePath != "" {
				if _, dup := seen[bt.CachePath]; dup {
					res.Duplicates++
					continue
				}
				_, err := tokens.FindByCachePath(ctx, bt.CachePath)
				switch {
				case err == nil:
					res.Duplicates++
					continue
				case !errors.Is(err, store.ErrNotFound):
					return err
				}
			}

			tok, err := brokerToken(bt, filename, now)
			if err != nil {
				res.Skipped++
				if res.Errors == nil {
					res.Errors = map[string]string{}
				}
				key := bt.CachePath
				if key == "" {
					key = fmt.Sprintf("#%d", i)
				}
				res.Errors[key] = err.Error()
				continue
			}
			if tok.IsAccessToken() && tok.IsExpired(now) {
				res.Expired++
				continue
			}
			warnUnmappedAudience(ctx, tok)

			if err := tokens.CreateToken(ctx, tok); err != nil {
				return fmt.Errorf("storing imported token: %w", err)
			}
			if bt.CachePath != "" {
				seen[bt.CachePath] = struct{}{}
			}
			res.Imported++
			res.ByKind[tok.Kind]++
			res.TokenIDs = append(res.TokenIDs, tok.ID)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	res.Message = importMessage(res, export.Metadata.target())
	slogx.FromContext(ctx).Info("broker export imported",
		"file", filename,
		"imported", res.Imported,
		"expired", res.Expired,
		"duplicates", res.Duplicates,
		"skipped", res.Skipped,
	)
	return res, nil
}

func brokerToken(bt BrokerToken, filename string, now time.Time) (domain.Token, error) {
	tok := domain.Token{
		ID:              idx.New().String(),
		ClientID:        strings.TrimSpace(bt.ClientID),
		UPN:             normalizeUPN(firstNonEmpty(bt.Email, bt.UPN)),
		Scope:           bt.Scope,
		Source:          domain.SourceBroker,
		PRTBound:        bt.IsPRTBound,
		DisplayName:     bt.DisplayName,
		SourceType:      bt.SourceType,
		BrokerCachePath: bt.CachePath,
		ImportedFrom:    filename,
		TenantID:        bt.TenantID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if tok.ClientID == "" {
		tok.ClientID = "unknown"
	}

	md := map[string]string{
		"login_url":    bt.LoginURL,
		"tenant_id":    bt.TenantID,
		"user_oid":     bt.UserOID,
		"session_key":  bt.SessionKey,
		"redirect_uri": bt.RedirectURI,
	}
	for k, v := range md {
		if v == "" {
			delete(md, k)
		}
	}
	if len(md) > 0 {
		tok.Metadata = md
	}

	switch domain.TokenKind(bt.Type) {
	case domain.KindRefreshToken, domain.KindNGCToken:
		tok.Kind = domain.TokenKind(bt.Type)
		tok.Secret = bt.Token
		if bt.Metadata != nil {
			tok.Audience = entra.NormalizeAudience(bt.Metadata.Audience, "")
		}
		if bt.ExpiresAt != "" {
			if t, err := time.Parse(time.RFC3339, bt.ExpiresAt); err == nil {
				t = t.UTC()
				tok.ExpiresAt = &t
			}
		}
		if tok.Kind == domain.KindRefreshToken {
			tok.Classification = domain.Classify(tok.ClientID, tok.PRTBound)
		}
	case domain.KindAccessToken, "":
		tok.Kind = domain.KindAccessToken
		tok.Secret = bt.AccessToken
		var aud string
		if bt.Claims != nil {
			if len(bt.Claims.Aud) > 0 {
				aud = bt.Claims.Aud[0]
			}
			if bt.Claims.Exp != nil {
				t := bt.Claims.Exp.Time.UTC()
				tok.ExpiresAt = &t
			}
		}
		// The export's claims block is optional; the token itself is the
		// authority when it decodes.
		if claims, err := jwtx.Decode(tok.Secret); err == nil {
			if aud == "" {
				aud = claims.Aud()
			}
			if tok.ExpiresAt == nil {
				tok.ExpiresAt = claims.Expiry()
			}
			if tok.UPN == "" {
				tok.UPN = normalizeUPN(claims.Identity())
			}
			if tok.TenantID == "" {
				tok.TenantID = claims.TenantID
			}
		}
		tok.Audience = entra.NormalizeAudience(aud, tok.Scope)
	default:
		return domain.Token{}, fmt.Errorf("unknown token type %q", bt.Type)
	}

	if tok.Secret == "" {
		return domain.Token{}, errors.New("token value is empty")
	}
	return tok, nil
}

func importMessage(res ImportResult, target string) string {
	kinds := make([]string, 0, len(res.ByKind))
	for k := range res.ByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", res.ByKind[domain.TokenKind(k)], k))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "imported %d token(s) from %s", res.Imported, target)
	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	if res.Expired > 0 {
		fmt.Fprintf(&b, ", skipped %d expired", res.Expired)
	}
	if res.Skipped > 0 {
		fmt.Fprintf(&b, ", skipped %d invalid", res.Skipped)
	}
	if res.Duplicates > 0 {
		fmt.Fprintf(&b, ", skipped %d duplicate", res.Duplicates)
	}
	return b.String()
}

type ImportJWTRequest struct {
	AccessToken  string
	RefreshToken string // stored as the embedded refresh token
	ClientID     string // overrides the appid/azp claim
	Activate     bool
}

// ImportJWT stores a raw access token. Audience, identity and expiry come
// from its claims.
func (s *TokenService) ImportJWT(ctx context.Context, req ImportJWTRequest) (domain.Token, error) {
	raw := strings.TrimSpace(req.AccessToken)
	claims, err := jwtx.DecodeAccessToken(raw)
	if err != nil {
		return domain.Token{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	now := s.now()
	tok := domain.Token{
		ID:              idx.New().String(),
		Kind:            domain.KindAccessToken,
		ClientID:        firstNonEmpty(strings.TrimSpace(req.ClientID), claims.ClientID(), "unknown"),
		UPN:             normalizeUPN(claims.Identity()),
		Scope:           claims.Scope(),
		Audience:        entra.NormalizeAudience(claims.Aud(), ""),
		Secret:          raw,
		EmbeddedRefresh: strings.TrimSpace(req.RefreshToken),
		ExpiresAt:       claims.Expiry(),
		Source:          domain.SourceImportedJWT,
		DisplayName:     claims.Name,
		ImportedFrom:    "jwt",
		TenantID:        claims.TenantID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if tok.IsExpired(now) {
		return domain.Token{}, fmt.Errorf("%w: access token expired at %s", ErrInvalidRequest, tok.ExpiresAt.Format(time.RFC3339))
	}
	warnUnmappedAudience(ctx, tok)

	if err := s.create(ctx, tok, req.Activate); err != nil {
		return domain.Token{}, err
	}
	tok.IsActive = req.Activate
	return tok, nil
}

// warnUnmappedAudience flags an access token whose aud could not be turned
// into a resource URL. The resolver will never match it by URL.
func warnUnmappedAudience(ctx context.Context, tok domain.Token) {
	if !tok.IsAccessToken() || tok.Audience == "" || entra.IsNormalized(tok.Audience) {
		return
	}
	slogx.FromContext(ctx).Warn("stored access token with unmapped audience",
		"token_id", tok.ID,
		"audience", tok.Audience,
		"client_id", tok.ClientID,
	)
}

type ImportRefreshRequest struct {
	RefreshToken string
	ClientID     string
	UPN          string
	TenantID     string
	PRTBound     bool
}

// ImportRefresh stores a raw refresh token. Its identity cannot be read from
// the opaque value, so the caller supplies it.
func (s *TokenService) ImportRefresh(ctx context.Context, req ImportRefreshRequest) (domain.Token, error) {
	secret := strings.TrimSpace(req.RefreshToken)
	clientID := strings.TrimSpace(req.ClientID)
	if secret == "" || clientID == "" {
		return domain.Token{}, fmt.Errorf("%w: refresh token and client id are required", ErrInvalidRequest)
	}

	now := s.now()
	tok := domain.Token{
		ID:             idx.New().String(),
		Kind:           domain.KindRefreshToken,
		ClientID:       clientID,
		UPN:            normalizeUPN(req.UPN),
		Secret:         secret,
		Source:         domain.SourceImported,
		Classification: domain.Classify(clientID, req.PRTBound),
		PRTBound:       req.PRTBound,
		ImportedFrom:   "manual",
		TenantID:       req.TenantID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.create(ctx, tok, false); err != nil {
		return domain.Token{}, err
	}
	return tok, nil
}

func (s *TokenService) create(ctx context.Context, tok domain.Token, activate bool) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().CreateToken(ctx, tok); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}
		if activate {
			return tx.Tokens().SetActive(ctx, tok.ID)
		}
		return nil
	})
}

type ListFilter struct {
	Kind       domain.TokenKind
	UPN        string
	Audience   string // substring
	ClientID   string
	ActiveOnly bool
	Limit      int
}

// List returns tokens with truncated secrets.
func (s *TokenService) List(ctx context.Context, f ListFilter) ([]domain.Token, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, f.Kind)
	}
	tokens, err := s.Store.Tokens().ListTokens(ctx, store.TokenFilter{
		Kind:             f.Kind,
		UPN:              normalizeUPN(f.UPN),
		ClientID:         strings.TrimSpace(f.ClientID),
		AudienceContains: strings.TrimSpace(f.Audience),
		ActiveOnly:       f.ActiveOnly,
		Limit:            f.Limit,
	})
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		tokens[i] = tokens[i].Truncated()
	}
	return tokens, nil
}

// Get returns one token; secrets are truncated unless full is set.
func (s *TokenService) Get(ctx context.Context, id string, full bool) (domain.Token, error) {
	tok, err := s.Store.Tokens().GetToken(ctx, id)
	if err != nil {
		return domain.Token{}, err
	}
	if !full {
		tok = tok.Truncated()
	}
	return tok, nil
}

func (s *TokenService) Active(ctx context.Context) (domain.Token, error) {
	tok, err := s.Store.Tokens().GetActiveToken(ctx)
	if err != nil {
		return domain.Token{}, err
	}
	return tok.Truncated(), nil
}

func (s *TokenService) Activate(ctx context.Context, id string) (domain.Token, error) {
	if err := s.Store.Tokens().SetActive(ctx, id); err != nil {
		return domain.Token{}, err
	}
	slogx.FromContext(ctx).Info("token activated", "token_id", id)
	return s.Get(ctx, id, false)
}

func (s *TokenService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Tokens().DeleteToken(ctx, id); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("token deleted", "token_id", id)
	return nil
}

func (s *TokenService) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.Store.Tokens().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	slogx.FromContext(ctx).Info("expired tokens deleted", "count", n)
	return n, nil
}

func (s *TokenService) Stats(ctx context.Context) (store.TokenCounts, error) {
	return s.Store.Tokens().CountTokens(ctx, s.now())
}

type UseRefreshRequest struct {
	TargetClientID string // defaults to the refresh token's own client
	Scope          string // resource or scope, defaults to Graph
	Activate       bool
}

// UseRefreshToken redeems the refresh token id as the target client. Cross
// client redemption requires both clients to be FOCI members.
func (s *TokenService) UseRefreshToken(ctx context.Context, id string, req UseRefreshRequest) (domain.Token, ExchangeOutcome, error) {
	rt, err := s.Store.Tokens().GetToken(ctx, id)
	if err != nil {
		return domain.Token{}, ExchangeOutcome{}, err
	}
	if !rt.IsRefreshToken() {
		return domain.Token{}, ExchangeOutcome{}, ErrNotRefreshToken
	}

	client := strings.TrimSpace(req.TargetClientID)
	if client == "" {
		client = rt.ClientID
	}
	if !entra.CanRedeem(rt.ClientID, client) {
		return domain.Token{}, ExchangeOutcome{}, fmt.Errorf("%w: %s cannot redeem as %s",
			ErrNotRedeemable, entra.DisplayName(rt.ClientID), entra.DisplayName(client))
	}

	origin := domain.SourceRefresh
	if !sameClient(client, rt.ClientID) {
		origin = domain.SourceFOCIExchange
	}

	return s.Exchange.Redeem(ctx, RedeemRequest{
		Source: RefreshSource{
			Secret:   rt.Secret,
			ClientID: rt.ClientID,
			TokenID:  rt.ID,
			Origin:   domain.OriginRefreshRecord,
		},
		ClientID: client,
		Scope:    scopeFor(req.Scope),
		UPN:      rt.UPN,
		Origin:   origin,
		Activate: req.Activate,
	})
}

// scopeFor accepts either a resource URL or a scope string.
func scopeFor(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return defaultUseScope
	case strings.Contains(v, " "), strings.HasSuffix(v, "/.default"):
		return v
	case strings.HasPrefix(v, "https://"):
		return entra.DefaultScope(v)
	default:
		return v
	}
}

type FOCITarget struct {
	entra.App
	Current bool `json:"is_current"`
}

// FOCITargets lists the clients the refresh token can be redeemed as.
func (s *TokenService) FOCITargets(ctx context.Context, id string) ([]FOCITarget, error) {
	rt, err := s.Store.Tokens().GetToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rt.IsRefreshToken() {
		return nil, ErrNotRefreshToken
	}
	if !rt.IsFOCI() {
		return nil, fmt.Errorf("%w: %s is not a FOCI member", ErrNotRedeemable, entra.DisplayName(rt.ClientID))
	}

	apps := entra.FOCIApps()
	out := make([]FOCITarget, 0, len(apps))
	for _, app := range apps {
		out = append(out, FOCITarget{App: app, Current: sameClient(app.ClientID, rt.ClientID)})
	}
	return out, nil
}

type RefreshStats struct {
	Total  int64 `json:"total_refresh_tokens"`
	FOCI   int64 `json:"foci_refresh_tokens"`
	Used   int64 `json:"used_refresh_tokens"`
	Unused int64 `json:"unused_refresh_tokens"`
}

func (s *TokenService) RefreshStats(ctx context.Context) (RefreshStats, error) {
	counts, err := s.Stats(ctx)
	if err != nil {
		return RefreshStats{}, err
	}
	return RefreshStats{
		Total:  counts.ByKind[domain.KindRefreshToken],
		FOCI:   counts.ByClassification[domain.ClassFOCI],
		Used:   counts.RefreshUsed,
		Unused: counts.RefreshUnused,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
