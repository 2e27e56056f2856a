package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/slogx"
	"golang.org/x/sync/singleflight"
)

// maxCandidates bounds the identities listed in a CrossIdentityError.
const maxCandidates = 5

type Via string

const (
	ViaActive   Via = "active"
	ViaExisting Via = "existing"
	ViaExchange Via = "exchange"
)

// UsableToken is an unexpired access token for the requested audience.
type UsableToken struct {
	TokenID     string     `json:"token_id"`
	UPN         string     `json:"upn"`
	ClientID    string     `json:"client_id"`
	Audience    string     `json:"audience"`
	AccessToken string     `json:"-"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Via         Via        `json:"via"`
}

func usable(t domain.Token, via Via) UsableToken {
	return UsableToken{
		TokenID:     t.ID,
		UPN:         t.UPN,
		ClientID:    t.ClientID,
		Audience:    t.Audience,
		AccessToken: t.Secret,
		ExpiresAt:   t.ExpiresAt,
		Via:         via,
	}
}

// Resolver hands out access tokens for an audience, minting them through the
// broker client when the store has none.
type Resolver struct {
	Store    store.Store
	Exchange *ExchangeService
	Locator  *RefreshLocator

	// BrokerClientID is the client every resolver exchange redeems as.
	// Defaults to entra.BrokerClientID.
	BrokerClientID string

	Now func() time.Time

	group singleflight.Group
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *Resolver) broker() string {
	if r.BrokerClientID != "" {
		return r.BrokerClientID
	}
	return entra.BrokerClientID
}

// Resolve returns a usable access token for audience. An empty identity
// means the identity of the active token.
func (r *Resolver) Resolve(ctx context.Context, audience, identity string) (UsableToken, error) {
	target := entra.NormalizeAudience(audience, "")
	if target == "" {
		return UsableToken{}, fmt.Errorf("%w: audience is required", ErrInvalidRequest)
	}

	active, err := r.activeToken(ctx)
	if err != nil {
		return UsableToken{}, err
	}

	identity = normalizeUPN(identity)
	if identity == "" {
		if active == nil || active.UPN == "" {
			return UsableToken{}, ErrNoActiveContext
		}
		identity = active.UPN
	}

	return r.resolveFor(ctx, target, identity, active)
}

func (r *Resolver) activeToken(ctx context.Context) (*domain.Token, error) {
	t, err := r.Store.Tokens().GetActiveToken(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Resolver) resolveFor(ctx context.Context, target, identity string, active *domain.Token) (UsableToken, error) {
	log := slogx.FromContext(ctx).With("audience", target, "upn", identity)
	now := r.now()

	if active != nil && active.UPN == identity && active.IsAccessToken() &&
		active.Audience == target && !active.IsExpired(now) && !active.IsPlaceholder() {
		return r.hand(ctx, *active, ViaActive)
	}

	existing, err := r.existing(ctx, target, identity, now)
	if err != nil {
		return UsableToken{}, err
	}
	if existing != nil {
		return r.hand(ctx, *existing, ViaExisting)
	}

	// Joined callers share the first caller's exchange, so it must not die
	// with the first caller's request.
	detached := context.WithoutCancel(ctx)
	v, err, shared := r.group.Do(identity+"|"+target, func() (any, error) {
		return r.exchange(detached, target, identity)
	})
	if err != nil {
		return UsableToken{}, err
	}
	tok := v.(domain.Token)
	if shared {
		log.Debug("joined in-flight exchange", "token_id", tok.ID)
	}
	return r.hand(ctx, tok, ViaExchange)
}

// existing returns the live access token with the latest expiry, deleting
// expired matches when nothing live remains. Expired tokens carrying a
// refresh token are kept for the locator.
func (r *Resolver) existing(ctx context.Context, target, identity string, now time.Time) (*domain.Token, error) {
	matches, err := r.Store.Tokens().ListTokens(ctx, store.TokenFilter{
		Kind:     domain.KindAccessToken,
		UPN:      identity,
		Audience: target,
	})
	if err != nil {
		return nil, fmt.Errorf("searching access tokens: %w", err)
	}

	var best *domain.Token
	var expired []domain.Token
	for i := range matches {
		m := matches[i]
		switch {
		case m.IsExpired(now):
			expired = append(expired, m)
		case m.IsPlaceholder():
		case best == nil || laterExpiry(m.ExpiresAt, best.ExpiresAt):
			best = &matches[i]
		}
	}
	if best != nil {
		return best, nil
	}

	log := slogx.FromContext(ctx)
	for _, t := range expired {
		if t.EmbeddedRefresh != "" {
			continue
		}
		if err := r.Store.Tokens().DeleteToken(ctx, t.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("deleting expired token: %w", err)
		}
		log.Info("deleted expired access token", "token_id", t.ID, "audience", t.Audience)
	}
	return nil, nil
}

// laterExpiry reports whether a expires after b. A nil expiry ranks last.
func laterExpiry(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}

func (r *Resolver) exchange(ctx context.Context, target, identity string) (domain.Token, error) {
	broker := r.broker()

	src, err := r.Locator.Locate(ctx, identity, broker, nil)
	if errors.Is(err, ErrNoRefreshTokenAvailable) {
		if target == entra.AudienceARM {
			if cerr := r.crossIdentity(ctx, target, identity); cerr != nil {
				return domain.Token{}, cerr
			}
		}
		return domain.Token{}, err
	}
	if err != nil {
		return domain.Token{}, err
	}

	origin := domain.SourceFOCIExchange
	if sameClient(src.ClientID, broker) {
		origin = domain.SourceRefresh
	}

	tok, _, err := r.Exchange.Redeem(ctx, RedeemRequest{
		Source:   src,
		ClientID: broker,
		Scope:    entra.DefaultScope(target),
		UPN:      identity,
		Origin:   origin,
	})
	if err != nil {
		return domain.Token{}, err
	}
	return tok, nil
}

// crossIdentity returns a CrossIdentityError when other identities hold live
// tokens for target, or nil.
func (r *Resolver) crossIdentity(ctx context.Context, target, identity string) error {
	now := r.now()
	others, err := r.Store.Tokens().ListTokens(ctx, store.TokenFilter{
		Kind:         domain.KindAccessToken,
		ExcludeUPN:   identity,
		Audience:     target,
		NonExpiredAt: &now,
	})
	if err != nil {
		return fmt.Errorf("searching other identities: %w", err)
	}

	seen := make(map[string]struct{})
	var candidates []Candidate
	for _, t := range others {
		if t.UPN == "" || t.IsExpired(now) {
			continue
		}
		if _, ok := seen[t.UPN]; ok {
			continue
		}
		seen[t.UPN] = struct{}{}
		candidates = append(candidates, Candidate{UPN: t.UPN, TokenID: t.ID, ExpiresAt: t.ExpiresAt})
		if len(candidates) == maxCandidates {
			break
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return &CrossIdentityError{Audience: target, Identity: identity, Candidates: candidates}
}

func (r *Resolver) hand(ctx context.Context, t domain.Token, via Via) (UsableToken, error) {
	if err := r.Store.Tokens().MarkUsed(ctx, t.ID, r.now()); err != nil {
		return UsableToken{}, fmt.Errorf("marking token used: %w", err)
	}
	slogx.FromContext(ctx).Debug("token resolved", "token_id", t.ID, "via", via)
	return usable(t, via), nil
}

// AudienceStatus is one line of an AudienceReport.
type AudienceStatus struct {
	Key       string     `json:"key"`
	Resource  string     `json:"resource"`
	Available bool       `json:"available"`
	TokenID   string     `json:"token_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

type AudienceReport struct {
	Identity      string           `json:"upn"`
	FOCIAvailable bool             `json:"foci_available"`
	Audiences     []AudienceStatus `json:"audiences"`
}

// ListAvailableAudiences reports, for each well-known audience, whether the
// identity already holds a live token and whether one could be minted.
func (r *Resolver) ListAvailableAudiences(ctx context.Context, identity string) (AudienceReport, error) {
	identity = normalizeUPN(identity)
	if identity == "" {
		active, err := r.activeToken(ctx)
		if err != nil {
			return AudienceReport{}, err
		}
		if active == nil || active.UPN == "" {
			return AudienceReport{}, ErrNoActiveContext
		}
		identity = active.UPN
	}

	now := r.now()
	live, err := r.Store.Tokens().ListTokens(ctx, store.TokenFilter{
		Kind:         domain.KindAccessToken,
		UPN:          identity,
		NonExpiredAt: &now,
	})
	if err != nil {
		return AudienceReport{}, fmt.Errorf("listing access tokens: %w", err)
	}

	report := AudienceReport{Identity: identity}
	_, err = r.Locator.Locate(ctx, identity, r.broker(), nil)
	switch {
	case err == nil:
		report.FOCIAvailable = true
	case !errors.Is(err, ErrNoRefreshTokenAvailable):
		return AudienceReport{}, err
	}

	for _, known := range entra.KnownAudiences() {
		status := AudienceStatus{Key: known.Key, Resource: known.Resource}
		var best *domain.Token
		for i := range live {
			t := live[i]
			if t.Audience != known.Resource || t.IsExpired(now) || t.IsPlaceholder() {
				continue
			}
			if best == nil || laterExpiry(t.ExpiresAt, best.ExpiresAt) {
				best = &live[i]
			}
		}
		switch {
		case best != nil:
			status.Available = true
			status.TokenID = best.ID
			status.ExpiresAt = best.ExpiresAt
		case report.FOCIAvailable:
			status.Reason = "exchange_possible"
		default:
			status.Reason = "no_token"
		}
		report.Audiences = append(report.Audiences, status)
	}
	return report, nil
}
