package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/internal/console/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/specter/pkg/cryptox"
)

type tokensRepo struct {
	q      *gen.Queries
	sealer *cryptox.Sealer
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	if t.ID == "" {
		return &store.StorageError{Op: "create token", Err: errEmptyID}
	}

	secret, err := seal(r.sealer, t.Secret)
	if err != nil {
		return &store.StorageError{Op: "seal secret", Err: err}
	}
	embedded, err := seal(r.sealer, t.EmbeddedRefresh)
	if err != nil {
		return &store.StorageError{Op: "seal embedded refresh", Err: err}
	}
	metadata, err := encodeMetadata(t.Metadata)
	if err != nil {
		return &store.StorageError{Op: "encode metadata", Err: err}
	}

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}

	err = r.q.CreateToken(ctx, gen.CreateTokenParams{
		ID:              t.ID,
		Kind:            string(t.Kind),
		ClientID:        t.ClientID,
		Upn:             t.UPN,
		Scope:           t.Scope,
		Audience:        t.Audience,
		Secret:          secret,
		EmbeddedRefresh: embedded,
		ExpiresAt:       nullTime(t.ExpiresAt),
		IsActive:        t.IsActive,
		Source:          string(t.Source),
		ParentID:        nullString(t.ParentID),
		Classification:  string(t.Classification),
		PrtBound:        t.PRTBound,
		DisplayName:     t.DisplayName,
		SourceType:      t.SourceType,
		BrokerCachePath: t.BrokerCachePath,
		ImportedFrom:    t.ImportedFrom,
		TenantID:        t.TenantID,
		Metadata:        metadata,
		LastUsedAt:      nullTime(t.LastUsedAt),
		CreatedAt:       t.CreatedAt.UTC(),
		UpdatedAt:       t.UpdatedAt.UTC(),
	})
	return mapErr("create token", err)
}

func (r *tokensRepo) GetToken(ctx context.Context, id string) (domain.Token, error) {
	row, err := r.q.GetToken(ctx, id)
	if err != nil {
		return domain.Token{}, mapErr("get token", err)
	}
	return mapToken(row, r.sealer)
}

func (r *tokensRepo) GetActiveToken(ctx context.Context) (domain.Token, error) {
	row, err := r.q.GetActiveToken(ctx)
	if err != nil {
		return domain.Token{}, mapErr("get active token", err)
	}
	return mapToken(row, r.sealer)
}

func (r *tokensRepo) ListTokens(ctx context.Context, f store.TokenFilter) ([]domain.Token, error) {
	limit := int64(f.Limit)
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := r.q.ListTokens(ctx, gen.ListTokensParams{
		Kind:               nullString(string(f.Kind)),
		Upn:                nullString(f.UPN),
		ExcludeUpn:         nullString(f.ExcludeUPN),
		ClientID:           nullString(f.ClientID),
		Audience:           nullString(f.Audience),
		AudienceContains:   nullString(f.AudienceContains),
		NonExpiredAt:       nullTime(f.NonExpiredAt),
		HasEmbeddedRefresh: f.HasEmbeddedRefresh,
		ActiveOnly:         f.ActiveOnly,
		Limit:              limit,
	})
	if err != nil {
		return nil, mapErr("list tokens", err)
	}
	return r.mapRows(rows)
}

func (r *tokensRepo) ListExpiring(ctx context.Context, from, until time.Time) ([]domain.Token, error) {
	rows, err := r.q.ListExpiring(ctx, gen.ListExpiringParams{
		FromAt:  validTime(from),
		UntilAt: validTime(until),
	})
	if err != nil {
		return nil, mapErr("list expiring", err)
	}
	return r.mapRows(rows)
}

func (r *tokensRepo) FindByCachePath(ctx context.Context, path string) (domain.Token, error) {
	if path == "" {
		return domain.Token{}, store.ErrNotFound
	}
	row, err := r.q.FindByCachePath(ctx, path)
	if err != nil {
		return domain.Token{}, mapErr("find by cache path", err)
	}
	return mapToken(row, r.sealer)
}

// SetActive runs two statements; callers outside a transaction get a brief
// window with no active token, never two.
func (r *tokensRepo) SetActive(ctx context.Context, id string) error {
	if err := r.q.ClearActive(ctx); err != nil {
		return mapErr("clear active", err)
	}
	n, err := r.q.SetActive(ctx, gen.SetActiveParams{UpdatedAt: time.Now().UTC(), ID: id})
	return mustAffect("set active", n, err)
}

func (r *tokensRepo) ClearActive(ctx context.Context) error {
	return mapErr("clear active", r.q.ClearActive(ctx))
}

func (r *tokensRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	n, err := r.q.MarkUsed(ctx, gen.MarkUsedParams{LastUsedAt: validTime(at), ID: id})
	return mustAffect("mark used", n, err)
}

func (r *tokensRepo) RotateSecret(ctx context.Context, id, secret string, at time.Time) error {
	sealed, err := seal(r.sealer, secret)
	if err != nil {
		return &store.StorageError{Op: "seal secret", Err: err}
	}
	n, err := r.q.RotateSecret(ctx, gen.RotateSecretParams{Secret: sealed, UpdatedAt: at.UTC(), ID: id})
	return mustAffect("rotate secret", n, err)
}

func (r *tokensRepo) RotateEmbeddedRefresh(ctx context.Context, id, secret string, at time.Time) error {
	sealed, err := seal(r.sealer, secret)
	if err != nil {
		return &store.StorageError{Op: "seal embedded refresh", Err: err}
	}
	n, err := r.q.RotateEmbeddedRefresh(ctx, gen.RotateEmbeddedRefreshParams{
		EmbeddedRefresh: sealed,
		UpdatedAt:       at.UTC(),
		ID:              id,
	})
	return mustAffect("rotate embedded refresh", n, err)
}

func (r *tokensRepo) DeleteToken(ctx context.Context, id string) error {
	n, err := r.q.DeleteToken(ctx, id)
	return mustAffect("delete token", n, err)
}

func (r *tokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.q.DeleteExpired(ctx, validTime(now))
	if err != nil {
		return 0, mapErr("delete expired", err)
	}
	return n, nil
}

func (r *tokensRepo) CountTokens(ctx context.Context, now time.Time) (store.TokenCounts, error) {
	rows, err := r.q.CountTokensByKind(ctx, now.UTC())
	if err != nil {
		return store.TokenCounts{}, mapErr("count tokens", err)
	}

	counts := store.TokenCounts{
		ByKind:           map[domain.TokenKind]int64{},
		ByClassification: map[domain.Classification]int64{},
	}
	for _, row := range rows {
		kind := domain.TokenKind(row.Kind)
		counts.Total += row.Total
		counts.ByKind[kind] += row.Total
		counts.Expired += row.Expired.Int64
		if kind != domain.KindRefreshToken {
			continue
		}
		if row.Classification != "" {
			counts.ByClassification[domain.Classification(row.Classification)] += row.Total
		}
		counts.RefreshUsed += row.Used.Int64
		counts.RefreshUnused += row.Total - row.Used.Int64
	}
	return counts, nil
}

func (r *tokensRepo) mapRows(rows []gen.Token) ([]domain.Token, error) {
	out := make([]domain.Token, 0, len(rows))
	for _, row := range rows {
		t, err := mapToken(row, r.sealer)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
