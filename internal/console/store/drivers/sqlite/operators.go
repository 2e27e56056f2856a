package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/internal/console/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/specter/pkg/cryptox"
)

var errEmptyID = errors.New("id is required")

type operatorsRepo struct {
	q      *gen.Queries
	sealer *cryptox.Sealer
}

func (r *operatorsRepo) CreateOperator(ctx context.Context, o domain.Operator) error {
	if o.ID == "" {
		return &store.StorageError{Op: "create operator", Err: errEmptyID}
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	var totp sql.NullString
	if o.TOTPSecret != nil {
		sealed, err := seal(r.sealer, *o.TOTPSecret)
		if err != nil {
			return &store.StorageError{Op: "seal totp secret", Err: err}
		}
		totp = nullString(sealed)
	}

	err := r.q.CreateOperator(ctx, gen.CreateOperatorParams{
		ID:            o.ID,
		Username:      o.Username,
		ApiKeyHash:    o.APIKeyHash,
		TotpSecret:    totp,
		TotpEnabledAt: nullTime(o.TOTPEnabledAt),
		CreatedAt:     o.CreatedAt.UTC(),
		LastSeenAt:    nullTime(o.LastSeenAt),
	})
	return mapErr("create operator", err)
}

func (r *operatorsRepo) GetOperator(ctx context.Context, id string) (domain.Operator, error) {
	row, err := r.q.GetOperator(ctx, id)
	if err != nil {
		return domain.Operator{}, mapErr("get operator", err)
	}
	return r.mapOperator(row)
}

func (r *operatorsRepo) GetOperatorByUsername(ctx context.Context, username string) (domain.Operator, error) {
	row, err := r.q.GetOperatorByUsername(ctx, username)
	if err != nil {
		return domain.Operator{}, mapErr("get operator by username", err)
	}
	return r.mapOperator(row)
}

func (r *operatorsRepo) UpdateAPIKeyHash(ctx context.Context, id, hash string) error {
	n, err := r.q.UpdateOperatorAPIKeyHash(ctx, gen.UpdateOperatorAPIKeyHashParams{ApiKeyHash: hash, ID: id})
	return mustAffect("update api key hash", n, err)
}

func (r *operatorsRepo) UpdateTOTPSecret(ctx context.Context, id, secret string) error {
	sealed, err := seal(r.sealer, secret)
	if err != nil {
		return &store.StorageError{Op: "seal totp secret", Err: err}
	}
	n, err := r.q.UpdateOperatorTOTPSecret(ctx, gen.UpdateOperatorTOTPSecretParams{
		TotpSecret: nullString(sealed),
		ID:         id,
	})
	return mustAffect("update totp secret", n, err)
}

func (r *operatorsRepo) EnableTOTP(ctx context.Context, id string, at time.Time) error {
	n, err := r.q.EnableOperatorTOTP(ctx, gen.EnableOperatorTOTPParams{TotpEnabledAt: validTime(at), ID: id})
	return mustAffect("enable totp", n, err)
}

func (r *operatorsRepo) DisableTOTP(ctx context.Context, id string) error {
	n, err := r.q.DisableOperatorTOTP(ctx, id)
	return mustAffect("disable totp", n, err)
}

func (r *operatorsRepo) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	err := r.q.TouchOperatorLastSeen(ctx, gen.TouchOperatorLastSeenParams{LastSeenAt: validTime(at), ID: id})
	return mapErr("touch last seen", err)
}

func (r *operatorsRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.q.CountOperators(ctx)
	if err != nil {
		return false, mapErr("count operators", err)
	}
	return n == 0, nil
}

func (r *operatorsRepo) mapOperator(row gen.Operator) (domain.Operator, error) {
	op := domain.Operator{
		ID:            row.ID,
		Username:      row.Username,
		APIKeyHash:    row.ApiKeyHash,
		TOTPEnabledAt: timePtr(row.TotpEnabledAt),
		CreatedAt:     row.CreatedAt.UTC(),
		LastSeenAt:    timePtr(row.LastSeenAt),
	}
	if row.TotpSecret.Valid {
		secret, err := open(r.sealer, row.TotpSecret.String)
		if err != nil {
			return domain.Operator{}, &store.StorageError{Op: "open totp secret", Err: err}
		}
		op.TOTPSecret = &secret
	}
	return op, nil
}
