package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// StorageError wraps any driver failure that is not one of the sentinels
// above. It is never swallowed: callers surface it as-is.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Store is the root data access interface, split into sub-repositories. A
// Tx exposes the same repositories so multi-step writes (exchange + rotation)
// commit or roll back together.
type Store interface {
	Tokens() Tokens
	Operators() Operators

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// TokenFilter narrows ListTokens. Zero values mean "any".
type TokenFilter struct {
	Kind               domain.TokenKind
	UPN                string
	ExcludeUPN         string
	ClientID           string
	Audience           string // exact match
	AudienceContains   string
	NonExpiredAt       *time.Time // expires_at NULL or after this instant
	HasEmbeddedRefresh bool
	ActiveOnly         bool
	Limit              int
}

// TokenCounts summarises the store for the stats surfaces.
type TokenCounts struct {
	Total            int64
	ByKind           map[domain.TokenKind]int64
	ByClassification map[domain.Classification]int64
	RefreshUsed      int64
	RefreshUnused    int64
	Expired          int64
}

type Tokens interface {
	// CreateToken inserts t. t.ID is assigned by the caller.
	CreateToken(ctx context.Context, t domain.Token) error

	GetToken(ctx context.Context, id string) (domain.Token, error)
	GetActiveToken(ctx context.Context) (domain.Token, error)

	// ListTokens orders by expires_at descending with unknown expiry first,
	// then newest first.
	ListTokens(ctx context.Context, f TokenFilter) ([]domain.Token, error)

	// ListExpiring returns access tokens with from < expires_at <= until,
	// soonest first.
	ListExpiring(ctx context.Context, from, until time.Time) ([]domain.Token, error)

	FindByCachePath(ctx context.Context, path string) (domain.Token, error)

	// SetActive flags id as the active token and clears every other flag.
	SetActive(ctx context.Context, id string) error
	ClearActive(ctx context.Context) error

	MarkUsed(ctx context.Context, id string, at time.Time) error

	// RotateSecret and RotateEmbeddedRefresh replace a secret with a single
	// UPDATE so concurrent readers see either the old or the new value.
	RotateSecret(ctx context.Context, id, secret string, at time.Time) error
	RotateEmbeddedRefresh(ctx context.Context, id, secret string, at time.Time) error

	DeleteToken(ctx context.Context, id string) error

	// DeleteExpired removes access tokens with expires_at <= now, keeping
	// those that carry an embedded refresh token.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	CountTokens(ctx context.Context, now time.Time) (TokenCounts, error)
}

type Operators interface {
	CreateOperator(ctx context.Context, o domain.Operator) error
	GetOperator(ctx context.Context, id string) (domain.Operator, error)
	GetOperatorByUsername(ctx context.Context, username string) (domain.Operator, error)

	UpdateAPIKeyHash(ctx context.Context, id, hash string) error

	// UpdateTOTPSecret stores a pending secret; EnableTOTP confirms it.
	UpdateTOTPSecret(ctx context.Context, id, secret string) error
	EnableTOTP(ctx context.Context, id string, at time.Time) error
	DisableTOTP(ctx context.Context, id string) error

	TouchLastSeen(ctx context.Context, id string, at time.Time) error

	IsEmpty(ctx context.Context) (bool, error)
}
