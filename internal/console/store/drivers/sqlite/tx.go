package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/internal/console/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/specter/pkg/cryptox"
)

type txStore struct {
	tx     *sql.Tx
	q      *gen.Queries
	sealer *cryptox.Sealer
}

func newTx(tx *sql.Tx, sealer *cryptox.Sealer) *txStore {
	return &txStore{tx: tx, q: gen.New(tx), sealer: sealer}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Tokens() store.Tokens       { return &tokensRepo{q: t.q, sealer: t.sealer} }
func (t *txStore) Operators() store.Operators { return &operatorsRepo{q: t.q, sealer: t.sealer} }

// ApplyMigrations is a no-op inside a transaction; migrations run at startup.
func (t *txStore) ApplyMigrations() error { return nil }
