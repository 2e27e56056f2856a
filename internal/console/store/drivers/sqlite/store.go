package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/internal/console/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/specter/pkg/cryptox"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db     *sql.DB
	q      *gen.Queries
	sealer *cryptox.Sealer
	path   string
}

type Option func(*Store)

// WithSealer seals token secrets and TOTP secrets at rest.
func WithSealer(s *cryptox.Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

// NewStore opens (creating if needed) the database at path. ":memory:" gives
// a private in-memory database backed by a single connection.
func NewStore(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, q: gen.New(db), path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// dsn enables WAL so readers never block on the writer, a busy timeout so
// concurrent writers queue instead of failing, FK enforcement for lineage,
// and an ISO time format so expiry comparisons happen in SQL.
func dsn(path string) string {
	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Set("_time_format", "sqlite")
	params.Set("_txlock", "immediate")

	if path == ":memory:" {
		return "file::memory:?" + params.Encode()
	}
	return "file:" + path + "?" + params.Encode()
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &store.StorageError{Op: "begin", Err: err}
	}
	return newTx(tx, s.sealer), nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &store.StorageError{Op: "commit", Err: err}
	}
	return nil
}

func (s *Store) Tokens() store.Tokens       { return &tokensRepo{q: s.q, sealer: s.sealer} }
func (s *Store) Operators() store.Operators { return &operatorsRepo{q: s.q, sealer: s.sealer} }

// mapErr turns driver errors into store errors.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return store.ErrAlreadyExists
		}
	}
	return &store.StorageError{Op: op, Err: err}
}

// mustAffect reports ErrNotFound when an update matched no rows.
func mustAffect(op string, n int64, err error) error {
	if err != nil {
		return mapErr(op, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func validTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time.UTC()
	return &v
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(s string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" || s == "{}" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

func mapToken(row gen.Token, sealer *cryptox.Sealer) (domain.Token, error) {
	secret, err := open(sealer, row.Secret)
	if err != nil {
		return domain.Token{}, &store.StorageError{Op: "open secret", Err: err}
	}
	embedded, err := open(sealer, row.EmbeddedRefresh)
	if err != nil {
		return domain.Token{}, &store.StorageError{Op: "open embedded refresh", Err: err}
	}

	return domain.Token{
		ID:              row.ID,
		Kind:            domain.TokenKind(row.Kind),
		ClientID:        row.ClientID,
		UPN:             row.Upn,
		Scope:           row.Scope,
		Audience:        row.Audience,
		Secret:          secret,
		EmbeddedRefresh: embedded,
		ExpiresAt:       timePtr(row.ExpiresAt),
		IsActive:        row.IsActive,
		Source:          domain.TokenSource(row.Source),
		ParentID:        row.ParentID.String,
		Classification:  domain.Classification(row.Classification),
		PRTBound:        row.PrtBound,
		DisplayName:     row.DisplayName,
		SourceType:      row.SourceType,
		BrokerCachePath: row.BrokerCachePath,
		ImportedFrom:    row.ImportedFrom,
		TenantID:        row.TenantID,
		Metadata:        decodeMetadata(row.Metadata),
		LastUsedAt:      timePtr(row.LastUsedAt),
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}, nil
}

func seal(s *cryptox.Sealer, v string) (string, error) {
	if s == nil {
		return v, nil
	}
	return s.SealString(v)
}

func open(s *cryptox.Sealer, v string) (string, error) {
	if s == nil {
		return v, nil
	}
	return s.OpenString(v)
}
