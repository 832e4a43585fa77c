package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"sbt/internal/credential/models"
	"sbt/pkg/domain"
	"sbt/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresStore persists credentials in PostgreSQL. Token ids are stored as
// NUMERIC(20,0) and exchanged as decimal strings to keep the full uint64 range.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) Insert(ctx context.Context, credential *models.Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin credential insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if err := insertCredential(ctx, tx, credential); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credential insert: %w", err)
	}
	return nil
}

func insertCredential(ctx context.Context, exec dbExecutor, c *models.Credential) error {
	var held int
	err := exec.QueryRowContext(ctx, `SELECT 1 FROM credentials WHERE owner = $1`, c.Owner.String()).Scan(&held)
	switch {
	case err == nil:
		return sentinel.ErrOwnerTaken
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check owner: %w", err)
	}

	// The ledger row is never deleted, so a conflict means the id was issued before.
	res, err := exec.ExecContext(ctx, `
		INSERT INTO issued_token_ids (token_id, issued_at)
		VALUES ($1::numeric, $2)
		ON CONFLICT (token_id) DO NOTHING
	`, c.ID.String(), c.IssuedAt)
	if err != nil {
		return fmt.Errorf("record issued id: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("record issued id rows: %w", err)
	} else if n == 0 {
		return sentinel.ErrIDTaken
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO credentials (token_id, owner, issuer, burn_auth, issued_at)
		VALUES ($1::numeric, $2, $3, $4, $5)
	`, c.ID.String(), c.Owner.String(), c.Issuer.String(), int16(c.BurnAuth), c.IssuedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// mapUniqueViolation translates constraint races lost to a concurrent insert.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == "credentials_owner_key" {
			return sentinel.ErrOwnerTaken
		}
		return sentinel.ErrIDTaken
	}
	return fmt.Errorf("insert credential: %w", err)
}

const selectCredential = `
	SELECT token_id::text, owner, issuer, burn_auth, issued_at
	FROM credentials
`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	c, err := scanCredential(s.db.QueryRowContext(ctx, selectCredential+" WHERE token_id = $1::numeric", id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByOwner(ctx context.Context, owner domain.Account) (*models.Credential, error) {
	c, err := scanCredential(s.db.QueryRowContext(ctx, selectCredential+" WHERE owner = $1", owner.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by owner: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	c, err := scanCredential(s.db.QueryRowContext(ctx, `
		DELETE FROM credentials
		WHERE token_id = $1::numeric
		RETURNING token_id::text, owner, issuer, burn_auth, issued_at
	`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("delete credential: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.Credential, error) {
	var (
		rawID         string
		owner, issuer string
		burnAuth      int16
		c             models.Credential
	)
	if err := row.Scan(&rawID, &owner, &issuer, &burnAuth, &c.IssuedAt); err != nil {
		return nil, err
	}
	id, err := domain.ParseCredentialID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse stored token id: %w", err)
	}
	c.ID = id
	c.Owner = domain.Account(owner)
	c.Issuer = domain.Account(issuer)
	c.BurnAuth = models.BurnAuth(burnAuth)
	return &c, nil
}
