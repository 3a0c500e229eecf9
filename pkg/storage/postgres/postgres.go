// Package postgres implements storage.Store on PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/platinummonkey/coursebook/pkg/storage"
)

// uniqueViolation is the SQLSTATE of a unique index violation
const uniqueViolation = "23505"

// DBTX is the subset of database/sql used by the queries.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements storage.Store using PostgreSQL
type Store struct {
	db *sql.DB
	q  DBTX
}

var _ storage.Store = (*Store)(nil)

// NewStore wraps an open database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Open connects, optionally migrates, and returns a ready store
func Open(ctx context.Context, cfg storage.Config) (*Store, error) {
	db, err := Connect(ctx, ConnectionConfigFrom(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return NewStore(db), nil
}

// DB returns the underlying handle
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Backend() string { return "postgres" }

// Ping checks connectivity with a trivial query
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres unhealthy: %w", err)
	}
	return nil
}

// Stats returns connection pool statistics
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// mapError translates driver errors into storage sentinels
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, storage.ErrConflict)
	}
	return fmt.Errorf("%s: db error: %w", op, err)
}

// expectOneRow turns an update result into ErrNotFound when nothing matched
func expectOneRow(op string, res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected error: %w", op, err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return none
	default:
		return fmt.Errorf("%s: unexpected rows affected: %d", op, n)
	}
}
