// Package store is the persistence layer. Every method on a tenant table
// takes the shop id and filters on it before anything else.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/database"
)

// Store owns the database handle.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tenant runs fn in a transaction pinned to shopID.
func (s *Store) Tenant(ctx context.Context, shopID int64, fn func(q *Queries) error) error {
	if shopID <= 0 {
		return errors.New("store: tenant transaction without a shop")
	}
	return database.InTx(ctx, s.db, shopID, func(tx *sqlx.Tx) error {
		return fn(&Queries{q: tx})
	})
}

// Global runs fn in a transaction that is not pinned to any shop. It is for
// the tenant directory itself: shops, users and logins.
func (s *Store) Global(ctx context.Context, fn func(q *Queries) error) error {
	return database.InTx(ctx, s.db, 0, func(tx *sqlx.Tx) error {
		return fn(&Queries{q: tx})
	})
}

// Queries runs statements on a transaction.
type Queries struct {
	q sqlx.ExtContext
}

func (q *Queries) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q.q, dest, q.q.Rebind(query), args...)
}

func (q *Queries) sel(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.q, dest, q.q.Rebind(query), args...)
}

// selBound runs a query that is already rebound.
func (q *Queries) selBound(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.q, dest, query, args...)
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.q.ExecContext(ctx, q.q.Rebind(query), args...)
}

func (q *Queries) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := q.q.QueryRowxContext(ctx, q.q.Rebind(query), args...).Scan(&id)
	return id, err
}

// in expands IN (?) placeholders and rebinds for the driver.
func (q *Queries) in(query string, args ...any) (string, []any, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return q.q.Rebind(query), args, nil
}

func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity)
	}
	return fmt.Errorf("load %s: %w", entity, err)
}

func affectedOne(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(entity)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern matching text
// anywhere. Wildcards typed by the user match literally.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(text))) + "%"
}

// pageBounds turns a caller's limit and offset into query arguments. A
// limit of zero or less means every row.
func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
