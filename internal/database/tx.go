package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// InTx runs fn inside a transaction. On postgres a positive shopID is pinned
// to the transaction as app.current_shop_id, which the row level security
// policies compare against.
func InTx(ctx context.Context, db *sqlx.DB, shopID int64, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if shopID > 0 && IsPostgres(db) {
		if _, err := tx.ExecContext(ctx, `SELECT set_config('app.current_shop_id', $1, true)`, strconv.FormatInt(shopID, 10)); err != nil {
			return fmt.Errorf("bind tenant: %w", err)
		}
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
