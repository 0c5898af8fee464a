// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"

	"pharmatrack/m/internal/database"
	"pharmatrack/m/internal/migrations"
)

var seq atomic.Int64

// New returns an isolated, migrated in-memory sqlite database that is closed
// when the test ends.
func New(tb testing.TB) *sqlx.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:pharmatrack_test_%d?mode=memory&cache=shared&_time_format=sqlite", seq.Add(1))
	db, err := database.Connect(context.Background(), database.DriverSQLite, dsn)
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if err := migrations.Run(context.Background(), db); err != nil {
		tb.Fatalf("migrate test database: %v", err)
	}
	return db
}
