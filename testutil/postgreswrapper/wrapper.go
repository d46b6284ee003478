// Package postgreswrapper opens a postgresengine.Store against the test database
// through the driver selected by ADAPTER_TYPE, so the same tests exercise every adapter.
package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/shell/config"
	"github.com/AntonStoeckl/library-rentals-go/store/postgresengine"
)

// Engine type constants
const (
	typePGXPool = config.AdapterPGXPool
	typeSQLDB   = config.AdapterSQLDB
	typeSQLXDB  = config.AdapterSQLXDB

	envTestDSN     = "POSTGRES_TEST_DSN"
	envAdapterType = "ADAPTER_TYPE"

	truncateAll = "TRUNCATE TABLE payments, borrowings, notification_channels, books"
)

// Wrapper interface to abstract over different engine types
type Wrapper interface {
	GetStore() postgresengine.Store
	Exec(query string) error
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store postgresengine.Store
}

func (e *PGXPoolWrapper) GetStore() postgresengine.Store {
	return e.store
}

func (e *PGXPoolWrapper) Exec(query string) error {
	_, err := e.pool.Exec(context.Background(), query)
	return err
}

func (e *PGXPoolWrapper) Close() {
	e.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store postgresengine.Store
}

func (e *SQLDBWrapper) GetStore() postgresengine.Store {
	return e.store
}

func (e *SQLDBWrapper) Exec(query string) error {
	_, err := e.db.Exec(query)
	return err
}

func (e *SQLDBWrapper) Close() {
	_ = e.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store postgresengine.Store
}

func (e *SQLXWrapper) GetStore() postgresengine.Store {
	return e.store
}

func (e *SQLXWrapper) Exec(query string) error {
	_, err := e.db.Exec(query)
	return err
}

func (e *SQLXWrapper) Close() {
	_ = e.db.Close() // ignore error
}

// DSN returns the test database DSN and skips the test when none is configured.
func DSN(t testing.TB) string {
	t.Helper()

	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s is not set, skipping postgres test", envTestDSN)
	}

	return dsn
}

// CreateWrapperWithTestConfig migrates the test database, opens a Store with the adapter chosen
// by ADAPTER_TYPE and registers closing it with t.Cleanup. It skips the test without a DSN.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	dsn := DSN(t)
	require.NoError(t, postgresengine.Migrate(dsn, postgresengine.MigrateUp), "error migrating the test database")

	ctx := context.Background()
	engineTypeFromEnv := strings.ToLower(os.Getenv(envAdapterType))

	var wrapper Wrapper

	switch engineTypeFromEnv {
	case typePGXPool, "":
		pool, err := config.OpenPGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		s, err := postgresengine.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &PGXPoolWrapper{pool: pool, store: s}

	case typeSQLDB:
		db, err := config.OpenSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		s, err := postgresengine.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLDBWrapper{db: db, store: s}

	case typeSQLXDB:
		db, err := config.OpenSQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		s, err := postgresengine.NewStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLXWrapper{db: db, store: s}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}

	t.Cleanup(wrapper.Close)

	return wrapper
}

// CleanUp empties all rental tables.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	require.NoError(t, wrapper.Exec(truncateAll), "error cleaning up the rental tables")
}
