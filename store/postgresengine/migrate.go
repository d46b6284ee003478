package postgresengine

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // postgres driver
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationDirection selects whether Migrate applies or reverts the schema.
type MigrationDirection string

const (
	// MigrateUp applies all pending migrations.
	MigrateUp MigrationDirection = "up"

	// MigrateDown reverts all applied migrations.
	MigrateDown MigrationDirection = "down"
)

// ErrUnknownMigrationDirection is returned for a direction other than up or down.
var ErrUnknownMigrationDirection = errors.New("migration direction must be up or down")

// ErrMigrationFailed is returned when golang-migrate reports an error.
var ErrMigrationFailed = errors.New("migration failed")

// Migrate opens its own connection to dsn, applies or reverts the embedded schema and closes the connection.
// Running it when nothing is left to do is not an error.
func Migrate(dsn string, direction MigrationDirection) error {
	if direction != MigrateUp && direction != MigrateDown {
		return ErrUnknownMigrationDirection
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		_ = db.Close()
		return errors.Join(ErrMigrationFailed, err)
	}

	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
	if err != nil {
		_ = db.Close()
		return errors.Join(ErrMigrationFailed, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return errors.Join(ErrMigrationFailed, err)
	}
	defer func() { _, _ = m.Close() }() // also closes db

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}
