// migrate.go applies the snapshot-cache schema with golang-migrate.
//
// The whole schema is the channel_snapshots table, but it still goes
// through versioned up/down SQL files in migrations/ so a cache database
// can move between releases without hand-run DDL. Applied versions are
// tracked in the schema_migrations table the library maintains.
package database

import (
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // File source driver
)

// RunMigrations brings the cache schema up to date. Called at startup,
// only when a DATABASE_URL is configured; a server running uncached never
// touches this.
func (db *DB) RunMigrations(migrationsPath string) error {
	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err == migrate.ErrNoChange {
		log.Println("📦 Cache schema: no new migrations to apply")
	} else {
		version, dirty, _ := m.Version()
		log.Printf("📦 Cache schema: migrated to version %d (dirty: %v)", version, dirty)
	}

	return nil
}
