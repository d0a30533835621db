package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"cjb-incidents/core/utils"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func newProvider(db *sql.DB) (*goose.Provider, error) {
	dialect := goose.DialectSQLite3
	if isPostgresDB(db) {
		dialect = goose.DialectPostgres
	}
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, fsys)
}

// ApplyMigrations brings the schema up to date with goose for either dialect.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	provider, err := newProvider(db)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		if logger != nil && res.Source != nil {
			logger.Printf("db: migration %d applied (%s)", res.Source.Version, res.Duration)
		}
	}
	return nil
}

// SchemaVersion returns the latest applied migration.
func SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}
