// Package migrator applies a bounded context's embedded goose migrations.
package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	"github.com/ghuser/medtrace/pkg/logger"
)

// Source is one context's migration set. Each context keeps its own version
// table, so contexts can ship migrations independently against one database.
type Source struct {
	Context string
	FS      fs.FS
}

// VersionTable is the goose bookkeeping table for the source.
func (s Source) VersionTable() string {
	return "goose_" + s.Context + "_version"
}

// RunMigrations applies every pending migration of src against dbURL and logs
// each applied version.
func RunMigrations(ctx context.Context, dbURL string, src Source, log logger.Logger) error {
	if src.Context == "" || src.FS == nil {
		return errors.New("migrator: source needs a context name and a filesystem")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	store, err := database.NewStore(database.DialectPostgres, src.VersionTable())
	if err != nil {
		return fmt.Errorf("goose store: %w", err)
	}
	provider, err := goose.NewProvider("", db, src.FS, goose.WithStore(store))
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		log.InfoContext(ctx, "migration applied",
			"context", src.Context,
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}
	if err != nil {
		return fmt.Errorf("%s migrations: %w", src.Context, err)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("read %s version: %w", src.Context, err)
	}
	log.InfoContext(ctx, "migrations up to date",
		"context", src.Context, "version", current, "applied", len(results))
	return nil
}
