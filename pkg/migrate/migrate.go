package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/jobpay/jobpay-backend/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations/postgres"

//go:embed migrations
var embedded embed.FS

// DialectFor maps a configured store driver to its goose dialect.
func DialectFor(driver string) (goose.Dialect, error) {
	switch normalizeDriver(driver) {
	case "", config.DriverPostgres:
		return goose.DialectPostgres, nil
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("unsupported db driver %q", driver)
}

// DirFor returns the on-disk migration directory for a store driver.
func DirFor(driver string) string {
	if normalizeDriver(driver) == config.DriverSQLite {
		return "pkg/migrate/migrations/sqlite"
	}
	return DefaultDir
}

// Embedded returns the compiled-in migrations for a store driver.
func Embedded(driver string) (fs.FS, error) {
	name := config.DriverPostgres
	if normalizeDriver(driver) == config.DriverSQLite {
		name = config.DriverSQLite
	}
	return fs.Sub(embedded, path.Join("migrations", name))
}

func normalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

// Apply runs every pending embedded migration for driver.
func Apply(ctx context.Context, db *sql.DB, driver string) ([]*goose.MigrationResult, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	fsys, err := Embedded(driver)
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	return results, nil
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
