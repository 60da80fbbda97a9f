package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir is where cmd/migrate creates and validates files, relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Run executes a goose command such as up, down, redo, reset or status.
// An empty dir runs the migrations compiled into the binary.
func Run(ctx context.Context, db *sql.DB, dialect, dir, command string, args ...string) error {
	dir, err := prepare(db, dialect, dir)
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir, version string) error {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil || target < 0 {
		return fmt.Errorf("migrate: version %q is not a YYYYMMDDHHMMSS number", version)
	}
	if dir, err = prepare(db, dialect, dir); err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch {
	case target > current:
		err = goose.UpToContext(ctx, db, dir, target)
	case target < current:
		err = goose.DownToContext(ctx, db, dir, target)
	}
	if err != nil {
		return fmt.Errorf("migrate %d -> %d: %w", current, target, err)
	}
	return nil
}

// prepare points goose at the right file system and dialect. goose keeps
// both as package state, so callers must not migrate concurrently.
func prepare(db *sql.DB, dialect, dir string) (string, error) {
	if db == nil {
		return "", errors.New("migrate: db is required")
	}
	var base fs.FS
	if dir == "" {
		base, dir = embedded, embeddedDir
	}
	goose.SetBaseFS(base)

	name := "postgres"
	if dialect == config.DBDriverSQLite {
		name = "sqlite3"
	}
	if err := goose.SetDialect(name); err != nil {
		return "", fmt.Errorf("goose dialect %s: %w", name, err)
	}
	return dir, nil
}
