package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

//go:embed scripts/initdb.sql scripts/initdb_sqlite.sql
var bootstrapFS embed.FS

// EnsureBootstrapped creates the kv table when it is missing. Postgres
// records a version row in chatters_meta; SQLite relies on IF NOT EXISTS.
func EnsureBootstrapped(ctx context.Context, db *sql.DB, d Dialect) error {

	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if d == DialectSQLite {
		return runBootstrap(ctxBoot, db, "scripts/initdb_sqlite.sql")
	}

	var exists bool
	err := db.QueryRowContext(ctxBoot, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'chatters_meta'
		)`).
		Scan(&exists)
	if err != nil {
		return fmt.Errorf("meta table check failed: %w", err)
	}

	if !exists {
		return runBootstrap(ctxBoot, db, "scripts/initdb.sql")
	}

	var hasVersion bool
	if err := db.QueryRowContext(ctxBoot, `SELECT EXISTS (SELECT 1 FROM chatters_meta WHERE version = 1)`).Scan(&hasVersion); err != nil {
		return fmt.Errorf("meta version check failed: %w", err)
	}
	if !hasVersion {
		return runBootstrap(ctxBoot, db, "scripts/initdb.sql")
	}

	log.Debug("database already bootstrapped")
	return nil
}

func runBootstrap(ctx context.Context, db *sql.DB, script string) error {
	sqlBytes, err := bootstrapFS.ReadFile(script)
	if err != nil {
		return fmt.Errorf("read %s: %w", script, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	log.Infof("database bootstrapped from %s", script)
	return nil
}
