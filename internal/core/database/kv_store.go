package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/markdave123-py/chatters/internal/config"
	"github.com/markdave123-py/chatters/internal/core"
)

type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

type queries struct {
	get, set, del string
}

var dialectQueries = map[Dialect]queries{
	DialectPostgres: {
		get: `SELECT value FROM kv WHERE key = $1`,
		set: `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
		      ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		del: `DELETE FROM kv WHERE key = $1`,
	},
	DialectSQLite: {
		get: `SELECT value FROM kv WHERE key = ?`,
		set: `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		      ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		del: `DELETE FROM kv WHERE key = ?`,
	},
}

// KVStore keeps every key in a single kv table.
type KVStore struct {
	db *sql.DB
	q  queries
}

var _ core.KVStore = (*KVStore)(nil)

// NewKVStore wraps an already-open, bootstrapped database.
func NewKVStore(db *sql.DB, d Dialect) *KVStore {
	return &KVStore{db: db, q: dialectQueries[d]}
}

// OpenPostgres connects with pgx, applies the CA certificate when one is
// configured, and bootstraps the schema.
func OpenPostgres(ctx context.Context, cfg *config.Config) (*KVStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		if _, err := os.Stat(cfg.SslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", cfg.SslCertPath, err)
		}
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	return finishOpen(ctx, db, DialectPostgres)
}

// OpenSQLite opens (or creates) a local database file. path may be
// ":memory:".
func OpenSQLite(ctx context.Context, path string) (*KVStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	return finishOpen(ctx, db, DialectSQLite)
}

func finishOpen(ctx context.Context, db *sql.DB, d Dialect) (*KVStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return NewKVStore(db, d), nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.q.set, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.q.del, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
