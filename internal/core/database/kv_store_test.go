package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, found, err := s.Get(ctx, "chatters_users")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "chatters_users", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "chatters_users", []byte(`[{"email":"a@b.com"}]`)))

	v, found, err := s.Get(ctx, "chatters_users")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"email":"a@b.com"}]`, string(v))

	require.NoError(t, s.Delete(ctx, "chatters_users"))
	_, found, err = s.Get(ctx, "chatters_users")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLite_BootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, EnsureBootstrapped(ctx, s.db, DialectSQLite))

	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", string(v))
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}

func newPostgresMock(t *testing.T) (*KVStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewKVStore(db, DialectPostgres), mock
}

func TestPostgres_GetFound(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`(?s)^SELECT value FROM kv WHERE key = \$1$`).
		WithArgs("profile:p1:chatters_session").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"id":"u1"}`))

	v, found, err := s.Get(context.Background(), "profile:p1:chatters_session")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"u1"}`, string(v))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMissing(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`SELECT value FROM kv`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, found, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetUpserts(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(`(?s)INSERT INTO kv \(key, value, updated_at\) VALUES \(\$1, \$2, now\(\)\)\s+ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("k", "v").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ErrorsAreWrapped(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(`DELETE FROM kv WHERE key = \$1`).
		WithArgs("k").
		WillReturnError(errors.New("db down"))

	err := s.Delete(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete k")
	assert.Contains(t, err.Error(), "db down")
}

func TestEnsureBootstrapped_RunsScriptWhenMetaMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, EnsureBootstrapped(context.Background(), db, DialectPostgres))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureBootstrapped_SkipsWhenVersioned(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM chatters_meta WHERE version = 1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, EnsureBootstrapped(context.Background(), db, DialectPostgres))
	require.NoError(t, mock.ExpectationsWereMet())
}
