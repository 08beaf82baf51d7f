package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresKV_GetMissingKey(t *testing.T) {
	db, mock := newMockDB(t)
	kv := NewPostgresKV(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1;`)).
		WithArgs("codingcats_analytics").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	value, ok, err := kv.Get(context.Background(), "codingcats_analytics")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_GetExistingKey(t *testing.T) {
	db, mock := newMockDB(t)
	kv := NewPostgresKV(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1;`)).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	value, ok, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_GetError(t *testing.T) {
	db, mock := newMockDB(t)
	kv := NewPostgresKV(db)

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store`)).WillReturnError(boom)

	_, ok, err := kv.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestPostgresKV_SetUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	kv := NewPostgresKV(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store (key, value, updated_at)`)).
		WithArgs("k", []byte(`[{"path":"/"}]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, kv.Set(context.Background(), "k", []byte(`[{"path":"/"}]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_EnsureSchema(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS kv_store`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresKV(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
