package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_CreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserStore(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, hashed_password)`)).
		WithArgs("cat@codingcats.dev", []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "created_at", "updated_at"}).
			AddRow(7, "cat@codingcats.dev", now, now))

	user, err := users.CreateUser(context.Background(), "cat@codingcats.dev", []byte("hash"))
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "cat@codingcats.dev", user.Email)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_CreateUserDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := users.CreateUser(context.Background(), "cat@codingcats.dev", []byte("hash"))
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserStore_GetUserByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs("nobody@codingcats.dev").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "created_at", "updated_at"}))

	_, err := users.GetUserByEmail(context.Background(), "nobody@codingcats.dev")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserStore_GetUserByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs("cat@codingcats.dev").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "created_at", "updated_at"}).
			AddRow(3, "cat@codingcats.dev", []byte("hash"), now, now))

	user, err := users.GetUserByEmail(context.Background(), "cat@codingcats.dev")
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.Equal(t, []byte("hash"), user.HashedPassword)
}
