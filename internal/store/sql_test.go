package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/taskpilot/internal/config"
	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersDDL = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	email TEXT NOT NULL,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	last_login_at TEXT
)`

func openTestStore(t *testing.T, ddl string, inserts ...string) *SQLStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.db")
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(ddl)
	require.NoError(t, err)
	for _, stmt := range inserts {
		_, err = raw.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, raw.Close())

	s, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestListUsersDecodesRows(t *testing.T) {
	s := openTestStore(t, usersDDL,
		`INSERT INTO users VALUES (1, 'ana@example.com', 'ana', '$2a$10$hash', '2025-01-15 10:30:00', '2025-01-16T08:00:00Z', 1, '2025-02-01 09:15:00')`,
		`INSERT INTO users VALUES (2, 'bia@example.com', 'bia', '$2a$10$other', '2025-03-01 12:00:00', '2025-03-01 12:00:00', 0, NULL)`,
	)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "ana@example.com", users[0].Email)
	assert.Equal(t, "$2a$10$hash", users[0].PasswordHash)
	assert.True(t, users[0].IsActive)
	require.NotNil(t, users[0].LastLoginAt)
	assert.Equal(t, time.Date(2025, 2, 1, 9, 15, 0, 0, time.UTC), users[0].LastLoginAt.UTC())
	assert.Equal(t, time.Date(2025, 1, 16, 8, 0, 0, 0, time.UTC), users[0].UpdatedAt.UTC())

	assert.False(t, users[1].IsActive)
	assert.Nil(t, users[1].LastLoginAt)
}

func TestListUsersEmptyTable(t *testing.T) {
	s := openTestStore(t, usersDDL)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestListUsersMalformedValue(t *testing.T) {
	s := openTestStore(t, usersDDL,
		`INSERT INTO users VALUES (1, 'ok@example.com', 'ok', 'h', '2025-01-15 10:30:00', '2025-01-15 10:30:00', 1, NULL)`,
		`INSERT INTO users VALUES (2, 'bad@example.com', 'bad', 'h', 'yesterday', '2025-01-15 10:30:00', 1, NULL)`,
	)

	_, err := s.ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRow))

	var rowErr *domain.MalformedRowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "created_at", rowErr.Column)
}

func TestListUsersUnexpectedColumns(t *testing.T) {
	s := openTestStore(t, `CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT, username TEXT)`,
		`INSERT INTO users VALUES (1, 'a@example.com', 'a')`,
	)

	_, err := s.ListUsers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedRow)
}

func TestListUsersMissingTable(t *testing.T) {
	s := openTestStore(t, `CREATE TABLE other (id INTEGER)`)

	_, err := s.ListUsers(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrMalformedRow)
}

func TestDecodeUserRowMySQLTextProtocol(t *testing.T) {
	values := []any{
		[]byte("42"),
		[]byte("carla@example.com"),
		[]byte("carla"),
		[]byte("hash"),
		time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		[]byte("2025-05-02 11:00:00"),
		[]byte("1"),
		nil,
	}

	user, err := decodeUserRow(1, values)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "carla", user.Username)
	assert.True(t, user.IsActive)
	assert.Nil(t, user.LastLoginAt)
}

func TestDecodeUserRowRejectsNullRequired(t *testing.T) {
	values := []any{int64(1), nil, "u", "h", "2025-01-01", "2025-01-01", int64(1), nil}

	_, err := decodeUserRow(3, values)
	var rowErr *domain.MalformedRowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Row)
	assert.Equal(t, "email", rowErr.Column)
}

func TestDecodeUserRowRejectsFractionalID(t *testing.T) {
	values := []any{1.5, "e", "u", "h", "2025-01-01", "2025-01-01", int64(1), nil}

	_, err := decodeUserRow(1, values)
	assert.ErrorIs(t, err, domain.ErrMalformedRow)
}
