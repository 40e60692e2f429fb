package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestGet_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT value FROM slots WHERE key = \\?").
		WithArgs("slate.roles").
		WillReturnError(errors.New("database is locked"))

	b := NewWithDB(db, nil)
	_, ok, err := b.Get(context.Background(), "slate.roles")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestGet_NoRowsIsAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT value FROM slots WHERE key = \\?").
		WithArgs("slate.users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	b := NewWithDB(db, nil)
	_, ok, err := b.Get(context.Background(), "slate.users")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSet_ExecError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO slots").
		WithArgs("slate.roles", "[]", sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))

	b := NewWithDB(db, nil)
	err := b.Set(context.Background(), "slate.roles", "[]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write slot slate.roles")
}

func TestInitialize_CreatesTable(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS slots").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewWithDB(db, nil).Initialize(context.Background()))
}
