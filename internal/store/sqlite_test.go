package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Word     string   `json:"word"`
	Examples []string `json:"examples"`
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "state", "wordofday.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var got record
	assert.ErrorIs(t, s.Get(ctx, KeyDailyWord, &got), ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyDailyWord, record{Word: "apple", Examples: []string{"a", "b"}}))
	require.NoError(t, s.Get(ctx, KeyDailyWord, &got))
	assert.Equal(t, "apple", got.Word)

	// Second write replaces the first one completely
	require.NoError(t, s.Set(ctx, KeyDailyWord, record{Word: "run"}))
	got = record{}
	require.NoError(t, s.Get(ctx, KeyDailyWord, &got))
	assert.Equal(t, record{Word: "run"}, got)

	require.NoError(t, s.Remove(ctx, KeyDailyWord))
	assert.ErrorIs(t, s.Get(ctx, KeyDailyWord, &got), ErrNotFound)

	// Removing a missing key is fine
	assert.NoError(t, s.Remove(ctx, KeyDailyWord))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wordofday.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyHistory, []record{{Word: "apple"}, {Word: "run"}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var got []record
	require.NoError(t, s.Get(ctx, KeyHistory, &got))
	assert.Len(t, got, 2)
}

func TestSQLiteStore_Errors(t *testing.T) {
	dbErr := errors.New("disk I/O error")

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
		call   func(s *SQLiteStore) error
		op     string
	}{
		{
			name: "get",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT value FROM kv").WithArgs(KeyDailyWord).WillReturnError(dbErr)
			},
			call: func(s *SQLiteStore) error {
				var r record
				return s.Get(context.Background(), KeyDailyWord, &r)
			},
			op: "get",
		},
		{
			name: "decode",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT value FROM kv").WithArgs(KeyDailyWord).
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("{not json")))
			},
			call: func(s *SQLiteStore) error {
				var r record
				return s.Get(context.Background(), KeyDailyWord, &r)
			},
			op: "decode",
		},
		{
			name: "set",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO kv").
					WithArgs(KeyHistory, sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnError(dbErr)
			},
			call: func(s *SQLiteStore) error {
				return s.Set(context.Background(), KeyHistory, []record{})
			},
			op: "set",
		},
		{
			name: "remove",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM kv").WithArgs(KeyHistory).WillReturnError(dbErr)
			},
			call: func(s *SQLiteStore) error {
				return s.Remove(context.Background(), KeyHistory)
			},
			op: "remove",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.expect(mock)
			err = tt.call(NewSQLiteStore(db))

			var storageErr *StorageError
			require.ErrorAs(t, err, &storageErr)
			assert.Equal(t, tt.op, storageErr.Op)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLiteStore_GetMissingKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv").WithArgs(KeyHistory).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	var got []record
	err = NewSQLiteStore(db).Get(context.Background(), KeyHistory, &got)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
