// Package testutil holds fakes and fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/gitjot/internal/store"
)

// NewTestStore returns a migrated in-memory store that is closed when the
// test ends.
func NewTestStore(t testing.TB) *store.SQLiteStore {
	t.Helper()
	return openStore(t, ":memory:")
}

// NewFileStore returns a store backed by a file in t.TempDir, plus a
// function that closes it and opens the same file again, as a restarted
// process would.
func NewFileStore(t testing.TB) (*store.SQLiteStore, func() *store.SQLiteStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gitjot.db")

	s := openStore(t, path)
	reopen := func() *store.SQLiteStore {
		t.Helper()
		require.NoError(t, s.Close())
		s = openStore(t, path)
		return s
	}
	return s, reopen
}

func openStore(t testing.TB, path string) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err, "opening test store")

	t.Cleanup(func() { s.Close() })
	return s
}
