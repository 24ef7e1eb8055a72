// Package cachetest opens throwaway local caches for tests.
package cachetest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/database"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
)

// New returns a migrated cache stored under t.TempDir, closed at cleanup.
func New(t *testing.T) *localcache.Store {
	t.Helper()

	db, err := database.NewLocal(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return localcache.New(db)
}
