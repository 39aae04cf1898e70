// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blogs-service/config"
	"github.com/rpupo63/blogs-service/database"
)

// NewSQLite opens a migrated SQLite database in a temp dir. It is closed
// when the test ends.
func NewSQLite(t *testing.T) database.Database {
	t.Helper()

	db, err := database.Open(config.Database{
		Type:            config.DBTypeSQLite,
		Path:            filepath.Join(t.TempDir(), "blogs-test.db"),
		SlowThresholdMs: 1000,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
