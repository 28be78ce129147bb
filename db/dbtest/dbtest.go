// Package dbtest hands tests a freshly migrated database.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"yatube/db"
)

func Open(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DefaultDriver, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.Migrate(conn))
	return conn
}
