package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/db"
	"yatube/db/dbtest"
)

func TestMigrateIsIdempotent(t *testing.T) {
	conn := dbtest.Open(t)

	require.NoError(t, db.Migrate(conn))

	var tables int
	err := conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'
		AND name IN ('users', 'post_groups', 'posts', 'comments', 'follows', 'tags', 'post_tags')`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 7, tables)
}

func TestForeignKeysEnabled(t *testing.T) {
	conn := dbtest.Open(t)

	var enabled int
	require.NoError(t, conn.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := db.Open("postgres", "postgres://localhost/yatube")
	assert.Error(t, err)
}
