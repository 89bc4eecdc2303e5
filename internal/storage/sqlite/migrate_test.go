package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUpDown(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := MigrateVersion(db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Zero(t, version, "fresh database has no applied migrations")

	require.NoError(t, MigrateUp(db))
	version, dirty, err = MigrateVersion(db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	// Up is idempotent: no pending change is not an error.
	require.NoError(t, MigrateUp(db))

	require.NoError(t, MigrateDown(db))
	version, _, err = MigrateVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestMigratedSchemaAcceptsWrites(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, MigrateUp(db))

	// The reject index from migration 2 is in place.
	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND name = 'idx_rejects_session_reason'`,
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_rejects_session_reason", name)
}
