package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/reel-go/internal/db"
)

func TestInitDBAndMigrations(t *testing.T) {
	database, err := db.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database))

	t.Run("Foreign keys enabled", func(t *testing.T) {
		var enabled int
		require.NoError(t, database.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
		assert.Equal(t, 1, enabled)
	})

	t.Run("Migrations are idempotent", func(t *testing.T) {
		assert.NoError(t, db.RunMigrations(database))
	})

	t.Run("Session rows cascade with their user", func(t *testing.T) {
		_, err := database.Exec("INSERT INTO users (id, username, password_hash, role, created_at) VALUES ('u1', 'alice', 'hash', 'user', datetime('now'))")
		require.NoError(t, err)
		_, err = database.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES ('tok', 'u1', datetime('now', '+1 day'))")
		require.NoError(t, err)

		_, err = database.Exec("DELETE FROM users WHERE id = 'u1'")
		require.NoError(t, err)

		var count int
		require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count))
		assert.Equal(t, 0, count)
	})

	t.Run("Document paths are unique", func(t *testing.T) {
		insert := "INSERT INTO documents (path, parent, doc_id, data, created_at, updated_at) VALUES ('users/u1/watchlist/1', 'users/u1/watchlist', '1', '{}', datetime('now'), datetime('now'))"
		_, err := database.Exec(insert)
		require.NoError(t, err)
		_, err = database.Exec(insert)
		assert.Error(t, err)
	})
}
