package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/reel-go/internal/auth"
	"github.com/vrsandeep/reel-go/internal/store"
	"github.com/vrsandeep/reel-go/internal/testutil"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	database := testutil.SetupTestDB(t)
	s := store.New(database)

	passwordHash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	t.Run("Create User Success", func(t *testing.T) {
		user, err := s.CreateUser("testuser", passwordHash, "user")
		require.NoError(t, err)
		assert.Equal(t, "testuser", user.Username)
		assert.NotEmpty(t, user.ID)
	})

	t.Run("Create User with Duplicate Username", func(t *testing.T) {
		_, err := s.CreateUser("testuser", passwordHash, "user")
		assert.Error(t, err)
	})

	t.Run("Get User By Username", func(t *testing.T) {
		user, err := s.GetUserByUsername("testuser")
		require.NoError(t, err)
		assert.True(t, auth.CheckPasswordHash("password123", user.PasswordHash))
	})

	t.Run("Get Non-existent User", func(t *testing.T) {
		_, err := s.GetUserByUsername("nonexistent")
		assert.Error(t, err)
	})

	t.Run("Count and list", func(t *testing.T) {
		_, err := s.CreateUser("another", passwordHash, "admin")
		require.NoError(t, err)

		count, err := s.CountUsers()
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		users, err := s.ListUsers()
		require.NoError(t, err)
		assert.Equal(t, "another", users[0].Username)

		ids, err := s.UserIDs(context.Background())
		require.NoError(t, err)
		assert.Len(t, ids, 2)
	})
}

func TestUserStore_Sessions(t *testing.T) {
	database := testutil.SetupTestDB(t)
	s := store.New(database)

	user, err := s.CreateUser("sessionuser", "hash", "user")
	require.NoError(t, err)

	t.Run("Create and resolve session", func(t *testing.T) {
		token, err := s.CreateSession(user.ID)
		require.NoError(t, err)
		assert.Len(t, token, 64)

		got, err := s.GetUserFromSession(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		require.NoError(t, s.DeleteSession(token))
		_, err = s.GetUserFromSession(token)
		assert.ErrorIs(t, err, store.ErrInvalidSession)
	})

	t.Run("Expired session is rejected and removed", func(t *testing.T) {
		_, err := database.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES (?, ?, ?)",
			"expired", user.ID, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		_, err = s.GetUserFromSession("expired")
		assert.ErrorIs(t, err, store.ErrSessionExpired)

		_, err = s.GetUserFromSession("expired")
		assert.ErrorIs(t, err, store.ErrInvalidSession)
	})

	t.Run("Deleting the user drops their sessions", func(t *testing.T) {
		token, err := s.CreateSession(user.ID)
		require.NoError(t, err)
		require.NoError(t, s.DeleteUser(user.ID))

		_, err = s.GetUserFromSession(token)
		assert.ErrorIs(t, err, store.ErrInvalidSession)
	})
}
