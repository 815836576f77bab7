package testutil

import (
	"testing"

	"github.com/vrsandeep/reel-go/internal/api"
	"github.com/vrsandeep/reel-go/internal/models"
)

// unusablePasswordHash never matches a password, which is fine for users
// that only authenticate through a pre-made session.
const unusablePasswordHash = "!"

// CreateUser inserts a user that can only sign in through a session made by
// the test itself.
func CreateUser(t *testing.T, s *api.Server, username string) *models.User {
	t.Helper()
	user, err := s.Store().CreateUser(username, unusablePasswordHash, "user")
	if err != nil {
		t.Fatalf("Failed to create test user '%s': %v", username, err)
	}
	return user
}

// BearerForUser creates a user with a fresh session and returns the value
// of the Authorization header to send.
func BearerForUser(t *testing.T, s *api.Server, username string) (*models.User, string) {
	t.Helper()
	user := CreateUser(t, s, username)
	token, err := s.Store().CreateSession(user.ID)
	if err != nil {
		t.Fatalf("Failed to create session for test user '%s': %v", username, err)
	}
	return user, "Bearer " + token
}
