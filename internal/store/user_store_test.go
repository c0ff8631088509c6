package store_test

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/studyplanner/planner/internal/auth"
	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/store"
	"github.com/studyplanner/planner/internal/testutil"
)

func init() {
	auth.Cost = bcrypt.MinCost
}

func TestUserStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	passwordHash, _ := auth.HashPassword("password123")

	t.Run("Create User Success", func(t *testing.T) {
		user, err := s.CreateUser("testuser", passwordHash, "student")
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.Username != "testuser" {
			t.Errorf("Expected username 'testuser', got '%s'", user.Username)
		}
	})

	t.Run("Create User with Duplicate Username", func(t *testing.T) {
		_, err := s.CreateUser("testuser", passwordHash, "student")
		if !errors.Is(err, errors.ErrConflict) {
			t.Fatalf("Expected conflict for duplicate username, got %v", err)
		}
	})

	t.Run("Get User By Username", func(t *testing.T) {
		user, err := s.GetUserByUsername("testuser")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if !auth.CheckPasswordHash("password123", user.PasswordHash) {
			t.Error("Password hash does not match")
		}
	})

	t.Run("Get Non-existent User", func(t *testing.T) {
		_, err := s.GetUserByUsername("nonexistent")
		if !errors.Is(err, errors.ErrNotFound) {
			t.Fatalf("Expected not found, got %v", err)
		}
	})

	t.Run("Invalid Role Rejected", func(t *testing.T) {
		if _, err := s.CreateUser("other", passwordHash, "superuser"); err == nil {
			t.Fatal("Expected error for unknown role, got nil")
		}
	})
}

func TestUserStore_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	passwordHash, _ := auth.HashPassword("password123")
	user, _ := s.CreateUser("userToUpdate", passwordHash, "student")

	t.Run("Update User Info", func(t *testing.T) {
		if err := s.UpdateUser(user.ID, "updatedUsername", "admin"); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		updatedUser, _ := s.GetUserByID(user.ID)
		if updatedUser.Username != "updatedUsername" || !updatedUser.IsAdmin() {
			t.Errorf("User info was not updated correctly. Got: %+v", updatedUser)
		}
	})

	t.Run("Update User Password", func(t *testing.T) {
		newPasswordHash, _ := auth.HashPassword("newpassword")
		if err := s.UpdateUserPassword(user.ID, newPasswordHash); err != nil {
			t.Fatalf("UpdateUserPassword failed: %v", err)
		}
		updatedUser, _ := s.GetUserByID(user.ID)
		if !auth.CheckPasswordHash("newpassword", updatedUser.PasswordHash) {
			t.Error("Password was not updated correctly")
		}
	})

	t.Run("Delete User", func(t *testing.T) {
		if err := s.DeleteUser(user.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		if _, err := s.GetUserByID(user.ID); !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("Expected not found for deleted user, got %v", err)
		}
		if err := s.DeleteUser(user.ID); !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("Expected not found deleting twice, got %v", err)
		}
	})
}

func TestUserStore_Sessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	passwordHash, _ := auth.HashPassword("password123")
	user, _ := s.CreateUser("sessionuser", passwordHash, "student")

	t.Run("Create and Get Session", func(t *testing.T) {
		token, err := s.CreateSession(user.ID)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if len(token) != 64 {
			t.Fatalf("Expected a 64 character token, got %q", token)
		}

		sessionUser, err := s.GetUserFromSession(token)
		if err != nil {
			t.Fatalf("GetUserFromSession failed: %v", err)
		}
		if sessionUser.ID != user.ID {
			t.Errorf("Session returned wrong user. Expected ID %d, got %d", user.ID, sessionUser.ID)
		}
	})

	t.Run("Get Expired Session", func(t *testing.T) {
		expiry := time.Now().UTC().Add(-1 * time.Hour)
		db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES (?, ?, ?)", "expired-token", user.ID, expiry)

		_, err := s.GetUserFromSession("expired-token")
		if !errors.Is(err, errors.ErrUnauthorized) {
			t.Fatalf("Expected unauthorized for expired session, got %v", err)
		}
		if err.Error() != "session expired" {
			t.Errorf("Expected error message 'session expired', got '%s'", err.Error())
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		token, _ := s.CreateSession(user.ID)
		if err := s.DeleteSession(token); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		if _, err := s.GetUserFromSession(token); err == nil {
			t.Fatal("Expected error after deleting session, but got nil")
		}
	})

	t.Run("Delete Expired Sessions", func(t *testing.T) {
		s.SetSessionTTL(time.Hour)
		live, _ := s.CreateSession(user.ID)
		db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES (?, ?, ?)", "stale-1", user.ID, time.Now().UTC().Add(-2*time.Hour))
		db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES (?, ?, ?)", "stale-2", user.ID, time.Now().UTC().Add(-48*time.Hour))

		removed, err := s.DeleteExpiredSessions(time.Now())
		if err != nil {
			t.Fatalf("DeleteExpiredSessions failed: %v", err)
		}
		if removed != 2 {
			t.Errorf("Expected 2 expired sessions removed, got %d", removed)
		}
		if _, err := s.GetUserFromSession(live); err != nil {
			t.Errorf("Live session should survive the purge: %v", err)
		}
	})
}

func TestUserStore_ListAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	count, err := s.CountUsers()
	if err != nil {
		t.Fatalf("CountUsers failed on empty DB: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users, got %d", count)
	}

	passwordHash, _ := auth.HashPassword("password123")
	s.CreateUser("user2", passwordHash, "admin")
	s.CreateUser("user1", passwordHash, "student")

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 || users[0].Username != "user1" {
		t.Errorf("Expected 2 users sorted by name, got %+v", users)
	}

	count, _ = s.CountUsers()
	if count != 2 {
		t.Errorf("Expected 2 users, got %d", count)
	}
}
