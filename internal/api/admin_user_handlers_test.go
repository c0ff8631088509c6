package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/testutil"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestAdminUserHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	// Create admin and regular user for testing roles
	adminCookie := testutil.GetAuthCookie(t, server, "testadmin", "password", "admin")
	userCookie := testutil.GetAuthCookie(t, server, "testuser", "password", "student")

	t.Run("Admin can list users", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/admin/users", nil)
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusOK {
			t.Errorf("Expected status 200, got %d", status)
		}
	})

	t.Run("Non-admin cannot list users", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/admin/users", nil)
		req.AddCookie(userCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", status)
		}
	})

	var createdUserID int64
	t.Run("Admin can create a user", func(t *testing.T) {
		payload := `{"username":"newuser","password":"newpassword","role":"student"}`
		req, _ := http.NewRequest("POST", "/api/admin/users", bytes.NewBufferString(payload))
		req.AddCookie(adminCookie)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", status, rr.Body.String())
		}
		var user models.User
		json.Unmarshal(rr.Body.Bytes(), &user)
		createdUserID = user.ID
		if user.Username != "newuser" || user.Role != "student" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("Create rejects unknown roles and short passwords", func(t *testing.T) {
		for _, payload := range []string{
			`{"username":"other","password":"newpassword","role":"user"}`,
			`{"username":"other","password":"short","role":"student"}`,
		} {
			req, _ := http.NewRequest("POST", "/api/admin/users", bytes.NewBufferString(payload))
			req.AddCookie(adminCookie)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if status := rr.Code; status != http.StatusBadRequest {
				t.Errorf("Expected status 400 for %s, got %d", payload, status)
			}
		}
	})

	t.Run("Duplicate username conflicts", func(t *testing.T) {
		payload := `{"username":"newuser","password":"newpassword","role":"student"}`
		req, _ := http.NewRequest("POST", "/api/admin/users", bytes.NewBufferString(payload))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", status)
		}
	})

	t.Run("Admin can update a user", func(t *testing.T) {
		payload := `{"username":"updateduser","role":"admin","password":"anotherpassword"}`
		url := fmt.Sprintf("/api/admin/users/%d", createdUserID)
		req, _ := http.NewRequest("PUT", url, bytes.NewBufferString(payload))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", status, rr.Body.String())
		}

		user, err := server.Store().GetUserByID(createdUserID)
		if err != nil {
			t.Fatalf("Failed to reload user: %v", err)
		}
		if user.Username != "updateduser" || user.Role != "admin" {
			t.Errorf("User was not updated correctly in DB: %+v", user)
		}
		if rr := testutil.Login(t, server, "updateduser", "anotherpassword"); rr.Code != http.StatusOK {
			t.Errorf("New password not accepted: %d", rr.Code)
		}
	})

	t.Run("Admin cannot change own role", func(t *testing.T) {
		admin, _ := server.Store().GetUserByUsername("testadmin")
		url := fmt.Sprintf("/api/admin/users/%d", admin.ID)
		req, _ := http.NewRequest("PUT", url, bytes.NewBufferString(`{"username":"testadmin","role":"student"}`))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", status)
		}
	})

	t.Run("Admin cannot delete self", func(t *testing.T) {
		admin, _ := server.Store().GetUserByUsername("testadmin")
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/admin/users/%d", admin.ID), nil)
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", status)
		}
	})

	t.Run("Admin can delete a user", func(t *testing.T) {
		url := fmt.Sprintf("/api/admin/users/%d", createdUserID)
		req, _ := http.NewRequest("DELETE", url, nil)
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", status)
		}

		if _, err := server.Store().GetUserByID(createdUserID); err == nil {
			t.Error("User was not deleted from DB")
		}
	})
}
