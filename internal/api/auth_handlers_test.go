package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/testutil"
)

func TestAuthHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	// Pre-create a user for login tests
	testutil.GetAuthCookie(t, server, "testuser", "password123", "student")

	t.Run("Successful Login", func(t *testing.T) {
		rr := testutil.Login(t, server, "testuser", "password123")
		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}

		foundCookie := false
		for _, cookie := range rr.Result().Cookies() {
			if cookie.Name == "session_token" {
				foundCookie = true
				if cookie.Value == "" {
					t.Error("session token cookie is empty")
				}
				if !cookie.HttpOnly {
					t.Error("session cookie is not HttpOnly")
				}
			}
		}
		if !foundCookie {
			t.Error("session_token cookie not found in response")
		}

		var body struct {
			Token     string      `json:"token"`
			User      models.User `json:"user"`
			ExpiresIn int         `json:"expires_in"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("Could not unmarshal response body: %v", err)
		}
		if body.Token == "" || body.User.Username != "testuser" {
			t.Errorf("unexpected login body: %s", rr.Body.String())
		}
		if body.ExpiresIn != 3600 {
			t.Errorf("expected expires_in 3600, got %d", body.ExpiresIn)
		}
	})

	t.Run("Login with Wrong Password", func(t *testing.T) {
		rr := testutil.Login(t, server, "testuser", "wrongpassword")
		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}
	})

	t.Run("Login with Unknown User", func(t *testing.T) {
		rr := testutil.Login(t, server, "nobody", "password123")
		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}
	})

	t.Run("Login with Malformed Body", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/users/login", bytes.NewBufferString(`{"username":`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})

	t.Run("Get Me (Authenticated)", func(t *testing.T) {
		userCookie := testutil.GetAuthCookie(t, server, "getme_user", "password", "student")

		req, _ := http.NewRequest("GET", "/api/users/me", nil)
		req.AddCookie(userCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v %s", status, http.StatusOK, rr.Body.String())
		}

		var user models.User
		if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
			t.Fatalf("Could not unmarshal response body: %v", err)
		}
		if user.Username != "getme_user" {
			t.Errorf("handler returned wrong user: got %v want %v", user.Username, "getme_user")
		}
	})

	t.Run("Get Me with Bearer Token", func(t *testing.T) {
		rr := testutil.Login(t, server, "testuser", "password123")
		var body struct {
			Token string `json:"token"`
		}
		json.Unmarshal(rr.Body.Bytes(), &body)

		req, _ := http.NewRequest("GET", "/api/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+body.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusOK {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
	})

	t.Run("Get Me (Unauthenticated)", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/users/me", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}
	})

	t.Run("Logout invalidates the session", func(t *testing.T) {
		cookie := testutil.GetAuthCookie(t, server, "logout_user", "password", "student")

		req, _ := http.NewRequest("POST", "/api/users/logout", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("logout returned wrong status code: got %v want %v", status, http.StatusOK)
		}

		req, _ = http.NewRequest("GET", "/api/users/me", nil)
		req.AddCookie(cookie)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("old session still accepted: got %v want %v", status, http.StatusUnauthorized)
		}
	})
}

func TestPublicEndpoints(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	for _, path := range []string{"/api/health", "/api/version"} {
		req, _ := http.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s returned %d", path, rr.Code)
		}
	}
}

func TestSignup(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	signup := func(body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/api/users/signup", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Creates a student who can log in", func(t *testing.T) {
		rr := signup(`{"username":"maryam","password":"sabr-1234","confirm_password":"sabr-1234"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("signup returned %d: %s", rr.Code, rr.Body.String())
		}
		var user models.User
		if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
			t.Fatalf("Could not unmarshal response body: %v", err)
		}
		if user.Username != "maryam" || user.Role != models.RoleStudent {
			t.Errorf("unexpected user: %+v", user)
		}
		if bytes.Contains(rr.Body.Bytes(), []byte("sabr-1234")) {
			t.Error("response leaks the password")
		}

		if rr := testutil.Login(t, server, "maryam", "sabr-1234"); rr.Code != http.StatusOK {
			t.Errorf("login after signup returned %d", rr.Code)
		}
	})

	t.Run("Role in the body is ignored", func(t *testing.T) {
		rr := signup(`{"username":"yusuf","password":"password1","confirm_password":"password1","role":"admin"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("signup returned %d: %s", rr.Code, rr.Body.String())
		}
		user, err := server.Store().GetUserByUsername("yusuf")
		if err != nil {
			t.Fatal(err)
		}
		if user.Role != models.RoleStudent {
			t.Errorf("expected role student, got %s", user.Role)
		}
	})

	t.Run("Rejects bad input", func(t *testing.T) {
		cases := map[string]string{
			"mismatched passwords": `{"username":"zaid","password":"password1","confirm_password":"password2"}`,
			"short password":       `{"username":"zaid","password":"short","confirm_password":"short"}`,
			"short username":       `{"username":"z","password":"password1","confirm_password":"password1"}`,
			"missing confirmation": `{"username":"zaid","password":"password1"}`,
		}
		for name, body := range cases {
			if rr := signup(body); rr.Code != http.StatusBadRequest {
				t.Errorf("%s: got %d want %d", name, rr.Code, http.StatusBadRequest)
			}
		}

		rr := signup(`{"username":"zaid","password":"password1","confirm_password":"password2"}`)
		if !bytes.Contains(rr.Body.Bytes(), []byte("confirm_password")) {
			t.Errorf("expected the confirm_password field in %s", rr.Body.String())
		}
	})

	t.Run("Duplicate username", func(t *testing.T) {
		rr := signup(`{"username":"maryam","password":"password1","confirm_password":"password1"}`)
		if rr.Code != http.StatusConflict {
			t.Errorf("got %d want %d", rr.Code, http.StatusConflict)
		}
	})
}
