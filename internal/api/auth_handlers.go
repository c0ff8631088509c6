package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/studyplanner/planner/internal/auth"
	"github.com/studyplanner/planner/internal/models"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=64"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// handleSignup registers a student account. Admin accounts are only created
// through the admin API.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload signupRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	passwordHash, err := auth.HashPassword(payload.Password)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := s.store.CreateUser(payload.Username, passwordHash, models.RoleStudent)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	slog.Info("user signed up", "user", user.ID, "username", user.Username)
	RespondWithJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	user, err := s.store.GetUserByUsername(payload.Username)
	if err != nil || !auth.CheckPasswordHash(payload.Password, user.PasswordHash) {
		RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.store.CreateSession(user.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	ttl := s.sessionTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"user":       user,
		"expires_in": int(ttl.Seconds()),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		s.store.DeleteSession(token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, getUserFromContext(r))
}

func (s *Server) sessionTTL() time.Duration {
	if cfg := s.app.Config(); cfg != nil && cfg.Session.TTL > 0 {
		return cfg.Session.TTL
	}
	return 7 * 24 * time.Hour
}
