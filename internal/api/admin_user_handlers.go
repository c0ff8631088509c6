package api

import (
	"net/http"

	"github.com/studyplanner/planner/internal/auth"
	"github.com/studyplanner/planner/internal/errors"
)

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin student"`
}

type updateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Role     string `json:"role" validate:"required,oneof=admin student"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers()
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	passwordHash, err := auth.HashPassword(payload.Password)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := s.store.CreateUser(payload.Username, passwordHash, payload.Role)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, user)
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	var payload updateUserRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	current := getUserFromContext(r)
	if current.ID == userID && payload.Role != current.Role {
		respondWithDomainError(w, r, errors.Validation("Cannot change your own role"))
		return
	}

	if err := s.store.UpdateUser(userID, payload.Username, payload.Role); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	if payload.Password != "" {
		passwordHash, err := auth.HashPassword(payload.Password)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		if err := s.store.UpdateUserPassword(userID, passwordHash); err != nil {
			respondWithDomainError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	if getUserFromContext(r).ID == userID {
		RespondWithError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := s.store.DeleteUser(userID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
