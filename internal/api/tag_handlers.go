package api

import (
	"net/http"

	"github.com/studyplanner/planner/internal/models"
)

type createTagRequest struct {
	Name        string `json:"name" validate:"required,max=40"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Icon        string `json:"icon" validate:"max=40"`
	Category    string `json:"category" validate:"max=40"`
	IsBlockOnly bool   `json:"is_block_only"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags()
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var payload createTagRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	tag, err := s.store.CreateTag(models.Tag{
		Name:        payload.Name,
		Color:       payload.Color,
		Icon:        payload.Icon,
		Category:    payload.Category,
		IsBlockOnly: payload.IsBlockOnly,
	})
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, tag)
}
