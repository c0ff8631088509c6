package api

import (
	"net/http"

	"github.com/studyplanner/planner/internal/websocket"
)

type runJobRequest struct {
	JobName string `json:"job_name" validate:"required"`
}

func (s *Server) handleRunAdminJob(w http.ResponseWriter, r *http.Request) {
	var payload runJobRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	if err := s.app.JobManager().RunJob(payload.JobName, s.app); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Job '" + payload.JobName + "' started successfully.",
	})
}

func (s *Server) handleGetAdminJobsStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.JobManager().GetStatus())
}

func (s *Server) handleAdminDeleteTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := idParam(r, "tagID")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	if err := s.store.DeleteTag(tagID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	// Blocks of every user may have lost their tag.
	s.app.WsHub().BroadcastJSON(websocket.Event{Type: websocket.EventScheduleChanged, Action: "retagged"})
	w.WriteHeader(http.StatusNoContent)
}
