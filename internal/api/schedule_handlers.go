package api

import (
	"log/slog"
	"net/http"

	"github.com/studyplanner/planner/internal/planner"
	"github.com/studyplanner/planner/internal/util"
	"github.com/studyplanner/planner/internal/websocket"
)

type scheduleBookRequest struct {
	BookID    int64  `json:"book_id" validate:"required,gte=1"`
	StartDate string `json:"start_date" validate:"required,isodate"`
}

type updateBlockRequest struct {
	DateGregorian string `json:"date_gregorian" validate:"required,isodate"`
	TagID         *int64 `json:"tag_id"`
}

type retagBlockRequest struct {
	TagID *int64 `json:"tag_id"`
}

func (s *Server) handleListSchedule(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.store.ListBlocks(getUserFromContext(r).ID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, blocks)
}

// handleScheduleBook generates the book's blocks from start_date and replaces
// any schedule the book already had.
func (s *Server) handleScheduleBook(w http.ResponseWriter, r *http.Request) {
	var payload scheduleBookRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	user := getUserFromContext(r)

	book, err := s.store.GetBook(user.ID, payload.BookID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	start, _ := util.ParseISODate(payload.StartDate)

	blocks, err := planner.GenerateSessions(*book, start)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	stored, err := s.store.ReplaceBookBlocks(user.ID, book.ID, blocks)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	slog.Info("book scheduled", "user", user.ID, "book", book.ID, "start", payload.StartDate, "blocks", len(stored))
	s.app.WsHub().NotifyUser(user.ID, websocket.Event{Type: websocket.EventScheduleChanged, Action: "scheduled", BookID: book.ID})
	RespondWithJSON(w, http.StatusCreated, stored)
}

// handleUpdateBlock moves a block to another date and optionally retags it.
// The page range is never recomputed.
func (s *Server) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	blockID, err := idParam(r, "blockID")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	var payload updateBlockRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	user := getUserFromContext(r)

	block, err := s.store.GetBlock(user.ID, blockID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	date, _ := util.ParseISODate(payload.DateGregorian)
	moved, err := planner.RescheduleBlock(*block, date)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	if payload.TagID != nil {
		moved = planner.RetagBlock(moved, payload.TagID)
	}
	if err := s.store.UpdateBlock(user.ID, moved); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	s.app.WsHub().NotifyUser(user.ID, websocket.Event{Type: websocket.EventScheduleChanged, Action: "moved", BookID: block.BookID, BlockID: blockID})
	s.respondWithBlock(w, r, user.ID, blockID)
}

// handleRetagBlock sets or, with a null tag_id, clears a block's own tag.
func (s *Server) handleRetagBlock(w http.ResponseWriter, r *http.Request) {
	blockID, err := idParam(r, "blockID")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	var payload retagBlockRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	user := getUserFromContext(r)

	block, err := s.store.GetBlock(user.ID, blockID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	retagged := planner.RetagBlock(*block, payload.TagID)
	if err := s.store.UpdateBlockTag(user.ID, blockID, retagged.TagID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	s.app.WsHub().NotifyUser(user.ID, websocket.Event{Type: websocket.EventScheduleChanged, Action: "retagged", BookID: block.BookID, BlockID: blockID})
	s.respondWithBlock(w, r, user.ID, blockID)
}

func (s *Server) handleClearSchedule(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	removed, err := s.store.ClearBlocks(user.ID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	s.app.WsHub().NotifyUser(user.ID, websocket.Event{Type: websocket.EventScheduleChanged, Action: "cleared"})
	RespondWithJSON(w, http.StatusOK, map[string]int64{"deleted": removed})
}

func (s *Server) respondWithBlock(w http.ResponseWriter, r *http.Request, userID, blockID int64) {
	block, err := s.store.GetBlock(userID, blockID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, block)
}

func (s *Server) handleScheduleFeed(w http.ResponseWriter, r *http.Request) {
	s.app.WsHub().ServeWs(w, r, getUserFromContext(r).ID)
}

