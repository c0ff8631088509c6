package api

import (
	"net/http"

	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/planner"
	"github.com/studyplanner/planner/internal/websocket"
)

type createBookRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	PageFrom int    `json:"pageFrom" validate:"gte=1"`
	PageTo   int    `json:"pageTo" validate:"gtefield=PageFrom"`
	Duration int    `json:"duration" validate:"gte=1,max=3650"`
	TagID    *int64 `json:"tag_id"`
}

// bookResponse adds the "~N pages per day" preview to a book.
type bookResponse struct {
	*models.Book
	PagesPerDay int `json:"pagesPerDay"`
}

func newBookResponse(b *models.Book) bookResponse {
	return bookResponse{Book: b, PagesPerDay: planner.PagesPerDay(b.TotalPages, b.Duration)}
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.ListBooks(getUserFromContext(r).ID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	resp := make([]bookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, newBookResponse(b))
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := idParam(r, "bookID")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	book, err := s.store.GetBook(getUserFromContext(r).ID, bookID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newBookResponse(book))
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var payload createBookRequest
	if err := s.decodeAndValidate(r, &payload); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	book, err := s.store.CreateBook(getUserFromContext(r).ID, models.Book{
		Title:    payload.Title,
		PageFrom: payload.PageFrom,
		PageTo:   payload.PageTo,
		Duration: payload.Duration,
		TagID:    payload.TagID,
	})
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, newBookResponse(book))
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := idParam(r, "bookID")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	user := getUserFromContext(r)
	if err := s.store.DeleteBook(user.ID, bookID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	s.app.WsHub().NotifyUser(user.ID, websocket.Event{Type: websocket.EventScheduleChanged, Action: "book_deleted", BookID: bookID})
	w.WriteHeader(http.StatusNoContent)
}
