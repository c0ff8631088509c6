// The API server: chi routes linked to their handlers.

package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/studyplanner/planner/internal/core"
	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/store"
	"github.com/studyplanner/planner/internal/validation"
)

// Server holds the dependencies for our API.
type Server struct {
	app      *core.App
	db       *sql.DB
	store    *store.Store
	validate *validation.Validator
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	st := store.New(app.DB())
	if app.Config() != nil {
		st.SetSessionTTL(app.Config().Session.TTL)
	}
	return &Server{
		app:      app,
		db:       app.DB(),
		store:    st,
		validate: validation.New(),
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/users/login", s.handleLogin)
	r.Post("/api/users/signup", s.handleSignup)
	r.Get("/api/version", s.handleGetVersion)
	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		// The websocket route must not run under the timeout middleware.
		r.Get("/ws/schedule", s.handleScheduleFeed)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Post("/api/users/logout", s.handleLogout)
			r.Get("/api/users/me", s.handleGetMe)

			r.Route("/api", func(r chi.Router) {
				r.Get("/books", s.handleListBooks)
				r.Post("/books", s.handleCreateBook)
				r.Get("/books/{bookID}", s.handleGetBook)
				r.Delete("/books/{bookID}", s.handleDeleteBook)

				r.Get("/tags", s.handleListTags)
				r.Post("/tags", s.handleCreateTag)

				r.Get("/calendar", s.handleGetCalendar)

				r.Route("/admin", func(r chi.Router) {
					r.Use(s.AdminOnlyMiddleware)

					r.Get("/jobs/status", s.handleGetAdminJobsStatus)
					r.Post("/jobs/run", s.handleRunAdminJob)

					r.Get("/users", s.handleAdminListUsers)
					r.Post("/users", s.handleAdminCreateUser)
					r.Put("/users/{userID}", s.handleAdminUpdateUser)
					r.Delete("/users/{userID}", s.handleAdminDeleteUser)

					r.Delete("/tags/{tagID}", s.handleAdminDeleteTag)
				})
			})

			r.Route("/schedule", func(r chi.Router) {
				r.Get("/", s.handleListSchedule)
				r.Post("/book", s.handleScheduleBook)
				r.Patch("/block/{blockID}", s.handleUpdateBlock)
				r.Patch("/{blockID}/tag", s.handleRetagBlock)
				r.Delete("/clear", s.handleClearSchedule)
			})
		})
	})

	return r
}

func (s *Server) allowedOrigins() []string {
	if cfg := s.app.Config(); cfg != nil && len(cfg.CORS.AllowedOrigins) > 0 {
		return cfg.CORS.AllowedOrigins
	}
	return []string{"http://localhost:*", "http://127.0.0.1:*"}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version()})
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Validation("invalid " + name)
	}
	return id, nil
}
