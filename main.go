package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyplanner/planner/internal/api"
	"github.com/studyplanner/planner/internal/auth"
	"github.com/studyplanner/planner/internal/core"
	"github.com/studyplanner/planner/internal/jobs"
	"github.com/studyplanner/planner/internal/store"
)

// version is set via ldflags.
var version = "dev"

func main() {
	app, err := core.New(version)
	if err != nil {
		slog.Error("fatal error during application setup", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := provisionAdmin(store.New(app.DB())); err != nil {
		slog.Error("could not provision the first user", "error", err)
		os.Exit(1)
	}

	scheduler := jobs.StartJobs(app)
	defer scheduler.Stop()

	server := api.NewServer(app)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config().Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting web server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("could not start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("server exiting")
}

// provisionAdmin creates an "admin" account with a random password when the
// database has no users yet.
func provisionAdmin(st *store.Store) error {
	count, err := st.CountUsers()
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	password := rand.Text()[:16]
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := st.CreateUser("admin", hash, "admin"); err != nil {
		return fmt.Errorf("creating default admin: %w", err)
	}
	slog.Warn("no users found, created default admin account; change this password immediately",
		"username", "admin", "password", password)
	return nil
}
