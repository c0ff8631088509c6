// Shared test server setup, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/studyplanner/planner/internal/api"
	"github.com/studyplanner/planner/internal/config"
	"github.com/studyplanner/planner/internal/core"
)

// SetupTestApp wires a core.App around a fresh in-memory database.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := &config.Config{}
	cfg.Session.TTL = time.Hour
	app := core.NewWith(cfg, db, "test")
	t.Cleanup(func() {
		app.JobManager().Wait()
		app.WsHub().Stop()
	})
	return app
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	return api.NewServer(app), app.DB()
}
