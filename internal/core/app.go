package core

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/studyplanner/planner/internal/assets"
	"github.com/studyplanner/planner/internal/config"
	"github.com/studyplanner/planner/internal/db"
	"github.com/studyplanner/planner/internal/jobs"
	"github.com/studyplanner/planner/internal/logger"
	"github.com/studyplanner/planner/internal/websocket"
)

// App holds the components shared by the server and its background jobs.
type App struct {
	config     *config.Config
	db         *sql.DB
	wsHub      *websocket.Hub
	jobManager *jobs.JobManager
	version    string
}

// New loads the configuration, sets up logging, opens and migrates the
// database and starts the websocket hub.
func New(version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Environment)

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	app := NewWith(cfg, database, version)
	slog.Info("core application setup complete", "database", cfg.Database.Path, "version", version)
	return app, nil
}

// NewWith assembles an App from already prepared parts and starts its hub.
func NewWith(cfg *config.Config, database *sql.DB, version string) *App {
	hub := websocket.NewHub()
	go hub.Run()

	jm := jobs.NewManager()
	jobs.RegisterAll(jm)

	return &App{
		config:     cfg,
		db:         database,
		wsHub:      hub,
		jobManager: jm,
		version:    version,
	}
}

func (a *App) Config() *config.Config       { return a.config }
func (a *App) DB() *sql.DB                  { return a.db }
func (a *App) WsHub() *websocket.Hub        { return a.wsHub }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }
func (a *App) Version() string              { return a.version }

// Close stops the hub and closes the database.
func (a *App) Close() {
	if a.wsHub != nil {
		a.wsHub.Stop()
	}
	if a.db != nil {
		a.db.Close()
	}
}
