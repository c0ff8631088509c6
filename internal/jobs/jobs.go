package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/studyplanner/planner/internal/store"
)

// SessionPurgeJobID identifies the expired session cleanup.
const SessionPurgeJobID = "session-purge"

// RegisterAll registers every job the server knows about.
func RegisterAll(jm *JobManager) {
	jm.Register(SessionPurgeJobID, "Purge expired sessions", RunSessionPurge)
}

// StartJobs schedules the periodic jobs and starts the scheduler. The caller
// stops it on shutdown.
func StartJobs(app JobContext) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startSessionPurgeJob(s, app)

	slog.Info("starting background job scheduler")
	s.StartAsync()
	return s
}

func startSessionPurgeJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().Session.PurgeInterval
	if interval <= 0 {
		slog.Info("session purge interval is 0, scheduled purge is disabled")
		return
	}

	slog.Info("scheduling job", "job", SessionPurgeJobID, "every_minutes", interval)
	_, err := s.Every(interval).Minutes().Do(func() {
		// Submitted through the manager so it never overlaps a manual run.
		if err := app.JobManager().RunJob(SessionPurgeJobID, app); err != nil {
			slog.Warn("scheduled job could not start", "job", SessionPurgeJobID, "error", err)
		}
	})
	if err != nil {
		slog.Error("error scheduling job", "job", SessionPurgeJobID, "error", err)
	}
}

// RunSessionPurge deletes every expired session.
func RunSessionPurge(ctx JobContext) error {
	removed, err := store.New(ctx.DB()).DeleteExpiredSessions(time.Now())
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	if jm := ctx.JobManager(); jm != nil {
		jm.SetMessage(SessionPurgeJobID, fmt.Sprintf("Removed %d expired sessions.", removed))
	}
	slog.Info("purged expired sessions", "removed", removed)
	return nil
}
