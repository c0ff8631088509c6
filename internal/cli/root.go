// Package cli implements the planner command line client: it keeps a
// synchronized schedule, renders month grids and turns drag/drop style
// commands into schedule commits.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studyplanner/planner/internal/backend"
	"github.com/studyplanner/planner/internal/config"
	"github.com/studyplanner/planner/internal/dnd"
	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/logger"
	"github.com/studyplanner/planner/internal/schedule"
	buildversion "github.com/studyplanner/planner/internal/version"
)

var version = buildversion.Dev

// SetVersion sets the version reported by `planner version`.
func SetVersion(v string) { version = v }

var (
	cfg    *config.Config
	client *backend.Client
	store  *schedule.Store
	drag   *dnd.Controller

	flagServer  string
	flagNoColor bool
	flagVerbose bool

	// now is replaced in tests.
	now = time.Now
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planner",
		Short: "Plan book reading across the Gregorian and Hijri calendars",
		Long: `planner schedules reading assignments on a study calendar.

Register a book with a page range and a number of days, drop it on a start
date, and the pages are split into daily sessions shown with both Gregorian
and Hijri dates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", "", "Planner server URL (default from config)")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if flagNoColor {
			color.NoColor = true
		}
		level := "warn"
		if flagVerbose {
			level = "debug"
		}
		logger.Setup(level, logger.FormatPretty, "")

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServer != "" {
			cfg.Backend.URL = flagServer
		}

		client = backend.NewFromConfig(cfg)
		store = schedule.New(client)
		drag = dnd.NewController(store)

		if cmd.Annotations["auth"] == "none" {
			return nil
		}
		if client.Token() == "" {
			return errors.Unauthorized("not logged in, run 'planner login' or set PLANNER_TOKEN")
		}
		return nil
	}

	root.AddCommand(
		newLoginCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newBooksCmd(),
		newAddBookCmd(),
		newDeleteBookCmd(),
		newTagsCmd(),
		newAddTagCmd(),
		newCalendarCmd(),
		newConvertCmd(),
		newScheduleCmd(),
		newMoveCmd(),
		newRetagCmd(),
		newClearCmd(),
		newExportCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), describe(err))
		os.Exit(1)
	}
}

// describe adds a hint to errors the user can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, errors.ErrUnauthorized):
		return err.Error() + " (try 'planner login')"
	case errors.Is(err, errors.ErrConflict):
		return err.Error() + " (another change is still being saved)"
	default:
		return err.Error()
	}
}

// refresh loads the schedule before a command reads it.
func refresh(ctx context.Context) error {
	return store.Refresh(ctx)
}

func noAuth(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations["auth"] = "none"
	return cmd
}

// ok prints a green success line.
func ok(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}

func newVersionCmd() *cobra.Command {
	return noAuth(&cobra.Command{
		Use:   "version",
		Short: "Print the client and server versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "planner", version)

			server, err := client.ServerVersion(cmd.Context())
			if err != nil {
				warn(out, "server %s unreachable: %v", client.BaseURL(), err)
				return nil
			}
			fmt.Fprintln(out, "server ", server)
			compatible, err := buildversion.Compatible(version, server)
			switch {
			case err != nil:
				warn(out, "cannot compare versions: %v", err)
			case !compatible:
				warn(out, "client %s and server %s are not compatible", version, server)
			}
			return nil
		},
	})
}
