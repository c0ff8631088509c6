package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/studyplanner/planner/internal/websocket"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow schedule changes made from other sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := refresh(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (%d sessions), Ctrl-C to stop\n", client.FeedURL(), len(store.Blocks()))

			return store.Subscribe(ctx, client.FeedURL(), client.AuthHeader(), func(ev websocket.Event) {
				ok(out, "%s", watchLine(ev, store.LastSynced(), len(store.Blocks())))
			})
		},
	}
}

// watchLine describes a change event once the store has refreshed.
func watchLine(ev websocket.Event, synced time.Time, sessions int) string {
	subject := ""
	switch {
	case ev.BlockID != 0:
		subject = fmt.Sprintf(" session #%d", ev.BlockID)
	case ev.BookID != 0:
		subject = fmt.Sprintf(" book #%d", ev.BookID)
	}
	return fmt.Sprintf("%s %s%s, %d sessions", synced.Local().Format("15:04:05"), ev.Action, subject, sessions)
}
