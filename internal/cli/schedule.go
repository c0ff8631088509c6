package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyplanner/planner/internal/dnd"
	"github.com/studyplanner/planner/internal/errors"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <book-id> <YYYY-MM-DD>",
		Short: "Drop a book on a start date to split it into daily sessions",
		Long: `Drop a book on a start date. The server splits the book's pages into
daily sessions starting that day, replacing any earlier schedule of the book.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if err := refresh(cmd.Context()); err != nil {
				return err
			}
			book, found := store.Book(id)
			if !found {
				return errors.NotFound(fmt.Sprintf("book #%d not found", id))
			}

			outcome, err := drag.Drop(cmd.Context(), dnd.BookPayload(book), dnd.Target{Date: args[1]})
			if err != nil {
				return err
			}
			if outcome == dnd.OutcomeNone {
				return errors.InvalidDatef("invalid date %q, want YYYY-MM-DD", args[1])
			}

			out := cmd.OutOrStdout()
			ok(out, "Scheduled %q from %s", book.Title, args[1])
			for _, b := range store.Blocks() {
				if b.BookID == book.ID {
					fmt.Fprintln(out, renderSession(b))
				}
			}
			return nil
		},
	}
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <session-id> <YYYY-MM-DD>",
		Short: "Drag a session to another day, keeping its pages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "session")
			if err != nil {
				return err
			}
			if err := refresh(cmd.Context()); err != nil {
				return err
			}
			block, found := store.Block(id)
			if !found {
				return errors.NotFound(fmt.Sprintf("session #%d not found", id))
			}

			outcome, err := drag.Drop(cmd.Context(), dnd.BlockPayload(block), dnd.Target{Date: args[1]})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outcome == dnd.OutcomeNone {
				if block.DateGregorian == args[1] {
					warn(out, "Session #%d is already on %s", id, args[1])
					return nil
				}
				return errors.InvalidDatef("invalid date %q, want YYYY-MM-DD", args[1])
			}

			moved, _ := store.Block(id)
			ok(out, "Moved session #%d to %s", id, moved.DateGregorian)
			fmt.Fprintln(out, renderSession(moved))
			return nil
		},
	}
}

func newRetagCmd() *cobra.Command {
	var clearTag bool

	cmd := &cobra.Command{
		Use:   "retag <session-id> [tag]",
		Short: "Set or clear the tag of a single session",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "session")
			if err != nil {
				return err
			}
			if clearTag == (len(args) == 2) {
				return errors.Validation("give either a tag name or --clear")
			}
			if err := refresh(cmd.Context()); err != nil {
				return err
			}

			var tagID *int64
			if !clearTag {
				tag, found := store.TagByName(args[1])
				if !found {
					return errors.NotFound(fmt.Sprintf("tag %q not found", args[1]))
				}
				tagID = &tag.ID
			}

			if err := store.CommitRetag(cmd.Context(), id, tagID); err != nil {
				return err
			}
			block, _ := store.Block(id)
			ok(cmd.OutOrStdout(), "Retagged session #%d", id)
			fmt.Fprintln(cmd.OutOrStdout(), renderSession(block))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearTag, "clear", false, "Remove the session's own tag")
	return cmd
}

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every scheduled session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.Validation("this removes all sessions, pass --yes to confirm")
			}
			if err := store.ClearAll(cmd.Context()); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "Schedule cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm")
	return cmd
}
