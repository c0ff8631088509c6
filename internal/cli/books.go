package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studyplanner/planner/internal/backend"
	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/planner"
)

func newBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List your books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := refresh(cmd.Context()); err != nil {
				return err
			}
			books := store.Books()
			out := cmd.OutOrStdout()
			if len(books) == 0 {
				fmt.Fprintln(out, "No books yet. Add one with 'planner add-book'.")
				return nil
			}

			scheduled := map[int64]int{}
			for _, b := range store.Blocks() {
				scheduled[b.BookID]++
			}
			for _, b := range books {
				fmt.Fprintf(out, "%4d  %-32s pp. %d-%d  %s  %s%s\n",
					b.ID, b.Title, b.PageFrom, b.PageTo,
					color.HiBlackString("%d days, ~%d pages/day", b.Duration, planner.PagesPerDay(b.TotalPages, b.Duration)),
					tagLabel(b.Tag),
					scheduledLabel(scheduled[b.ID]),
				)
			}
			return nil
		},
	}
}

func scheduledLabel(n int) string {
	if n == 0 {
		return ""
	}
	return color.GreenString("  %d sessions", n)
}

func tagLabel(t *models.Tag) string {
	if t == nil {
		return ""
	}
	return color.CyanString("[%s]", t.Name)
}

func newAddBookCmd() *cobra.Command {
	var (
		from, to, days int
		tagName        string
	)

	cmd := &cobra.Command{
		Use:   "add-book <title>",
		Short: "Register a book to read over a number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb := backend.NewBook{Title: args[0], PageFrom: from, PageTo: to, Duration: days}
			if tagName != "" {
				tag, err := findTag(cmd, tagName)
				if err != nil {
					return err
				}
				nb.TagID = &tag.ID
			}

			book, err := client.CreateBook(cmd.Context(), nb)
			if err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "Added %q (#%d): %d pages over %d days, ~%d pages per day",
				book.Title, book.ID, book.TotalPages, book.Duration, planner.PagesPerDay(book.TotalPages, book.Duration))
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 1, "First page")
	cmd.Flags().IntVar(&to, "to", 0, "Last page")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to read it in")
	cmd.Flags().StringVar(&tagName, "tag", "", "Default tag of the book's sessions")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newDeleteBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-book <book-id>",
		Short: "Delete a book and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if err := client.DeleteBook(cmd.Context(), id); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "Deleted book #%d", id)
			return nil
		},
	}
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Validation(fmt.Sprintf("invalid %s id %q", what, s))
	}
	return id, nil
}

// findTag resolves a tag by name from the server's tag list.
func findTag(cmd *cobra.Command, name string) (models.Tag, error) {
	tags, err := client.ListTags(cmd.Context())
	if err != nil {
		return models.Tag{}, err
	}
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return models.Tag{}, errors.NotFound(fmt.Sprintf("tag %q not found", name))
}
