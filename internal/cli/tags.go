package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studyplanner/planner/internal/models"
)

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := client.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "No tags found.")
				return nil
			}
			for _, t := range tags {
				extra := []string{}
				if t.Category != "" {
					extra = append(extra, t.Category)
				}
				if t.IsBlockOnly {
					extra = append(extra, "sessions only")
				}
				fmt.Fprintf(out, "  %-20s %s %s\n",
					color.CyanString(t.Name),
					t.Color,
					color.HiBlackString("%s", strings.Join(extra, ", ")),
				)
			}
			return nil
		},
	}
}

func newAddTagCmd() *cobra.Command {
	var tag models.Tag

	cmd := &cobra.Command{
		Use:   "add-tag <name>",
		Short: "Create a tag",
		Long: `Create a tag. Without --color, the well-known names Deadline, Important,
Exam Prep, Notes, Personal and Group get their usual colors and others gray.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag.Name = args[0]
			created, err := client.CreateTag(cmd.Context(), tag)
			if err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "Created tag %s (%s)", created.Name, created.Color)
			return nil
		},
	}

	cmd.Flags().StringVar(&tag.Color, "color", "", "Hex color such as #3B82F6")
	cmd.Flags().StringVar(&tag.Icon, "icon", "", "Icon name")
	cmd.Flags().StringVar(&tag.Category, "category", "", "Category")
	cmd.Flags().BoolVar(&tag.IsBlockOnly, "block-only", false, "Only for individual sessions, not whole books")
	return cmd
}
