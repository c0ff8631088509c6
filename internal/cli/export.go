package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/studyplanner/planner/internal/models"
)

type exportDoc struct {
	Exported string       `yaml:"exported"`
	Books    []exportBook `yaml:"books"`
}

type exportBook struct {
	Title    string          `yaml:"title"`
	Pages    string          `yaml:"pages"`
	Days     int             `yaml:"days"`
	Tag      string          `yaml:"tag,omitempty"`
	Sessions []exportSession `yaml:"sessions,omitempty"`
}

type exportSession struct {
	Date  string `yaml:"date"`
	Hijri string `yaml:"hijri,omitempty"`
	Pages string `yaml:"pages"`
	Tag   string `yaml:"tag,omitempty"`
	Color string `yaml:"color,omitempty"`
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the schedule as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := refresh(cmd.Context()); err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if err := writeExport(w, store.Books(), store.Blocks()); err != nil {
				return err
			}
			if output != "" && output != "-" {
				ok(cmd.OutOrStdout(), "Exported schedule to %s", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func writeExport(w io.Writer, books []models.Book, blocks []models.ScheduledBlock) error {
	doc := exportDoc{Exported: now().UTC().Format("2006-01-02T15:04:05Z")}
	for _, book := range books {
		eb := exportBook{
			Title: book.Title,
			Pages: fmt.Sprintf("%d-%d", book.PageFrom, book.PageTo),
			Days:  book.Duration,
		}
		if book.Tag != nil {
			eb.Tag = book.Tag.Name
		}
		for _, b := range blocks {
			if b.BookID != book.ID {
				continue
			}
			s := exportSession{
				Date:  b.DateGregorian,
				Pages: fmt.Sprintf("%d-%d", b.PageStart, b.PageEnd),
				Color: b.Color,
			}
			if b.DateHijri != nil {
				s.Hijri = fmt.Sprintf("%d %s %d", b.DateHijri.Day, b.DateHijri.MonthName, b.DateHijri.Year)
			}
			if b.Tag != nil {
				s.Tag = b.Tag.Name
			}
			eb.Sessions = append(eb.Sessions, s)
		}
		doc.Books = append(doc.Books, eb)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
