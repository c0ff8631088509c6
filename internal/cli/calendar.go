package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studyplanner/planner/internal/calendar"
	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/schedule"
)

const cellWidth = 9

var (
	faint    = color.New(color.Faint)
	todayFmt = color.New(color.FgGreen, color.Bold)
	busyFmt  = color.New(color.FgCyan)
)

func newCalendarCmd() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month with Gregorian and Hijri dates and its sessions",
		Long: `Show a month grid. Each cell holds the Gregorian day, the Hijri day and
the number of sessions on that day. Use --tag (repeatable) to show only
sessions with one of the given tags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := now()
			year, month := today.Year(), int(today.Month())
			if len(args) == 1 {
				var err error
				if year, month, err = parseMonth(args[0]); err != nil {
					return err
				}
			}
			if err := refresh(cmd.Context()); err != nil {
				return err
			}
			return renderMonth(cmd.OutOrStdout(), year, month, schedule.TagFilter(tags), today)
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Only show sessions with these tags")
	return cmd
}

func parseMonth(s string) (int, int, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, errors.InvalidDatef("invalid month %q, want YYYY-MM", s)
	}
	return t.Year(), int(t.Month()), nil
}

// renderMonth prints the grid of year/month followed by its sessions.
func renderMonth(w io.Writer, year, month int, filter schedule.TagFilter, today time.Time) error {
	days, err := calendar.BuildMonthGrid(year, month, store.KnownDays())
	if err != nil {
		return err
	}

	title := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	width := cellWidth * 7
	header(w, "%s", center(title, width))
	if h := calendar.HijriTitle(days); h != "" {
		fmt.Fprintln(w, faint.Sprint(center(h, width)))
	}

	for _, name := range calendar.WeekdayNames {
		fmt.Fprintf(w, "%-*s", cellWidth, name)
	}
	fmt.Fprintln(w)

	for _, week := range calendar.Weeks(days) {
		for _, day := range week {
			fmt.Fprint(w, renderCell(day, len(store.BlocksOn(day.Date, filter)), today))
		}
		fmt.Fprintln(w)
	}

	var sessions []models.ScheduledBlock
	for _, day := range days {
		if day.IsCurrentMonth {
			sessions = append(sessions, store.BlocksOn(day.Date, filter)...)
		}
	}
	if len(sessions) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	header(w, "Sessions")
	for _, b := range sessions {
		fmt.Fprintln(w, renderSession(b))
	}
	return nil
}

// renderCell formats "gd/hd" plus a session marker, padded to cellWidth.
func renderCell(day models.CalendarDay, sessions int, today time.Time) string {
	text := fmt.Sprintf("%d", day.GregorianDate.Day())
	if day.HijriDate != nil {
		text += fmt.Sprintf("/%d", day.HijriDate.Day)
	}
	if sessions > 0 {
		text += fmt.Sprintf(" %d", sessions)
	}
	text = fmt.Sprintf("%-*s", cellWidth, text)

	switch {
	case calendar.IsToday(day, today):
		return todayFmt.Sprint(text)
	case !day.IsCurrentMonth:
		return faint.Sprint(text)
	case sessions > 0:
		return busyFmt.Sprint(text)
	default:
		return text
	}
}

func renderSession(b models.ScheduledBlock) string {
	hijri := ""
	if b.DateHijri != nil {
		hijri = fmt.Sprintf("%d %s %d", b.DateHijri.Day, b.DateHijri.MonthName, b.DateHijri.Year)
	}
	tag := ""
	if b.Tag != nil {
		tag = color.CyanString("[%s]", b.Tag.Name)
	}
	return fmt.Sprintf("  #%-5d %s  %-22s %-24s pp. %d-%d %s",
		b.ID, b.DateGregorian, faint.Sprint(hijri), b.BookTitle, b.PageStart, b.PageEnd, tag)
}

func center(s string, width int) string {
	pad := (width - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
