package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/hijri"
	"github.com/studyplanner/planner/internal/util"
)

func newConvertCmd() *cobra.Command {
	var fromHijri bool

	cmd := &cobra.Command{
		Use:   "convert <YYYY-MM-DD> | --hijri <YYYY-MM-DD | DAY MONTH YEAR>",
		Short: "Convert a date between the Gregorian and Hijri calendars",
		Example: `  planner convert 2024-03-11
  planner convert --hijri 1445-09-10
  planner convert --hijri 10 Ramadan 1445`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !fromHijri {
				if len(args) != 1 {
					return errors.Validation("give one Gregorian date as YYYY-MM-DD")
				}
				h, err := hijri.ToHijriString(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s = %d %s %d AH\n", args[0], h.Day, h.MonthName, h.Year)
				return nil
			}

			year, month, day, err := parseHijriArgs(args)
			if err != nil {
				return err
			}
			g, err := hijri.ToGregorian(year, month, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d %s %d AH = %s\n", day, hijri.MonthName(month), year, util.FormatISODate(g))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromHijri, "hijri", false, "Convert from a Hijri date to Gregorian")
	return noAuth(cmd)
}

// parseHijriArgs accepts "YYYY-MM-DD" or "DAY MONTH YEAR", where MONTH is a
// number or a month name such as "Ramadan".
func parseHijriArgs(args []string) (year, month, day int, err error) {
	bad := errors.InvalidDatef("invalid Hijri date %q, want YYYY-MM-DD or DAY MONTH YEAR", strings.Join(args, " "))
	switch len(args) {
	case 1:
		if _, err := fmt.Sscanf(args[0], "%d-%d-%d", &year, &month, &day); err != nil {
			return 0, 0, 0, bad
		}
		return year, month, day, nil
	case 3:
		if day, err = strconv.Atoi(args[0]); err != nil {
			return 0, 0, 0, bad
		}
		if year, err = strconv.Atoi(args[2]); err != nil {
			return 0, 0, 0, bad
		}
		if month = hijriMonth(args[1]); month == 0 {
			return 0, 0, 0, bad
		}
		return year, month, day, nil
	default:
		return 0, 0, 0, bad
	}
}

func hijriMonth(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	for i, name := range hijri.MonthNames() {
		if strings.EqualFold(name, s) {
			return i + 1
		}
	}
	return 0
}
