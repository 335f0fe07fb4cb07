package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/dates"
	"github.com/spf13/cobra"
)

func newCalendarCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month grid; days with workouts are marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			year, mon := now.Year(), now.Month()
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid --month %q (use YYYY-MM)", month)
				}
				year, mon = t.Year(), t.Month()
			}

			days := dates.CalendarDays(year, mon, now)
			workouts, err := a.db.WorkoutsByDateRange(cmd.Context(),
				days[0].DateString, days[len(days)-1].DateString)
			if err != nil {
				return err
			}
			planned := make(map[string]bool, len(workouts))
			for _, w := range workouts {
				planned[w.Date] = true
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d\n", dates.MonthName(mon), year)
			for _, n := range dates.DayNames() {
				fmt.Fprintf(out, "%-5s", n)
			}
			fmt.Fprintln(out)

			var row strings.Builder
			for i, d := range days {
				cell := "  "
				if d.IsCurrentMonth {
					cell = fmt.Sprintf("%2d", d.Day)
				}
				switch {
				case d.IsCurrentMonth && planned[d.DateString]:
					cell += "*"
				case d.IsToday:
					cell += "<"
				}
				fmt.Fprintf(&row, "%-5s", cell)
				if i%7 == 6 {
					fmt.Fprintln(out, strings.TrimRight(row.String(), " "))
					row.Reset()
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show (YYYY-MM, default current)")
	return cmd
}
