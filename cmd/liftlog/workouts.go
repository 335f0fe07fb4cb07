package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/liftlog/liftlog/internal/dates"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/liftlog/liftlog/internal/units"
	"github.com/spf13/cobra"
)

func newWorkoutsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List, show and schedule workouts",
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List workouts by date, optionally within --from/--to (inclusive)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				workouts []models.Workout
				err      error
			)
			if from != "" || to != "" {
				if from == "" {
					from = "0001-01-01"
				}
				if to == "" {
					to = "9999-12-31"
				}
				if err := checkDate(from); err != nil {
					return err
				}
				if err := checkDate(to); err != nil {
					return err
				}
				workouts, err = a.db.WorkoutsByDateRange(cmd.Context(), from, to)
			} else {
				workouts, err = a.db.WorkoutsSortedByDate(cmd.Context(), true)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tNAME\tEXERCISES\tSETS")
			for _, w := range workouts {
				sets := 0
				for _, ex := range w.Exercises {
					sets += len(ex.Sets)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", w.ID, w.Date, w.Name, len(w.Exercises), sets)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "last date (YYYY-MM-DD)")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a workout with its sets",
		Args:  cobra.ExactArgs(1),
		RunE: withWorkoutID(func(cmd *cobra.Command, id int64, args []string) error {
			w, err := a.db.GetWorkout(cmd.Context(), id)
			if err != nil {
				return err
			}
			settings, err := a.db.GetSettings(cmd.Context())
			if err != nil {
				return err
			}
			printWorkout(cmd.OutOrStdout(), w, settings.UnitPreference)
			return nil
		}),
	}

	move := &cobra.Command{
		Use:   "move ID DATE",
		Short: "Reschedule a workout",
		Args:  cobra.ExactArgs(2),
		RunE: withWorkoutID(func(cmd *cobra.Command, id int64, args []string) error {
			date := args[1]
			if err := checkDate(date); err != nil {
				return err
			}
			if err := a.db.MoveWorkout(cmd.Context(), id, date); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved workout %d to %s\n", id, date)
			return nil
		}),
	}

	clone := &cobra.Command{
		Use:   "clone ID DATE",
		Short: "Copy a workout to another date with all sets uncompleted",
		Args:  cobra.ExactArgs(2),
		RunE: withWorkoutID(func(cmd *cobra.Command, id int64, args []string) error {
			date := args[1]
			if err := checkDate(date); err != nil {
				return err
			}
			newID, err := a.db.CloneWorkout(cmd.Context(), id, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cloned workout %d to %d on %s\n", id, newID, date)
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a workout and its logs",
		Args:  cobra.ExactArgs(1),
		RunE: withWorkoutID(func(cmd *cobra.Command, id int64, args []string) error {
			if err := a.db.DeleteWorkout(cmd.Context(), id); err != nil {
				return err
			}
			if _, err := a.db.DeleteLogsByWorkout(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted workout %d\n", id)
			return nil
		}),
	}

	complete := &cobra.Command{
		Use:   "complete ID",
		Short: "Mark every set done and log each exercise",
		Args:  cobra.ExactArgs(1),
		RunE: withWorkoutID(func(cmd *cobra.Command, id int64, args []string) error {
			n, err := a.db.CompleteWorkout(cmd.Context(), id, time.Now().UTC())
			if err != nil {
				return err
			}
			a.log.Info("workout completed", "id", id, "logs", n)
			fmt.Fprintf(cmd.OutOrStdout(), "completed workout %d (%d exercises logged)\n", id, n)
			return nil
		}),
	}

	cmd.AddCommand(list, show, move, clone, del, complete)
	return cmd
}

// withWorkoutID parses the first argument as a workout ID and turns
// ErrNotFound into a readable message.
func withWorkoutID(fn func(cmd *cobra.Command, id int64, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := fn(cmd, id, args); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("workout %d not found", id)
			}
			return err
		}
		return nil
	}
}

func checkDate(s string) error {
	if _, err := dates.Parse(s); err != nil {
		return fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return nil
}

func printWorkout(w io.Writer, wo *models.Workout, pref models.UnitPreference) {
	fmt.Fprintf(w, "%s  %s  (#%d)\n", wo.Date, wo.Name, wo.ID)
	if wo.Notes != "" {
		fmt.Fprintf(w, "  %s\n", wo.Notes)
	}
	for _, ex := range wo.Exercises {
		fmt.Fprintf(w, "\n  %s\n", ex.ExerciseName)
		if ex.Instructions != "" {
			fmt.Fprintf(w, "    instructions: %s\n", ex.Instructions)
		}
		if ex.Notes != "" {
			fmt.Fprintf(w, "    notes: %s\n", ex.Notes)
		}
		for i, s := range ex.Sets {
			mark := " "
			if s.Completed {
				mark = "x"
			}
			line := fmt.Sprintf("    [%s] %d. %s x %d", mark, i+1, units.Format(s.WeightKg, pref), s.Reps)
			if s.DurationSec != nil {
				line += fmt.Sprintf(" (%ds)", *s.DurationSec)
			}
			fmt.Fprintln(w, line)
		}
	}
}
