package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/storage"
	"github.com/liftlog/liftlog/internal/units"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history EXERCISE",
		Short: "Show completed sets for an exercise, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ex, err := a.db.GetExerciseByName(ctx, args[0])
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("exercise %q not found", args[0])
			}
			if err != nil {
				return err
			}
			settings, err := a.db.GetSettings(ctx)
			if err != nil {
				return err
			}
			logs, err := a.db.LogsByExercise(ctx, ex.ID)
			if err != nil {
				return err
			}
			if limit > 0 && len(logs) > limit {
				logs = logs[:limit]
			}

			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintf(out, "no history for %s\n", ex.Name)
				return nil
			}
			fmt.Fprintln(out, ex.Name)
			for _, l := range logs {
				sets := make([]string, 0, len(l.Sets))
				for _, s := range l.Sets {
					sets = append(sets, fmt.Sprintf("%s x %d", units.Format(s.WeightKg, settings.UnitPreference), s.Reps))
				}
				fmt.Fprintf(out, "  %s  %s\n", l.CompletedAt.Local().Format(time.DateOnly), strings.Join(sets, ", "))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of sessions to show (0 for all)")
	return cmd
}
