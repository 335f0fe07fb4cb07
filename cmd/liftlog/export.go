package main

import (
	"io"
	"os"

	"github.com/liftlog/liftlog/internal/exporter"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export exercises or workouts as CSV",
	}

	var output string
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write to FILE instead of stdout")

	exercises := &cobra.Command{
		Use:   "exercises",
		Short: "Export the exercise catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.db.ListExercisesSorted(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return exporter.ExportExercises(w, list)
			})
		},
	}

	workouts := &cobra.Command{
		Use:   "workouts",
		Short: "Export every workout, one row per set, in a re-importable layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.db.WorkoutsSortedByDate(cmd.Context(), true)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return exporter.ExportWorkouts(w, list)
			})
		},
	}

	cmd.AddCommand(exercises, workouts)
	return cmd
}

// writeOutput runs write against path, or stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
