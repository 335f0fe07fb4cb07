package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/spf13/cobra"
)

func newExercisesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "Manage the exercise catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List exercises by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exercises, err := a.db.ListExercisesSorted(cmd.Context())
			if err != nil {
				return err
			}
			return printExercises(cmd.OutOrStdout(), exercises)
		},
	}

	var ex models.NewExercise
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex.Name = args[0]
			id, err := a.db.AddExercise(cmd.Context(), ex)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added exercise %d %q\n", id, ex.Name)
			return nil
		},
	}
	add.Flags().StringVar(&ex.Description, "description", "", "exercise description")
	add.Flags().StringVar(&ex.VideoLink, "video", "", "link to a demonstration video")

	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find exercises whose name contains QUERY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exercises, err := a.db.SearchExercises(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printExercises(cmd.OutOrStdout(), exercises)
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an exercise not used by any workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.db.DeleteExercise(cmd.Context(), id); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("exercise %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted exercise %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, search, del)
	return cmd
}

func printExercises(w io.Writer, exercises []models.Exercise) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, ex := range exercises {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", ex.ID, ex.Name, ex.Description)
	}
	return tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
