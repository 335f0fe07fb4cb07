package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/liftlog/liftlog/internal/importer"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/spf13/cobra"
)

// importKind ties an import subcommand to the importer entry point it runs.
type importKind struct {
	name  string
	short string
	run   func(ctx context.Context, imp *importer.Importer, r io.Reader) (tally, error)
}

// tally is the common shape of CSV and JSON results for reporting.
type tally struct {
	success, skipped int
	errors           []string
	summary          string
}

var importKinds = []importKind{
	{
		name:  "exercises",
		short: "Import exercises from a name,description,videoLink CSV",
		run: func(ctx context.Context, imp *importer.Importer, r io.Reader) (tally, error) {
			res, err := imp.ImportExercisesCSV(ctx, r)
			return csvTally(res), err
		},
	},
	{
		name:  "workouts",
		short: "Import workouts from a CSV of set rows",
		run: func(ctx context.Context, imp *importer.Importer, r io.Reader) (tally, error) {
			res, err := imp.ImportWorkoutsCSV(ctx, r)
			return csvTally(res), err
		},
	},
	{
		name:  "alpha",
		short: "Import workouts from an Alpha Progression CSV export",
		run: func(ctx context.Context, imp *importer.Importer, r io.Reader) (tally, error) {
			res, err := imp.ImportAlphaCSV(ctx, r)
			return csvTally(res), err
		},
	},
	{
		name:  "json",
		short: `Import a JSON document with "exercises" and "workouts" arrays`,
		run: func(ctx context.Context, imp *importer.Importer, r io.Reader) (tally, error) {
			res, err := imp.ImportJSON(ctx, r)
			if res == nil {
				return tally{}, err
			}
			return tally{
				success: res.ExercisesSuccess + res.WorkoutsSuccess,
				skipped: res.ExercisesSkipped + res.WorkoutsSkipped,
				errors:  res.Errors,
				summary: fmt.Sprintf("exercises: %d imported, %d skipped\nworkouts: %d imported, %d skipped",
					res.ExercisesSuccess, res.ExercisesSkipped, res.WorkoutsSuccess, res.WorkoutsSkipped),
			}, err
		},
	},
}

func csvTally(res *importer.Result) tally {
	if res == nil {
		return tally{}
	}
	return tally{
		success: res.Success,
		skipped: res.Skipped,
		errors:  res.Errors,
		summary: fmt.Sprintf("%d imported, %d skipped", res.Success, res.Skipped),
	}
}

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-import exercises or workouts",
	}

	var dryRun bool
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report counts without writing to the database")

	for _, kind := range importKinds {
		cmd.AddCommand(&cobra.Command{
			Use:   kind.name + " FILE",
			Short: kind.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runImport(cmd, kind, args[0], dryRun)
			},
		})
	}
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, kind importKind, path string, dryRun bool) error {
	ctx := cmd.Context()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	log := a.log.With("kind", kind.name, "file", path)
	if dryRun {
		log.Info("dry run, no data will be written")
	}

	entry := storage.ImportLog{
		Source: kind.name + ":" + filepath.Base(path),
		Status: storage.ImportRunning,
	}
	if !dryRun {
		if entry.ID, err = a.db.InsertImportLog(ctx, entry); err != nil {
			return err
		}
	}

	start := time.Now()
	t, importErr := kind.run(ctx, importer.New(a.db, log, dryRun), f)

	entry.Success = t.success
	entry.Skipped = t.skipped
	entry.Errors = t.errors
	entry.DurationMs = time.Since(start).Milliseconds()
	switch {
	case importErr != nil:
		entry.Status = storage.ImportError
		if len(entry.Errors) == 0 {
			entry.Errors = []string{importErr.Error()}
		}
	case len(t.errors) > 0:
		entry.Status = storage.ImportPartial
	default:
		entry.Status = storage.ImportSuccess
	}
	if !dryRun {
		if err := a.db.UpdateImportLog(ctx, entry.ID, entry); err != nil {
			log.Warn("recording import outcome", "error", err)
		}
	}

	log.Info("import finished",
		"status", entry.Status,
		"success", entry.Success,
		"skipped", entry.Skipped,
		"errors", len(entry.Errors),
		"duration_ms", entry.DurationMs,
	)
	if importErr != nil {
		return importErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, t.summary)
	for _, e := range t.errors {
		fmt.Fprintf(out, "  %s\n", e)
	}
	return nil
}

func newImportsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Show recent import runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := a.db.ListImportLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tSOURCE\tSTATUS\tSUCCESS\tSKIPPED\tERRORS\tMS")
			for _, l := range logs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					l.CreatedAt.Local().Format(time.DateTime), l.Source, l.Status,
					l.Success, l.Skipped, len(l.Errors), l.DurationMs)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}
