package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/logging"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/spf13/cobra"
)

// app holds what every command needs once the config has been loaded.
type app struct {
	configPath string
	logOut     io.Writer

	cfg *config.Config
	log *slog.Logger
	db  *storage.DB
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	a := &app{logOut: logOut}

	root := &cobra.Command{
		Use:   "liftlog",
		Short: "Personal workout tracker",
		Long: `liftlog keeps an exercise catalog, planned and completed workouts,
and per-exercise history in a local SQLite (or PostgreSQL) database.

Workouts and exercises can be bulk-imported from CSV or JSON, exported to CSV,
and the whole data set can be saved to an encrypted backup file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "liftlog.yaml", "path to config file")

	root.AddCommand(
		newMigrateCmd(a),
		newExercisesCmd(a),
		newWorkoutsCmd(a),
		newImportCmd(a),
		newImportsCmd(a),
		newExportCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newWipeCmd(a),
		newSettingsCmd(a),
		newCalendarCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// open loads config, builds the logger and connects the database with
// migrations applied.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cfg.Log, a.logOut)

	db, err := storage.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrating database: %w", err)
	}
	a.db = db
	a.log.Debug("database ready", "driver", cfg.Database.Driver)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
