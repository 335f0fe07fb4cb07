package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

// Snapshot is the complete user data set, as written to and read from backups.
type Snapshot struct {
	Exercises   []models.Exercise
	Workouts    []models.Workout
	WorkoutLogs []models.WorkoutLog
	Settings    *models.Settings
}

// dataTables lists user data tables in delete order (children first).
var dataTables = []string{"workout_sets", "workout_exercises", "workouts", "workout_logs", "exercises"}

// Snapshot reads every exercise, workout, log and the settings row.
func (db *DB) Snapshot(ctx context.Context) (*Snapshot, error) {
	exercises, err := db.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	workouts, err := db.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := db.ListWorkoutLogs(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := db.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Exercises: exercises, Workouts: workouts, WorkoutLogs: logs, Settings: settings}, nil
}

// ReplaceAll deletes all user data and writes snap in its place, keeping
// the IDs it carries. Either everything is replaced or nothing changes.
// A nil Settings leaves the current settings untouched.
func (db *DB) ReplaceAll(ctx context.Context, snap *Snapshot) error {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if err := db.deleteData(ctx, tx); err != nil {
			return err
		}

		for _, ex := range snap.Exercises {
			createdAt := ex.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			if _, err := tx.ExecContext(ctx, db.rebind(
				`INSERT INTO exercises (id, name, description, video_link, created_at) VALUES (?, ?, ?, ?, ?)`),
				ex.ID, ex.Name, ex.Description, ex.VideoLink, createdAt); err != nil {
				return fmt.Errorf("restoring exercise %q: %w", ex.Name, err)
			}
		}

		for _, w := range snap.Workouts {
			if _, err := db.insertWorkout(ctx, tx, w, true); err != nil {
				return fmt.Errorf("restoring workout %q on %s: %w", w.Name, w.Date, err)
			}
		}

		for _, l := range snap.WorkoutLogs {
			setsJSON, err := encodeSets(l.Sets)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, db.rebind(
				`INSERT INTO workout_logs (id, workout_id, exercise_id, sets_json, completed_at, instructions, notes)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`),
				l.ID, l.WorkoutID, l.ExerciseID, setsJSON, l.CompletedAt, l.Instructions, l.Notes); err != nil {
				return fmt.Errorf("restoring workout log %d: %w", l.ID, err)
			}
		}

		if snap.Settings != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
				return fmt.Errorf("clearing settings: %w", err)
			}
			s := *snap.Settings
			if err := db.insertSettings(ctx, tx, &s); err != nil {
				return fmt.Errorf("restoring settings: %w", err)
			}
		}

		if db.dialect == Postgres {
			return db.resetSequences(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replacing data: %w", err)
	}
	return nil
}

// DeleteAllData removes every exercise, workout and log. Settings and
// import history are kept.
func (db *DB) DeleteAllData(ctx context.Context) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return db.deleteData(ctx, tx)
	})
}

func (db *DB) deleteData(ctx context.Context, q queryer) error {
	for _, table := range dataTables {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// resetSequences moves identity sequences past the explicitly inserted IDs.
func (db *DB) resetSequences(ctx context.Context, q queryer) error {
	for _, table := range []string{"exercises", "workouts", "workout_exercises", "workout_sets", "workout_logs", "settings"} {
		if _, err := q.ExecContext(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM %[1]s`,
			table)); err != nil {
			return fmt.Errorf("resetting %s sequence: %w", table, err)
		}
	}
	return nil
}
