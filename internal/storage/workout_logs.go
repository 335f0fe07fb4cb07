package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

const workoutLogColumns = `id, workout_id, exercise_id, sets_json, completed_at, instructions, notes`

// AddWorkoutLog records performed sets and returns the new log ID.
// A zero CompletedAt is set to now.
func (db *DB) AddWorkoutLog(ctx context.Context, l models.WorkoutLog) (int64, error) {
	id, err := db.insertWorkoutLog(ctx, db.sql, l)
	if err != nil {
		return 0, fmt.Errorf("inserting workout log: %w", err)
	}
	return id, nil
}

func (db *DB) insertWorkoutLog(ctx context.Context, q queryer, l models.WorkoutLog) (int64, error) {
	setsJSON, err := encodeSets(l.Sets)
	if err != nil {
		return 0, err
	}
	completedAt := l.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}
	return db.insertReturningID(ctx, q,
		`INSERT INTO workout_logs (workout_id, exercise_id, sets_json, completed_at, instructions, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		l.WorkoutID, l.ExerciseID, setsJSON, completedAt, l.Instructions, l.Notes)
}

// GetWorkoutLog retrieves a log by ID. Returns ErrNotFound if absent.
func (db *DB) GetWorkoutLog(ctx context.Context, id int64) (*models.WorkoutLog, error) {
	row := db.sql.QueryRowContext(ctx,
		db.rebind(`SELECT `+workoutLogColumns+` FROM workout_logs WHERE id = ?`), id)
	l, err := scanWorkoutLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout log %d: %w", id, err)
	}
	return &l, nil
}

// ListWorkoutLogs returns all logs in insertion order.
func (db *DB) ListWorkoutLogs(ctx context.Context) ([]models.WorkoutLog, error) {
	return db.queryWorkoutLogs(ctx, `SELECT `+workoutLogColumns+` FROM workout_logs ORDER BY id`)
}

// LogsByWorkout returns the logs recorded for one workout.
func (db *DB) LogsByWorkout(ctx context.Context, workoutID int64) ([]models.WorkoutLog, error) {
	return db.queryWorkoutLogs(ctx,
		`SELECT `+workoutLogColumns+` FROM workout_logs WHERE workout_id = ? ORDER BY id`, workoutID)
}

// LogsByExercise returns an exercise's history, newest first.
func (db *DB) LogsByExercise(ctx context.Context, exerciseID int64) ([]models.WorkoutLog, error) {
	return db.queryWorkoutLogs(ctx,
		`SELECT `+workoutLogColumns+` FROM workout_logs WHERE exercise_id = ?
		 ORDER BY completed_at DESC, id DESC`, exerciseID)
}

// LogsByExerciseAndDateRange returns an exercise's logs completed within
// [from, to], oldest first.
func (db *DB) LogsByExerciseAndDateRange(ctx context.Context, exerciseID int64, from, to time.Time) ([]models.WorkoutLog, error) {
	return db.queryWorkoutLogs(ctx,
		`SELECT `+workoutLogColumns+` FROM workout_logs
		 WHERE exercise_id = ? AND completed_at >= ? AND completed_at <= ?
		 ORDER BY completed_at, id`, exerciseID, from.UTC(), to.UTC())
}

// LastLogForExercise returns the most recent log for an exercise.
// Returns ErrNotFound if the exercise has never been logged.
func (db *DB) LastLogForExercise(ctx context.Context, exerciseID int64) (*models.WorkoutLog, error) {
	row := db.sql.QueryRowContext(ctx,
		db.rebind(`SELECT `+workoutLogColumns+` FROM workout_logs WHERE exercise_id = ?
		 ORDER BY completed_at DESC, id DESC LIMIT 1`), exerciseID)
	l, err := scanWorkoutLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying last log for exercise %d: %w", exerciseID, err)
	}
	return &l, nil
}

// LogsSortedByDate returns all logs ordered by completion time.
func (db *DB) LogsSortedByDate(ctx context.Context, ascending bool) ([]models.WorkoutLog, error) {
	order := `completed_at DESC, id DESC`
	if ascending {
		order = `completed_at ASC, id ASC`
	}
	return db.queryWorkoutLogs(ctx, `SELECT `+workoutLogColumns+` FROM workout_logs ORDER BY `+order)
}

// DeleteWorkoutLog removes one log.
func (db *DB) DeleteWorkoutLog(ctx context.Context, id int64) error {
	res, err := db.sql.ExecContext(ctx, db.rebind(`DELETE FROM workout_logs WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting workout log %d: %w", id, err)
	}
	return requireAffected(res)
}

// DeleteLogsByWorkout removes every log of a workout and returns how many
// were deleted.
func (db *DB) DeleteLogsByWorkout(ctx context.Context, workoutID int64) (int64, error) {
	res, err := db.sql.ExecContext(ctx, db.rebind(`DELETE FROM workout_logs WHERE workout_id = ?`), workoutID)
	if err != nil {
		return 0, fmt.Errorf("deleting logs of workout %d: %w", workoutID, err)
	}
	return res.RowsAffected()
}

// CompleteWorkout marks every set of the workout completed and writes one
// log per exercise, all in one transaction. Returns the number of logs written.
func (db *DB) CompleteWorkout(ctx context.Context, workoutID int64, at time.Time) (int, error) {
	w, err := db.GetWorkout(ctx, workoutID)
	if err != nil {
		return 0, err
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, db.rebind(
			`UPDATE workout_sets SET completed = ?
			 WHERE workout_exercise_id IN (SELECT id FROM workout_exercises WHERE workout_id = ?)`),
			true, workoutID); err != nil {
			return fmt.Errorf("marking sets completed: %w", err)
		}
		for _, ex := range w.Exercises {
			sets := make([]models.Set, len(ex.Sets))
			for i, s := range ex.Sets {
				s.Completed = true
				sets[i] = s
			}
			if _, err := db.insertWorkoutLog(ctx, tx, models.WorkoutLog{
				WorkoutID:    workoutID,
				ExerciseID:   ex.ExerciseID,
				Sets:         sets,
				CompletedAt:  at,
				Instructions: ex.Instructions,
				Notes:        ex.Notes,
			}); err != nil {
				return fmt.Errorf("logging %q: %w", ex.ExerciseName, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("completing workout %d: %w", workoutID, err)
	}
	return len(w.Exercises), nil
}

func (db *DB) queryWorkoutLogs(ctx context.Context, query string, args ...any) ([]models.WorkoutLog, error) {
	rows, err := db.sql.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying workout logs: %w", err)
	}
	defer rows.Close()

	result := []models.WorkoutLog{}
	for rows.Next() {
		l, err := scanWorkoutLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func scanWorkoutLog(row interface{ Scan(dest ...any) error }) (models.WorkoutLog, error) {
	var (
		l        models.WorkoutLog
		setsJSON string
	)
	if err := row.Scan(&l.ID, &l.WorkoutID, &l.ExerciseID, &setsJSON,
		&l.CompletedAt, &l.Instructions, &l.Notes); err != nil {
		return l, err
	}
	if err := json.Unmarshal([]byte(setsJSON), &l.Sets); err != nil {
		return l, fmt.Errorf("decoding sets of log %d: %w", l.ID, err)
	}
	return l, nil
}

func encodeSets(sets []models.Set) (string, error) {
	if sets == nil {
		sets = []models.Set{}
	}
	b, err := json.Marshal(sets)
	if err != nil {
		return "", fmt.Errorf("encoding sets: %w", err)
	}
	return string(b), nil
}
