package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

// AddWorkout inserts a workout with its exercises and sets in one
// transaction and returns the new workout ID. A zero CreatedAt is set to now.
func (db *DB) AddWorkout(ctx context.Context, w models.Workout) (int64, error) {
	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = db.insertWorkout(ctx, tx, w, false)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("inserting workout %q on %s: %w", w.Name, w.Date, err)
	}
	return id, nil
}

// insertWorkout writes the workout header, exercises and sets. With keepID
// the workout's own ID is used instead of a generated one.
func (db *DB) insertWorkout(ctx context.Context, q queryer, w models.Workout, keepID bool) (int64, error) {
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	if keepID {
		if _, err := q.ExecContext(ctx,
			db.rebind(`INSERT INTO workouts (id, name, date, notes, created_at) VALUES (?, ?, ?, ?, ?)`),
			w.ID, w.Name, w.Date, w.Notes, createdAt); err != nil {
			return 0, err
		}
		id = w.ID
	} else {
		var err error
		id, err = db.insertReturningID(ctx, q,
			`INSERT INTO workouts (name, date, notes, created_at) VALUES (?, ?, ?, ?)`,
			w.Name, w.Date, w.Notes, createdAt)
		if err != nil {
			return 0, err
		}
	}

	for i, ex := range w.Exercises {
		weID, err := db.insertReturningID(ctx, q,
			`INSERT INTO workout_exercises (workout_id, position, exercise_id, exercise_name, instructions, notes)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, ex.ExerciseID, ex.ExerciseName, ex.Instructions, ex.Notes)
		if err != nil {
			return 0, fmt.Errorf("inserting exercise %q: %w", ex.ExerciseName, err)
		}
		if err := db.insertSets(ctx, q, weID, ex.Sets); err != nil {
			return 0, fmt.Errorf("inserting sets for %q: %w", ex.ExerciseName, err)
		}
	}
	return id, nil
}

func (db *DB) insertSets(ctx context.Context, q queryer, workoutExerciseID int64, sets []models.Set) error {
	if len(sets) == 0 {
		return nil
	}

	query := `INSERT INTO workout_sets (workout_exercise_id, position, weight_kg, reps, duration_sec, completed) VALUES `
	args := make([]any, 0, len(sets)*6)
	valueStrings := make([]string, 0, len(sets))

	for i, s := range sets {
		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?)")
		var duration any
		if s.DurationSec != nil {
			duration = *s.DurationSec
		}
		args = append(args, workoutExerciseID, i, s.WeightKg, s.Reps, duration, s.Completed)
	}

	query += strings.Join(valueStrings, ",")
	_, err := q.ExecContext(ctx, db.rebind(query), args...)
	return err
}

const workoutSelect = `SELECT w.id, w.name, w.date, w.notes, w.created_at,
	 we.id, we.exercise_id, we.exercise_name, we.instructions, we.notes,
	 s.id, s.weight_kg, s.reps, s.duration_sec, s.completed
	 FROM workouts w
	 LEFT JOIN workout_exercises we ON we.workout_id = w.id
	 LEFT JOIN workout_sets s ON s.workout_exercise_id = we.id`

// GetWorkout retrieves a single workout with its exercises and sets.
// Returns ErrNotFound if absent.
func (db *DB) GetWorkout(ctx context.Context, id int64) (*models.Workout, error) {
	workouts, err := db.queryWorkouts(ctx, ` WHERE w.id = ?`, `w.id`, id)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrNotFound
	}
	return &workouts[0], nil
}

// ListWorkouts returns all workouts in insertion order.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	return db.queryWorkouts(ctx, ``, `w.id`)
}

// WorkoutsByDate returns the workouts on an exact date.
func (db *DB) WorkoutsByDate(ctx context.Context, date string) ([]models.Workout, error) {
	return db.queryWorkouts(ctx, ` WHERE w.date = ?`, `w.id`, date)
}

// WorkoutsByDateRange returns workouts with start <= date <= end.
func (db *DB) WorkoutsByDateRange(ctx context.Context, start, end string) ([]models.Workout, error) {
	return db.queryWorkouts(ctx, ` WHERE w.date >= ? AND w.date <= ?`, `w.date, w.id`, start, end)
}

// WorkoutsSortedByDate returns all workouts ordered by date.
func (db *DB) WorkoutsSortedByDate(ctx context.Context, ascending bool) ([]models.Workout, error) {
	order := `w.date DESC, w.id DESC`
	if ascending {
		order = `w.date ASC, w.id ASC`
	}
	return db.queryWorkouts(ctx, ``, order)
}

// HasWorkoutOnDate reports whether any workout is scheduled on date.
func (db *DB) HasWorkoutOnDate(ctx context.Context, date string) (bool, error) {
	var count int
	err := db.sql.QueryRowContext(ctx,
		db.rebind(`SELECT COUNT(*) FROM workouts WHERE date = ?`), date).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting workouts on %s: %w", date, err)
	}
	return count > 0, nil
}

// UpdateWorkout applies a partial update to the workout header.
func (db *DB) UpdateWorkout(ctx context.Context, id int64, upd models.WorkoutUpdate) error {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *upd.Date)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := db.sql.ExecContext(ctx,
		db.rebind(`UPDATE workouts SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return fmt.Errorf("updating workout %d: %w", id, err)
	}
	return requireAffected(res)
}

// MoveWorkout reschedules a workout to a new date.
func (db *DB) MoveWorkout(ctx context.Context, id int64, date string) error {
	return db.UpdateWorkout(ctx, id, models.WorkoutUpdate{Date: &date})
}

// CloneWorkout copies a workout with all exercises and sets to date. Every
// set of the copy starts uncompleted. Returns the new workout ID.
func (db *DB) CloneWorkout(ctx context.Context, id int64, date string) (int64, error) {
	src, err := db.GetWorkout(ctx, id)
	if err != nil {
		return 0, err
	}

	clone := models.Workout{Name: src.Name, Date: date, Notes: src.Notes}
	for _, ex := range src.Exercises {
		sets := make([]models.Set, len(ex.Sets))
		copy(sets, ex.Sets)
		for i := range sets {
			sets[i].Completed = false
			if d := sets[i].DurationSec; d != nil {
				v := *d
				sets[i].DurationSec = &v
			}
		}
		ex.Sets = sets
		clone.Exercises = append(clone.Exercises, ex)
	}
	return db.AddWorkout(ctx, clone)
}

// DeleteWorkout removes a workout together with its exercises and sets.
func (db *DB) DeleteWorkout(ctx context.Context, id int64) error {
	res, err := db.sql.ExecContext(ctx, db.rebind(`DELETE FROM workouts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting workout %d: %w", id, err)
	}
	return requireAffected(res)
}

// queryWorkouts runs the workout join with the given WHERE clause and
// ordering, folding the flat rows back into nested workouts.
func (db *DB) queryWorkouts(ctx context.Context, where, order string, args ...any) ([]models.Workout, error) {
	query := workoutSelect + where + ` ORDER BY ` + order + `, we.position, s.position`
	rows, err := db.sql.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	result := []models.Workout{}
	var lastWorkoutID, lastExerciseID int64 = -1, -1

	for rows.Next() {
		var (
			w                       models.Workout
			weID, exerciseID, setID sql.NullInt64
			exName, instr, notes    sql.NullString
			weight                  sql.NullFloat64
			reps, duration          sql.NullInt64
			completed               sql.NullBool
		)
		if err := rows.Scan(&w.ID, &w.Name, &w.Date, &w.Notes, &w.CreatedAt,
			&weID, &exerciseID, &exName, &instr, &notes,
			&setID, &weight, &reps, &duration, &completed); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}

		if w.ID != lastWorkoutID {
			w.Exercises = []models.WorkoutExercise{}
			result = append(result, w)
			lastWorkoutID = w.ID
			lastExerciseID = -1
		}
		cur := &result[len(result)-1]

		if !weID.Valid {
			continue
		}
		if weID.Int64 != lastExerciseID {
			cur.Exercises = append(cur.Exercises, models.WorkoutExercise{
				ExerciseID:   exerciseID.Int64,
				ExerciseName: exName.String,
				Sets:         []models.Set{},
				Instructions: instr.String,
				Notes:        notes.String,
			})
			lastExerciseID = weID.Int64
		}
		ex := &cur.Exercises[len(cur.Exercises)-1]

		if !setID.Valid {
			continue
		}
		set := models.Set{
			WeightKg:  weight.Float64,
			Reps:      int(reps.Int64),
			Completed: completed.Bool,
		}
		if duration.Valid {
			d := int(duration.Int64)
			set.DurationSec = &d
		}
		ex.Sets = append(ex.Sets, set)
	}
	return result, rows.Err()
}
