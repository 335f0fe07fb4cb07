package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T, dialect Dialect) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return NewWithDB(sqlDB, dialect), mock
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: Postgres}
	lite := &DB{dialect: SQLite}
	q := `UPDATE workouts SET name = ?, date = ? WHERE id = ?`

	assert.Equal(t, `UPDATE workouts SET name = $1, date = $2 WHERE id = $3`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestPostgresAddExerciseUsesNumberedPlaceholders(t *testing.T) {
	db, mock := setupMockDB(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO exercises (name, description, video_link, created_at) VALUES ($1, $2, $3, $4) RETURNING id`)).
		WithArgs("Bench Press", "Chest", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := db.AddExercise(context.Background(), models.NewExercise{Name: "Bench Press", Description: "Chest"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAddWorkoutRollsBackOnSetFailure verifies that a failing set insert
// leaves no partial workout behind.
func TestAddWorkoutRollsBackOnSetFailure(t *testing.T) {
	db, mock := setupMockDB(t, Postgres)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO workouts`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO workout_exercises`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(70))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO workout_sets`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := db.AddWorkout(context.Background(), models.Workout{
		Name: "Push Day",
		Date: "2025-11-03",
		Exercises: []models.WorkoutExercise{{
			ExerciseID:   1,
			ExerciseName: "Bench Press",
			Sets:         []models.Set{{WeightKg: 60, Reps: 10}},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWorkoutNotFound(t *testing.T) {
	db, mock := setupMockDB(t, SQLite)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM workouts w`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := db.GetWorkout(context.Background(), 5)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAllResetsPostgresSequences(t *testing.T) {
	db, mock := setupMockDB(t, Postgres)

	mock.ExpectBegin()
	for range dataTables {
		mock.ExpectExec(`DELETE FROM`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO exercises (id, name, description, video_link, created_at) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs(int64(3), "Squat", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for range 6 {
		mock.ExpectExec(`SELECT setval`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	err := db.ReplaceAll(context.Background(), &Snapshot{
		Exercises: []models.Exercise{{ID: 3, Name: "Squat"}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
