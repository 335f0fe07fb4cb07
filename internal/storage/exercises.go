package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

const exerciseColumns = `id, name, description, video_link, created_at`

// AddExercise inserts an exercise and returns its new ID.
func (db *DB) AddExercise(ctx context.Context, ex models.NewExercise) (int64, error) {
	id, err := db.insertReturningID(ctx, db.sql,
		`INSERT INTO exercises (name, description, video_link, created_at) VALUES (?, ?, ?, ?)`,
		ex.Name, ex.Description, ex.VideoLink, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting exercise %q: %w", ex.Name, err)
	}
	return id, nil
}

// GetExercise retrieves an exercise by ID. Returns ErrNotFound if absent.
func (db *DB) GetExercise(ctx context.Context, id int64) (*models.Exercise, error) {
	row := db.sql.QueryRowContext(ctx,
		db.rebind(`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`), id)
	ex, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise %d: %w", id, err)
	}
	return &ex, nil
}

// GetExerciseByName looks an exercise up by case-insensitive name.
func (db *DB) GetExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	row := db.sql.QueryRowContext(ctx,
		db.rebind(`SELECT `+exerciseColumns+` FROM exercises WHERE lower(name) = lower(?)`), name)
	ex, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise %q: %w", name, err)
	}
	return &ex, nil
}

// ListExercises returns all exercises in insertion order.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return db.queryExercises(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY id`)
}

// ListExercisesSorted returns all exercises ordered by name.
func (db *DB) ListExercisesSorted(ctx context.Context) ([]models.Exercise, error) {
	return db.queryExercises(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY name, id`)
}

// SearchExercises returns exercises whose name contains query, ignoring case.
func (db *DB) SearchExercises(ctx context.Context, query string) ([]models.Exercise, error) {
	return db.queryExercises(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE lower(name) LIKE ? ORDER BY id`,
		"%"+strings.ToLower(query)+"%")
}

// UpdateExercise applies a partial update. Returns ErrNotFound if no row matched.
func (db *DB) UpdateExercise(ctx context.Context, id int64, upd models.ExerciseUpdate) error {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.VideoLink != nil {
		sets = append(sets, "video_link = ?")
		args = append(args, *upd.VideoLink)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := db.sql.ExecContext(ctx,
		db.rebind(`UPDATE exercises SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return fmt.Errorf("updating exercise %d: %w", id, err)
	}
	return requireAffected(res)
}

// DeleteExercise removes an exercise. Exercises referenced by a workout cannot
// be deleted.
func (db *DB) DeleteExercise(ctx context.Context, id int64) error {
	res, err := db.sql.ExecContext(ctx, db.rebind(`DELETE FROM exercises WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting exercise %d: %w", id, err)
	}
	return requireAffected(res)
}

func (db *DB) queryExercises(ctx context.Context, query string, args ...any) ([]models.Exercise, error) {
	rows, err := db.sql.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	result := []models.Exercise{}
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

func scanExercise(row interface{ Scan(dest ...any) error }) (models.Exercise, error) {
	var ex models.Exercise
	err := row.Scan(&ex.ID, &ex.Name, &ex.Description, &ex.VideoLink, &ex.CreatedAt)
	return ex, err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
