package models

import "time"

// Exercise is an entry in the exercise catalog. Names are unique when
// compared case-insensitively.
type Exercise struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoLink   string    `json:"videoLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewExercise holds the caller-supplied fields of an exercise to insert.
type NewExercise struct {
	Name        string
	Description string
	VideoLink   string
}

// ExerciseUpdate is a partial update; nil fields are left unchanged.
type ExerciseUpdate struct {
	Name        *string
	Description *string
	VideoLink   *string
}
