package models

import (
	"strings"
	"time"
)

// Set is one attempt of an exercise. Weight is always stored in kilograms.
type Set struct {
	WeightKg    float64 `json:"weight"`
	Reps        int     `json:"reps"`
	DurationSec *int    `json:"duration,omitempty"`
	Completed   bool    `json:"completed"`
}

// WorkoutExercise is an exercise within a workout, with its ordered sets.
type WorkoutExercise struct {
	ExerciseID   int64  `json:"exerciseId"`
	ExerciseName string `json:"exerciseName"`
	Sets         []Set  `json:"sets"`
	Instructions string `json:"instructions,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Workout is a named, dated collection of exercises.
type Workout struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Date      string            `json:"date"` // YYYY-MM-DD
	Exercises []WorkoutExercise `json:"exercises"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Key returns the identity used to detect duplicate workouts.
func (w Workout) Key() WorkoutKey {
	return NewWorkoutKey(w.Date, w.Name)
}

// WorkoutUpdate is a partial update; nil fields are left unchanged.
type WorkoutUpdate struct {
	Name  *string
	Date  *string
	Notes *string
}

// WorkoutKey identifies a workout by date and case-folded name.
// Two workouts with equal keys are duplicates.
type WorkoutKey struct {
	Date string
	Name string
}

// NewWorkoutKey builds a key, folding the name's case.
func NewWorkoutKey(date, name string) WorkoutKey {
	return WorkoutKey{Date: date, Name: strings.ToLower(name)}
}
