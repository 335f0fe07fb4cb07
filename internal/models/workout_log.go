package models

import "time"

// WorkoutLog records the sets actually performed for one exercise of a workout.
type WorkoutLog struct {
	ID           int64     `json:"id"`
	WorkoutID    int64     `json:"workoutId"`
	ExerciseID   int64     `json:"exerciseId"`
	Sets         []Set     `json:"sets"`
	CompletedAt  time.Time `json:"completedAt"`
	Instructions string    `json:"instructions,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}
