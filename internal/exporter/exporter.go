package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/liftlog/liftlog/internal/models"
)

// ExerciseHeader and WorkoutHeader are the header rows written by the
// exporters and accepted by the importer.
var (
	ExerciseHeader = []string{"name", "description", "videoLink"}
	WorkoutHeader  = []string{
		"date", "workoutName", "exerciseName", "setNumber", "weight",
		"weightUnit", "reps", "duration", "instructions", "notes",
	}
)

// ExportExercises writes the catalog as name,description,videoLink CSV.
func ExportExercises(w io.Writer, exercises []models.Exercise) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExerciseHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, ex := range exercises {
		if err := cw.Write([]string{ex.Name, ex.Description, ex.VideoLink}); err != nil {
			return fmt.Errorf("writing exercise %q: %w", ex.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportWorkouts writes one row per set in the 10-column layout. Weights are
// written in kilograms, the unit they are stored in.
func ExportWorkouts(w io.Writer, workouts []models.Workout) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(WorkoutHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, wo := range workouts {
		for _, ex := range wo.Exercises {
			for i, s := range ex.Sets {
				duration := ""
				if s.DurationSec != nil {
					duration = strconv.Itoa(*s.DurationSec)
				}
				rec := []string{
					wo.Date,
					wo.Name,
					ex.ExerciseName,
					strconv.Itoa(i + 1),
					strconv.FormatFloat(s.WeightKg, 'f', -1, 64),
					"kg",
					strconv.Itoa(s.Reps),
					duration,
					ex.Instructions,
					ex.Notes,
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("writing workout %q on %s: %w", wo.Name, wo.Date, err)
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
