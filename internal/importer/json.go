package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/liftlog/liftlog/internal/models"
)

// JSONResult reports exercise and workout tallies of a JSON import separately.
type JSONResult struct {
	ExercisesSuccess int      `json:"exercisesSuccess"`
	ExercisesSkipped int      `json:"exercisesSkipped"`
	WorkoutsSuccess  int      `json:"workoutsSuccess"`
	WorkoutsSkipped  int      `json:"workoutsSkipped"`
	Errors           []string `json:"errors"`
}

type jsonDocument struct {
	Exercises *[]jsonExercise   `json:"exercises"`
	Workouts  *[]jsonWorkoutRow `json:"workouts"`
}

type jsonExercise struct {
	Name        flexString `json:"name"`
	Description flexString `json:"description"`
	VideoLink   flexString `json:"videoLink"`
}

// jsonWorkoutRow carries the same fields as a CSV row. Numeric fields may be
// JSON numbers or strings.
type jsonWorkoutRow struct {
	Date         flexString `json:"date"`
	WorkoutName  flexString `json:"workoutName"`
	ExerciseName flexString `json:"exerciseName"`
	SetNumber    flexString `json:"setNumber"`
	Weight       flexString `json:"weight"`
	WeightUnit   flexString `json:"weightUnit"`
	Reps         flexString `json:"reps"`
	Duration     flexString `json:"duration"`
	Instructions flexString `json:"instructions"`
	Notes        flexString `json:"notes"`
}

// flexString accepts any JSON value. Strings keep their text, null is
// empty, and numbers, booleans, objects and arrays keep their raw JSON so
// field validation rejects them per record.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

func (f flexString) trimmed() string {
	return strings.TrimSpace(string(f))
}

// ImportJSON imports a document of the form {"exercises": [...], "workouts": [...]}.
// New exercises are committed before workout rows are resolved, so workouts
// may reference exercises from the same document.
func (imp *Importer) ImportJSON(ctx context.Context, r io.Reader) (*JSONResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import input: %w", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		err = abortf("Failed to parse JSON: %v", err)
		return jsonAbortResult(err), err
	}
	if doc.Exercises == nil || doc.Workouts == nil {
		err := abortf(`Invalid JSON format. Expected "exercises" and "workouts" arrays.`)
		return jsonAbortResult(err), err
	}

	res := &JSONResult{Errors: []string{}}

	cat, err := imp.importJSONExercises(ctx, *doc.Exercises, res)
	if err != nil {
		return nil, err
	}
	existing, err := imp.existingWorkouts(ctx)
	if err != nil {
		return nil, err
	}

	g := newGrouper()
	for _, w := range *doc.Workouts {
		raw := RawRow{
			Layout:       LayoutCurrent,
			Date:         w.Date.trimmed(),
			WorkoutName:  w.WorkoutName.trimmed(),
			ExerciseName: w.ExerciseName.trimmed(),
			SetNumber:    w.SetNumber.trimmed(),
			Weight:       w.Weight.trimmed(),
			WeightUnit:   w.WeightUnit.trimmed(),
			Reps:         w.Reps.trimmed(),
			Duration:     w.Duration.trimmed(),
			Instructions: w.Instructions.trimmed(),
			Notes:        w.Notes.trimmed(),
		}
		if raw.Date == "" || raw.WorkoutName == "" || raw.ExerciseName == "" {
			res.Errors = append(res.Errors, "Skipped workout row with missing date, workoutName, or exerciseName")
			res.WorkoutsSkipped++
			continue
		}
		row, err := validateRow(raw, cat)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Workout %q on %s, exercise %q: %v",
				raw.WorkoutName, raw.Date, raw.ExerciseName, err))
			continue
		}
		g.add(row)
	}

	out := imp.persistWorkouts(ctx, g.groups(), cat, existing)
	res.WorkoutsSuccess = out.success
	res.WorkoutsSkipped += out.skipped
	res.Errors = append(res.Errors, out.errors...)

	imp.log.Info("json import finished",
		"exercises_success", res.ExercisesSuccess, "exercises_skipped", res.ExercisesSkipped,
		"workouts_success", res.WorkoutsSuccess, "workouts_skipped", res.WorkoutsSkipped,
		"errors", len(res.Errors), "dry_run", imp.dryRun)
	return res, nil
}

// importJSONExercises runs the exercise phase and returns the catalog the
// workout phase resolves against.
func (imp *Importer) importJSONExercises(ctx context.Context, exercises []jsonExercise, res *JSONResult) (catalog, error) {
	stored, err := imp.store.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exercise catalog: %w", err)
	}
	cat := newCatalog(stored)

	var added []models.Exercise
	for _, e := range exercises {
		ex := models.NewExercise{
			Name:        e.Name.trimmed(),
			Description: e.Description.trimmed(),
			VideoLink:   e.VideoLink.trimmed(),
		}
		if ex.Name == "" {
			res.Errors = append(res.Errors, "Skipped exercise with missing name")
			res.ExercisesSkipped++
			continue
		}
		if _, ok := cat.lookup(ex.Name); ok {
			res.ExercisesSkipped++
			continue
		}
		if err := imp.addExercise(ctx, ex); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to import exercise %q: %v", ex.Name, err))
			continue
		}
		entry := models.Exercise{Name: ex.Name, Description: ex.Description, VideoLink: ex.VideoLink}
		cat[strings.ToLower(ex.Name)] = entry
		added = append(added, entry)
		res.ExercisesSuccess++
	}

	if imp.dryRun || len(added) == 0 {
		return cat, nil
	}

	// Re-read so new exercises resolve to their stored IDs.
	stored, err = imp.store.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("reloading exercise catalog: %w", err)
	}
	return newCatalog(stored), nil
}

func jsonAbortResult(err error) *JSONResult {
	res := abortResult(err)
	if res == nil {
		return nil
	}
	return &JSONResult{Errors: res.Errors}
}
