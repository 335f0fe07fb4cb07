package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/liftlog/liftlog/internal/models"
)

// ErrMalformedInput is wrapped by errors for input that cannot be imported
// at all: CSV that fails to tokenize, a file without data rows, or JSON that
// fails to parse or lacks the expected arrays. Nothing is persisted in that case.
var ErrMalformedInput = errors.New("malformed import input")

// Store is the persistence the importer reads its snapshots from and writes
// new records to.
type Store interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	AddExercise(ctx context.Context, ex models.NewExercise) (int64, error)
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	AddWorkout(ctx context.Context, w models.Workout) (int64, error)
}

// Result is the outcome of a CSV import. Success counts exercises or
// workouts persisted, Skipped counts records that already existed.
type Result struct {
	Success int      `json:"success"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Importer reconciles CSV and JSON input against the stored catalog and workouts.
type Importer struct {
	store  Store
	log    *slog.Logger
	dryRun bool
}

// New creates a new Importer. With dryRun set nothing is written; the
// result reports what would have been.
func New(store Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

// ImportExercisesCSV imports name,description,videoLink rows. Names already
// in the catalog, or earlier in the same file, are skipped.
func (imp *Importer) ImportExercisesCSV(ctx context.Context, r io.Reader) (*Result, error) {
	records, err := readAll(r)
	if err != nil {
		return abortResult(err), err
	}

	existing, err := imp.store.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exercise catalog: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, ex := range existing {
		known[strings.ToLower(strings.TrimSpace(ex.Name))] = true
	}

	res := &Result{Errors: []string{}}
	for i, rec := range records[1:] {
		line := i + 2

		if len(rec) < 2 {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Missing required fields (name, description)", line))
			continue
		}
		ex := models.NewExercise{Name: field(rec, 0), Description: field(rec, 1), VideoLink: field(rec, 2)}
		if ex.Name == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Exercise name is required", line))
			continue
		}
		if ex.Description == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Exercise description is required", line))
			continue
		}

		key := strings.ToLower(ex.Name)
		if known[key] {
			res.Skipped++
			continue
		}
		if err := imp.addExercise(ctx, ex); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: %v", line, err))
			continue
		}
		known[key] = true
		res.Success++
	}

	imp.log.Info("exercise import finished",
		"success", res.Success, "skipped", res.Skipped, "errors", len(res.Errors), "dry_run", imp.dryRun)
	return res, nil
}

// ImportWorkoutsCSV imports workout rows in either column layout. Rows are
// validated independently, grouped into workouts by date and name, and each
// new workout is persisted on its own. Workouts that already exist are skipped.
func (imp *Importer) ImportWorkoutsCSV(ctx context.Context, r io.Reader) (*Result, error) {
	records, err := readAll(r)
	if err != nil {
		return abortResult(err), err
	}

	cat, existing, err := imp.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Errors: []string{}}
	g := newGrouper()
	for i, rec := range records[1:] {
		line := i + 2

		raw, err := decodeRow(line, rec)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: %v", line, err))
			continue
		}
		row, err := validateRow(raw, cat)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: %v", line, err))
			continue
		}
		g.add(row)
	}

	out := imp.persistWorkouts(ctx, g.groups(), cat, existing)
	res.Success = out.success
	res.Skipped = out.skipped
	res.Errors = append(res.Errors, out.errors...)

	imp.log.Info("workout import finished",
		"rows", len(records)-1, "success", res.Success, "skipped", res.Skipped,
		"errors", len(res.Errors), "dry_run", imp.dryRun)
	return res, nil
}

// snapshot loads the catalog and the keys of stored workouts once per import.
func (imp *Importer) snapshot(ctx context.Context) (catalog, map[models.WorkoutKey]bool, error) {
	exercises, err := imp.store.ListExercises(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading exercise catalog: %w", err)
	}
	existing, err := imp.existingWorkouts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return newCatalog(exercises), existing, nil
}

func (imp *Importer) existingWorkouts(ctx context.Context) (map[models.WorkoutKey]bool, error) {
	workouts, err := imp.store.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}
	keys := make(map[models.WorkoutKey]bool, len(workouts))
	for _, w := range workouts {
		keys[w.Key()] = true
	}
	return keys, nil
}

type persistOutcome struct {
	success int
	skipped int
	errors  []string
}

// persistWorkouts writes each group that is not already stored. A failed
// insert is reported for that workout only; earlier inserts stand.
func (imp *Importer) persistWorkouts(ctx context.Context, groups []*workoutGroup, cat catalog, existing map[models.WorkoutKey]bool) persistOutcome {
	var out persistOutcome
	for _, wg := range groups {
		if existing[wg.Key] {
			imp.log.Debug("skipping existing workout", "date", wg.Date, "name", wg.Name)
			out.skipped++
			continue
		}

		exercises := wg.build(cat)
		if len(exercises) == 0 {
			out.errors = append(out.errors, fmt.Sprintf("Workout %q on %s: No valid exercises found", wg.Name, wg.Date))
			out.skipped++
			continue
		}

		w := models.Workout{Name: wg.Name, Date: wg.Date, Exercises: exercises}
		if err := imp.addWorkout(ctx, w); err != nil {
			imp.log.Warn("workout insert failed", "date", wg.Date, "name", wg.Name, "error", err)
			out.errors = append(out.errors, fmt.Sprintf("Workout %q on %s: %v", wg.Name, wg.Date, err))
			continue
		}
		existing[wg.Key] = true
		out.success++
	}
	return out
}

func (imp *Importer) addExercise(ctx context.Context, ex models.NewExercise) error {
	if imp.dryRun {
		return nil
	}
	_, err := imp.store.AddExercise(ctx, ex)
	return err
}

func (imp *Importer) addWorkout(ctx context.Context, w models.Workout) error {
	if imp.dryRun {
		return nil
	}
	_, err := imp.store.AddWorkout(ctx, w)
	return err
}

func readAll(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import input: %w", err)
	}
	return readRecords(data)
}

// abortResult is the result returned alongside an abort: no successes and
// the abort message as the only error.
func abortResult(err error) *Result {
	var ae *abortError
	if !errors.As(err, &ae) {
		return nil
	}
	return &Result{Errors: []string{ae.msg}}
}
