package importer

import (
	"sort"
	"strings"

	"github.com/liftlog/liftlog/internal/models"
)

// workoutGroup collects the validated rows of one workout key.
type workoutGroup struct {
	Key       models.WorkoutKey
	Date      string
	Name      string
	exercises []*exerciseGroup
	byName    map[string]*exerciseGroup
}

// exerciseGroup is one exercise within a workout group, with its sets in
// input order until build sorts them.
type exerciseGroup struct {
	Name         string
	Instructions string
	Notes        string
	Sets         []SetData
}

// grouper folds rows into workout groups, preserving first-seen order of
// both workouts and exercises.
type grouper struct {
	order []*workoutGroup
	byKey map[models.WorkoutKey]*workoutGroup
}

func newGrouper() *grouper {
	return &grouper{byKey: make(map[models.WorkoutKey]*workoutGroup)}
}

func (g *grouper) add(r validRow) {
	key := models.NewWorkoutKey(r.Date, r.WorkoutName)
	wg, ok := g.byKey[key]
	if !ok {
		wg = &workoutGroup{
			Key:    key,
			Date:   r.Date,
			Name:   r.WorkoutName,
			byName: make(map[string]*exerciseGroup),
		}
		g.byKey[key] = wg
		g.order = append(g.order, wg)
	}

	exKey := strings.ToLower(r.Exercise.Name)
	eg, ok := wg.byName[exKey]
	if !ok {
		// Instructions and notes come from the first row seen for the exercise.
		eg = &exerciseGroup{
			Name:         r.Exercise.Name,
			Instructions: r.Set.Instructions,
			Notes:        r.Set.Notes,
		}
		wg.byName[exKey] = eg
		wg.exercises = append(wg.exercises, eg)
	}
	eg.Sets = append(eg.Sets, r.Set)
}

func (g *grouper) groups() []*workoutGroup {
	return g.order
}

// build resolves each exercise against cat and returns the workout
// exercises with sets sorted by set number. Exercises missing from cat
// are dropped.
func (wg *workoutGroup) build(cat catalog) []models.WorkoutExercise {
	var out []models.WorkoutExercise
	for _, eg := range wg.exercises {
		ex, ok := cat.lookup(eg.Name)
		if !ok || len(eg.Sets) == 0 {
			continue
		}

		sorted := make([]SetData, len(eg.Sets))
		copy(sorted, eg.Sets)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].SetNumber < sorted[j].SetNumber
		})

		sets := make([]models.Set, len(sorted))
		for i, s := range sorted {
			sets[i] = models.Set{
				WeightKg:    s.WeightKg,
				Reps:        s.Reps,
				DurationSec: s.DurationSec,
			}
		}

		out = append(out, models.WorkoutExercise{
			ExerciseID:   ex.ID,
			ExerciseName: ex.Name,
			Sets:         sets,
			Instructions: eg.Instructions,
			Notes:        eg.Notes,
		})
	}
	return out
}
