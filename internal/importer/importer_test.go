package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/liftlog/liftlog/internal/logging"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store. failWorkout, when set, is consulted
// before each workout insert.
type memStore struct {
	exercises   []models.Exercise
	workouts    []models.Workout
	nextID      int64
	failWorkout func(models.Workout) error
	listErr     error

	exerciseInserts int
	workoutInserts  int
}

func (s *memStore) ListExercises(context.Context) ([]models.Exercise, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.Exercise(nil), s.exercises...), nil
}

func (s *memStore) AddExercise(_ context.Context, ex models.NewExercise) (int64, error) {
	s.nextID++
	s.exerciseInserts++
	s.exercises = append(s.exercises, models.Exercise{
		ID: s.nextID, Name: ex.Name, Description: ex.Description, VideoLink: ex.VideoLink,
	})
	return s.nextID, nil
}

func (s *memStore) ListWorkouts(context.Context) ([]models.Workout, error) {
	return append([]models.Workout(nil), s.workouts...), nil
}

func (s *memStore) AddWorkout(_ context.Context, w models.Workout) (int64, error) {
	if s.failWorkout != nil {
		if err := s.failWorkout(w); err != nil {
			return 0, err
		}
	}
	s.nextID++
	s.workoutInserts++
	w.ID = s.nextID
	s.workouts = append(s.workouts, w)
	return w.ID, nil
}

func newStore(names ...string) *memStore {
	s := &memStore{}
	for _, n := range names {
		s.AddExercise(context.Background(), models.NewExercise{Name: n, Description: n})
	}
	s.exerciseInserts = 0
	return s
}

func newTestImporter(s *memStore) *Importer {
	return New(s, logging.Discard(), false)
}

const workoutHeader = "date,workoutName,exerciseName,setNumber,weight,weightUnit,reps,duration,instructions,notes\n"

func importWorkouts(t *testing.T, s *memStore, csv string) *Result {
	t.Helper()
	res, err := newTestImporter(s).ImportWorkoutsCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	return res
}

// TestBenchPressScenario verifies two rows of one exercise become one
// workout with sets sorted by set number and weights converted to kg.
func TestBenchPressScenario(t *testing.T) {
	s := newStore("Bench Press")
	res := importWorkouts(t, s, workoutHeader+
		"2025-11-03,Push Day,Bench Press,2,185,lb,8,,,\n"+
		"2025-11-03,Push Day,Bench Press,1,135,lb,10,,,\n")

	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 0, res.Skipped)
	assert.Empty(t, res.Errors)
	require.Len(t, s.workouts, 1)

	w := s.workouts[0]
	assert.Equal(t, "Push Day", w.Name)
	assert.Equal(t, "2025-11-03", w.Date)
	require.Len(t, w.Exercises, 1)
	ex := w.Exercises[0]
	assert.Equal(t, "Bench Press", ex.ExerciseName)
	assert.Equal(t, s.exercises[0].ID, ex.ExerciseID)
	require.Len(t, ex.Sets, 2)
	assert.InDelta(t, 61.23, ex.Sets[0].WeightKg, 0.01)
	assert.Equal(t, 10, ex.Sets[0].Reps)
	assert.InDelta(t, 83.91, ex.Sets[1].WeightKg, 0.01)
	assert.Equal(t, 8, ex.Sets[1].Reps)
	assert.False(t, ex.Sets[0].Completed)
	assert.Nil(t, ex.Sets[0].DurationSec)
}

func TestWeightConversion(t *testing.T) {
	s := newStore("Squat")
	res := importWorkouts(t, s, workoutHeader+
		"2025-11-03,Legs,Squat,1,225,lb,5,,,\n"+
		"2025-11-04,Legs,Squat,1,100,kg,5,,,\n"+
		"2025-11-05,Legs,Squat,1,100,LBS,5,,,\n")

	require.Equal(t, 3, res.Success)
	assert.InDelta(t, 102.06, s.workouts[0].Exercises[0].Sets[0].WeightKg, 0.1)
	assert.Equal(t, 100.0, s.workouts[1].Exercises[0].Sets[0].WeightKg)
	assert.InDelta(t, 45.36, s.workouts[2].Exercises[0].Sets[0].WeightKg, 0.01)
}

// TestLegacyLayoutAssumesPounds verifies 8-column rows always convert from
// pounds, even when 10-column kg rows appear in the same file.
func TestLegacyLayoutAssumesPounds(t *testing.T) {
	s := newStore("Bench Press", "Row")
	res := importWorkouts(t, s, workoutHeader+
		"2025-11-03,Push Day,Bench Press,1,100,kg,10,60,,\n"+
		"2025-11-04,Pull Day,Row,1,100,8,Keep back flat,felt good\n")

	require.Equal(t, 2, res.Success)
	assert.Empty(t, res.Errors)

	current := s.workouts[0].Exercises[0]
	assert.Equal(t, 100.0, current.Sets[0].WeightKg)
	require.NotNil(t, current.Sets[0].DurationSec)
	assert.Equal(t, 60, *current.Sets[0].DurationSec)

	legacy := s.workouts[1].Exercises[0]
	assert.InDelta(t, 45.36, legacy.Sets[0].WeightKg, 0.01)
	assert.Equal(t, 8, legacy.Sets[0].Reps)
	assert.Nil(t, legacy.Sets[0].DurationSec)
	assert.Equal(t, "Keep back flat", legacy.Instructions)
	assert.Equal(t, "felt good", legacy.Notes)
}

func TestDecodeRowLayouts(t *testing.T) {
	tests := []struct {
		name    string
		rec     []string
		want    Layout
		wantErr bool
	}{
		{name: "ten columns", rec: make([]string, 10), want: LayoutCurrent},
		{name: "extra columns", rec: make([]string, 12), want: LayoutCurrent},
		{name: "eight columns", rec: make([]string, 8), want: LayoutLegacy},
		{name: "six columns", rec: make([]string, 6), want: LayoutLegacy},
		{name: "nine columns", rec: make([]string, 9), want: LayoutLegacy},
		{name: "five columns", rec: make([]string, 5), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := decodeRow(2, tt.rec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Layout)
			if tt.want == LayoutLegacy {
				assert.Equal(t, "lb", row.WeightUnit)
				assert.Empty(t, row.Duration)
			}
		})
	}
}

func TestIdempotentReimport(t *testing.T) {
	s := newStore("Bench Press", "Squat")
	csv := workoutHeader +
		"2025-11-03,Push Day,Bench Press,1,135,lb,10,,,\n" +
		"2025-11-03,Push Day,Bench Press,2,185,lb,8,,,\n" +
		"2025-11-04,Leg Day,Squat,1,225,lb,5,,,\n"

	first := importWorkouts(t, s, csv)
	assert.Equal(t, 2, first.Success)

	second := importWorkouts(t, s, csv)
	assert.Equal(t, 0, second.Success)
	assert.Equal(t, 2, second.Skipped)
	assert.Empty(t, second.Errors)
	assert.Len(t, s.workouts, 2)
}

// TestExistingWorkoutMatchedIgnoringCase verifies an import row for a workout
// already stored under a different letter case counts as skipped.
func TestExistingWorkoutMatchedIgnoringCase(t *testing.T) {
	s := newStore("Bench Press")
	s.workouts = []models.Workout{{ID: 99, Name: "push day", Date: "2025-11-03"}}

	res := importWorkouts(t, s, workoutHeader+"2025-11-03,PUSH DAY,Bench Press,1,135,lb,10,,,\n")
	assert.Equal(t, 0, res.Success)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, s.workoutInserts)
}

func TestInvalidRowDoesNotBlockSiblings(t *testing.T) {
	s := newStore("Bench Press", "Squat")
	res := importWorkouts(t, s, workoutHeader+
		"2025-11-03,Push Day,Bench Press,1,invalid,lb,10,,,\n"+
		"2025-11-03,Push Day,Bench Press,2,185,lb,8,,,\n"+
		"2025-11-04,Leg Day,Squat,1,invalid,lb,5,,,\n")

	assert.Equal(t, 1, res.Success)
	assert.Equal(t, []string{
		"Line 2: Invalid weight value",
		"Line 4: Invalid weight value",
	}, res.Errors)
	require.Len(t, s.workouts, 1)
	assert.Len(t, s.workouts[0].Exercises[0].Sets, 1)
}

func TestDeadliftNotInCatalog(t *testing.T) {
	s := newStore("Bench Press")
	res := importWorkouts(t, s, workoutHeader+"2025-11-03,Pull Day,Deadlift,1,315,lb,5,,,\n")

	assert.Equal(t, 0, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], `Exercise "Deadlift" not found`)
	assert.Equal(t, `Line 2: Exercise "Deadlift" not found. Please import exercises first.`, res.Errors[0])
}

func TestRowValidationMessages(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{
			name: "missing fields",
			row:  "2025-11-03,Push Day,Bench Press,1",
			want: "Line 2: Missing required fields",
		},
		{
			name: "bad date",
			row:  "11/03/2025,Push Day,Bench Press,1,135,lb,10,,,",
			want: "Line 2: Invalid date format (use YYYY-MM-DD)",
		},
		{
			name: "date checked before exercise",
			row:  "2025-11-3,Push Day,Deadlift,1,135,lb,10,,,",
			want: "Line 2: Invalid date format (use YYYY-MM-DD)",
		},
		{
			name: "negative weight",
			row:  "2025-11-03,Push Day,Bench Press,1,-5,lb,10,,,",
			want: "Line 2: Invalid weight value",
		},
		{
			name: "hex float weight",
			row:  "2025-11-03,Push Day,Bench Press,1,0x1p4,kg,10,,,",
			want: "Line 2: Invalid weight value",
		},
		{
			name: "underscore weight",
			row:  "2025-11-03,Push Day,Bench Press,1,1_00,kg,10,,,",
			want: "Line 2: Invalid weight value",
		},
		{
			name: "NaN weight",
			row:  "2025-11-03,Push Day,Bench Press,1,NaN,kg,10,,,",
			want: "Line 2: Invalid weight value",
		},
		{
			name: "bad unit",
			row:  "2025-11-03,Push Day,Bench Press,1,135,invalid,10,,,",
			want: `Line 2: Invalid weight unit "invalid" (use "lb" or "kg")`,
		},
		{
			name: "bad reps",
			row:  "2025-11-03,Push Day,Bench Press,1,135,lb,ten,,,",
			want: "Line 2: Invalid reps value",
		},
		{
			name: "zero set number",
			row:  "2025-11-03,Push Day,Bench Press,0,135,lb,10,,,",
			want: "Line 2: Invalid set number",
		},
		{
			name: "negative duration",
			row:  "2025-11-03,Push Day,Bench Press,1,135,lb,10,-30,,",
			want: "Line 2: Invalid duration value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore("Bench Press")
			res := importWorkouts(t, s, workoutHeader+tt.row+"\n")
			assert.Equal(t, 0, res.Success)
			assert.Equal(t, []string{tt.want}, res.Errors)
			assert.Empty(t, s.workouts)
		})
	}
}

func TestZeroDurationIsKept(t *testing.T) {
	s := newStore("Plank")
	res := importWorkouts(t, s, workoutHeader+"2025-11-03,Core,Plank,1,0,kg,0,0,,\n")
	require.Equal(t, 1, res.Success)
	d := s.workouts[0].Exercises[0].Sets[0].DurationSec
	require.NotNil(t, d)
	assert.Equal(t, 0, *d)
}

// TestGroupingFoldsCase verifies rows differing only in the case of the
// workout or exercise name land in the same workout and exercise, and that
// instructions and notes come from the first row of each exercise.
func TestGroupingFoldsCase(t *testing.T) {
	s := newStore("Bench Press", "Overhead Press")
	res := importWorkouts(t, s, workoutHeader+
		"2025-11-03,Push Day,bench press,1,135,lb,10,,Warm up,first note\n"+
		"2025-11-03,push day,Overhead Press,1,95,lb,8,,,\n"+
		"2025-11-03,PUSH DAY,BENCH PRESS,2,155,lb,8,,Other,second note\n")

	require.Equal(t, 1, res.Success)
	require.Len(t, s.workouts, 1)
	w := s.workouts[0]
	assert.Equal(t, "Push Day", w.Name)
	require.Len(t, w.Exercises, 2)
	assert.Equal(t, "Bench Press", w.Exercises[0].ExerciseName)
	assert.Len(t, w.Exercises[0].Sets, 2)
	assert.Equal(t, "Warm up", w.Exercises[0].Instructions)
	assert.Equal(t, "first note", w.Exercises[0].Notes)
	assert.Equal(t, "Overhead Press", w.Exercises[1].ExerciseName)
}

func TestQuotedFields(t *testing.T) {
	s := newStore("Bench Press")
	res := importWorkouts(t, s, workoutHeader+
		`2025-11-03,"Push, Heavy",Bench Press,1,135,lb,10,,"Say ""go"" first","line one`+"\n"+`line two"`+"\n"+
		"2025-11-03,Push Day,Bench Press,x,135,lb,10,,,\n")

	require.Equal(t, 1, res.Success)
	w := s.workouts[0]
	assert.Equal(t, "Push, Heavy", w.Name)
	assert.Equal(t, `Say "go" first`, w.Exercises[0].Instructions)
	assert.Equal(t, "line one\nline two", w.Exercises[0].Notes)
	// Line numbers count records, so the row after the multi-line field is line 3.
	assert.Equal(t, []string{"Line 3: Invalid set number"}, res.Errors)
}

func TestMalformedCSVAborts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "unterminated quote",
			input:   workoutHeader + "2025-11-03,Push Day,Bench Press,1,135,lb,10,,,\n" + `2025-11-04,"Leg Day,Squat,1,225,lb,5,,,` + "\n",
			wantMsg: "Parse error at line",
		},
		{
			name:    "unterminated quote in last field",
			input:   workoutHeader + `2025-11-03,Push Day,Bench Press,1,135,lb,10,,,"never closed` + "\n",
			wantMsg: "Parse error at line 2: Quoted field unterminated",
		},
		{
			name:    "header only",
			input:   workoutHeader,
			wantMsg: "CSV file is empty or has no data rows",
		},
		{
			name:    "empty",
			input:   "",
			wantMsg: "CSV file is empty or has no data rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore("Bench Press", "Squat")
			res, err := newTestImporter(s).ImportWorkoutsCSV(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))
			require.NotNil(t, res)
			assert.Equal(t, 0, res.Success)
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], tt.wantMsg)
			assert.Equal(t, 0, s.workoutInserts)
		})
	}
}

// TestStrayQuotesAreLiteral verifies a quote inside an unquoted field, or
// one inside a quoted field that does not close it, is kept as text.
func TestStrayQuotesAreLiteral(t *testing.T) {
	s := newStore("Bench Press")
	res := importWorkouts(t, s, workoutHeader+
		`2025-11-03,Push Day,Bench Press,1,135,lb,10,,Bar to "chest",Keep 5'10" grip`+"\n"+
		"2025-11-03,Push Day,Bench Press,2,135,lb,8,,,\n"+
		`2025-11-04,Push Day,Bench Press,1,135,lb,8,,,"Say "hi" first"`+"\n")

	require.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Success)
	require.Len(t, s.workouts, 2)
	ex := s.workouts[0].Exercises[0]
	require.Len(t, ex.Sets, 2)
	assert.Equal(t, `Bar to "chest"`, ex.Instructions)
	assert.Equal(t, `Keep 5'10" grip`, ex.Notes)
	assert.Equal(t, `Say "hi" first`, s.workouts[1].Exercises[0].Notes)
}

func TestStrayQuotesInExercisesCSV(t *testing.T) {
	s := newStore()
	res, err := newTestImporter(s).ImportExercisesCSV(context.Background(), strings.NewReader(
		"name,description,videoLink\n"+
			`Bench Press,Bar to "chest",`+"\n"+
			"Squat,Back squat,\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Success)
	require.Len(t, s.exercises, 2)
	assert.Equal(t, `Bar to "chest"`, s.exercises[0].Description)
}

func TestUnterminatedQuote(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantOpen bool
	}{
		{"closed at end of input", `a,"b"`, 0, false},
		{"closed before CRLF", "a,\"b\"\r\nc,d\r\n", 0, false},
		{"escaped quotes", `"say ""hi""",x` + "\n", 0, false},
		{"bare quote in unquoted field", `a,5'10" grip` + "\n", 0, false},
		{"lazy quote inside quoted field", `"a "b" c",d` + "\n", 0, false},
		{"open at end of input", "h\nrow,\"open\nstill open\n", 2, true},
		{"quote never closed", `"a "b`, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, open := unterminatedQuote([]byte(tt.input))
			assert.Equal(t, tt.wantOpen, open)
			if tt.wantOpen {
				assert.Equal(t, tt.wantLine, line)
			}
		})
	}
}

// TestInsertFailureIsolated verifies a storage error on one workout is
// reported for that workout and does not stop the others.
func TestInsertFailureIsolated(t *testing.T) {
	s := newStore("Bench Press")
	s.failWorkout = func(w models.Workout) error {
		if w.Date == "2025-11-04" {
			return errors.New("disk full")
		}
		return nil
	}

	res := importWorkouts(t, s, workoutHeader+
		"2025-11-03,A,Bench Press,1,135,lb,10,,,\n"+
		"2025-11-04,B,Bench Press,1,135,lb,10,,,\n"+
		"2025-11-05,C,Bench Press,1,135,lb,10,,,\n")

	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, []string{`Workout "B" on 2025-11-04: disk full`}, res.Errors)
	assert.Len(t, s.workouts, 2)
}

// TestMissingExerciseDropsWorkout covers a group whose exercise vanished
// from the catalog between validation and resolution.
func TestMissingExerciseDropsWorkout(t *testing.T) {
	s := newStore()
	imp := newTestImporter(s)

	bench := models.Exercise{ID: 1, Name: "Bench Press"}
	g := newGrouper()
	g.add(validRow{Date: "2025-11-03", WorkoutName: "Push Day", Exercise: bench, Set: SetData{SetNumber: 1, Reps: 5}})

	out := imp.persistWorkouts(context.Background(), g.groups(), newCatalog(nil), map[models.WorkoutKey]bool{})
	assert.Equal(t, 0, out.success)
	assert.Equal(t, 1, out.skipped)
	assert.Equal(t, []string{`Workout "Push Day" on 2025-11-03: No valid exercises found`}, out.errors)
	assert.Equal(t, 0, s.workoutInserts)
}

func TestCatalogLoadFailure(t *testing.T) {
	s := newStore()
	s.listErr = errors.New("connection refused")
	_, err := newTestImporter(s).ImportWorkoutsCSV(context.Background(),
		strings.NewReader(workoutHeader+"2025-11-03,A,Bench Press,1,135,lb,10,,,\n"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedInput))
}

func TestDryRunWritesNothing(t *testing.T) {
	s := newStore("Bench Press")
	res, err := New(s, logging.Discard(), true).ImportWorkoutsCSV(context.Background(),
		strings.NewReader(workoutHeader+"2025-11-03,A,Bench Press,1,135,lb,10,,,\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 0, s.workoutInserts)
}

func TestImportExercisesCSV(t *testing.T) {
	s := newStore("Squat")
	res, err := newTestImporter(s).ImportExercisesCSV(context.Background(), strings.NewReader(
		"name,description,videoLink\n"+
			"Bench Press,Flat barbell press,https://example.com/bench\n"+
			"squat,Duplicate of catalog,\n"+
			"BENCH PRESS,Duplicate within file,\n"+
			"Lonely\n"+
			",No name,\n"+
			"Row,  ,\n"+
			`"Farmer's Walk","Carry, heavy",`+"\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, []string{
		"Line 5: Missing required fields (name, description)",
		"Line 6: Exercise name is required",
		"Line 7: Exercise description is required",
	}, res.Errors)

	require.Len(t, s.exercises, 3)
	assert.Equal(t, "Bench Press", s.exercises[1].Name)
	assert.Equal(t, "https://example.com/bench", s.exercises[1].VideoLink)
	assert.Equal(t, "Carry, heavy", s.exercises[2].Description)
	assert.Empty(t, s.exercises[2].VideoLink)
}

func TestImportExercisesCSVAbortsOnEmpty(t *testing.T) {
	res, err := newTestImporter(newStore()).ImportExercisesCSV(context.Background(), strings.NewReader("name,description,videoLink\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.Equal(t, []string{"CSV file is empty or has no data rows"}, res.Errors)
}
