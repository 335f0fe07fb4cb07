package importer

import (
	"errors"
	"strings"
)

// Layout identifies which column layout a workout row was written in.
type Layout int

const (
	// LayoutLegacy is date, workoutName, exerciseName, setNumber, weight,
	// reps, instructions, notes. Weight is in pounds and there is no duration.
	LayoutLegacy Layout = iota + 1
	// LayoutCurrent is date, workoutName, exerciseName, setNumber, weight,
	// weightUnit, reps, duration, instructions, notes.
	LayoutCurrent
)

const (
	legacyMinColumns  = 6
	currentMinColumns = 10
)

func (l Layout) String() string {
	switch l {
	case LayoutLegacy:
		return "legacy"
	case LayoutCurrent:
		return "current"
	}
	return "unknown"
}

var errMissingFields = errors.New("Missing required fields")

// RawRow is one workout input record with its fields still as text.
type RawRow struct {
	Line   int
	Layout Layout

	Date         string
	WorkoutName  string
	ExerciseName string
	SetNumber    string
	Weight       string
	WeightUnit   string
	Reps         string
	Duration     string
	Instructions string
	Notes        string
}

// decodeRow resolves the record's layout from its column count and maps its
// fields. Records with fewer than six columns are rejected.
func decodeRow(line int, rec []string) (RawRow, error) {
	switch n := len(rec); {
	case n >= currentMinColumns:
		return currentRow(line, rec), nil
	case n >= legacyMinColumns:
		return legacyRow(line, rec), nil
	}
	return RawRow{}, errMissingFields
}

func currentRow(line int, rec []string) RawRow {
	return RawRow{
		Line:         line,
		Layout:       LayoutCurrent,
		Date:         field(rec, 0),
		WorkoutName:  field(rec, 1),
		ExerciseName: field(rec, 2),
		SetNumber:    field(rec, 3),
		Weight:       field(rec, 4),
		WeightUnit:   field(rec, 5),
		Reps:         field(rec, 6),
		Duration:     field(rec, 7),
		Instructions: field(rec, 8),
		Notes:        field(rec, 9),
	}
}

// legacyRow maps the 8-column layout. Rows of 6 or 7 columns leave
// instructions and notes empty.
func legacyRow(line int, rec []string) RawRow {
	return RawRow{
		Line:         line,
		Layout:       LayoutLegacy,
		Date:         field(rec, 0),
		WorkoutName:  field(rec, 1),
		ExerciseName: field(rec, 2),
		SetNumber:    field(rec, 3),
		Weight:       field(rec, 4),
		WeightUnit:   "lb",
		Reps:         field(rec, 5),
		Instructions: field(rec, 6),
		Notes:        field(rec, 7),
	}
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
