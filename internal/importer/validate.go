package importer

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/liftlog/liftlog/internal/dates"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/units"
)

// SetData is a validated set with its weight already in kilograms.
type SetData struct {
	SetNumber    int
	WeightKg     float64
	Reps         int
	DurationSec  *int
	Instructions string
	Notes        string
}

// validRow is a row that passed every check, ready for grouping.
type validRow struct {
	Date        string
	WorkoutName string
	Exercise    models.Exercise
	Set         SetData
}

// decimalRe is a plain decimal number. ParseFloat alone would also take hex
// floats, underscores, Inf and NaN.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// catalog is the exercise catalog keyed by lowercased name.
type catalog map[string]models.Exercise

func newCatalog(exercises []models.Exercise) catalog {
	c := make(catalog, len(exercises))
	for _, ex := range exercises {
		c[strings.ToLower(strings.TrimSpace(ex.Name))] = ex
	}
	return c
}

func (c catalog) lookup(name string) (models.Exercise, bool) {
	ex, ok := c[strings.ToLower(strings.TrimSpace(name))]
	return ex, ok
}

// validateRow runs the field checks in order. The first failing check
// decides the message.
func validateRow(r RawRow, cat catalog) (validRow, error) {
	if !dates.IsISODate(r.Date) {
		return validRow{}, errors.New("Invalid date format (use YYYY-MM-DD)")
	}

	ex, ok := cat.lookup(r.ExerciseName)
	if !ok {
		return validRow{}, fmt.Errorf("Exercise %q not found. Please import exercises first.", r.ExerciseName)
	}

	if !decimalRe.MatchString(r.Weight) {
		return validRow{}, errors.New("Invalid weight value")
	}
	weight, err := strconv.ParseFloat(r.Weight, 64)
	if err != nil || math.IsInf(weight, 0) || weight < 0 {
		return validRow{}, errors.New("Invalid weight value")
	}

	weightKg, err := toKilograms(weight, r.WeightUnit)
	if err != nil {
		return validRow{}, err
	}

	reps, err := strconv.Atoi(r.Reps)
	if err != nil || reps < 0 {
		return validRow{}, errors.New("Invalid reps value")
	}

	setNumber, err := strconv.Atoi(r.SetNumber)
	if err != nil || setNumber < 1 {
		return validRow{}, errors.New("Invalid set number")
	}

	var duration *int
	if r.Duration != "" {
		d, err := strconv.Atoi(r.Duration)
		if err != nil || d < 0 {
			return validRow{}, errors.New("Invalid duration value")
		}
		duration = &d
	}

	return validRow{
		Date:        r.Date,
		WorkoutName: r.WorkoutName,
		Exercise:    ex,
		Set: SetData{
			SetNumber:    setNumber,
			WeightKg:     weightKg,
			Reps:         reps,
			DurationSec:  duration,
			Instructions: r.Instructions,
			Notes:        r.Notes,
		},
	}, nil
}

// toKilograms converts weight from unit to kilograms. An empty unit means pounds.
func toKilograms(weight float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "lb", "lbs":
		return units.LbsToKg(weight), nil
	case "kg":
		return weight, nil
	}
	return 0, fmt.Errorf("Invalid weight unit %q (use \"lb\" or \"kg\")", unit)
}
